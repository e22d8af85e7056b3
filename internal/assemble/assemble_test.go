package assemble

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"foliohost/pkg/domain"
)

func testViewModel() domain.PortfolioViewModel {
	return domain.PortfolioViewModel{
		Hero: domain.HeroViewModel{Title: "Alice Chen"},
		Work: domain.WorkViewModel{Projects: []domain.ProjectViewModel{
			{ID: "proj-a", Title: "Banking App", HasCaseStudy: true},
		}},
	}
}

func testStudies() []CaseStudyPage {
	return []CaseStudyPage{
		{ProjectID: "proj-a", ViewModel: domain.CaseStudyViewModel{Title: "Banking App", Intro: "Real intro."}},
		{ProjectID: "proj-b", ViewModel: domain.CaseStudyViewModel{Title: "Stubbed", Intro: "being developed", Stub: true}},
	}
}

func TestBuildLocalFileSet(t *testing.T) {
	files, err := Build(context.Background(), testViewModel(), testStudies(), "minimal", TargetLocal)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := files["index.html"]; !ok {
		t.Fatalf("file set must contain index.html, got %v", keys(files))
	}
	if _, ok := files["case-study-proj-a.html"]; !ok {
		t.Fatalf("missing case-study page: %v", keys(files))
	}
	if _, ok := files["case-study-proj-b.html"]; !ok {
		t.Fatalf("stub case studies still get pages: %v", keys(files))
	}
	if _, ok := files[ManifestFilename]; ok {
		t.Fatalf("local target must not carry a hosting manifest")
	}
}

func TestBuildRemoteAddsManifest(t *testing.T) {
	files, err := Build(context.Background(), testViewModel(), nil, "minimal", TargetRemote)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	manifest, ok := files[ManifestFilename]
	if !ok {
		t.Fatalf("remote target must add %s", ManifestFilename)
	}
	if !strings.Contains(manifest, `"builds": []`) {
		t.Fatalf("manifest must declare a zero-build deployment: %s", manifest)
	}
}

func TestBuildIdempotent(t *testing.T) {
	vm := testViewModel()
	studies := testStudies()
	first, err := Build(context.Background(), vm, studies, "studio", TargetRemote)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := Build(context.Background(), vm, studies, "studio", TargetRemote)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("unchanged inputs must produce an identical file set")
	}
}

func keys(files domain.DeploymentFileSet) []string {
	out := make([]string, 0, len(files))
	for k := range files {
		out = append(out, k)
	}
	return out
}
