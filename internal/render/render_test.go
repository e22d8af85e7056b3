package render

import (
	"strings"
	"testing"

	"foliohost/pkg/domain"
)

func sampleViewModel() domain.PortfolioViewModel {
	return domain.PortfolioViewModel{
		Hero:  domain.HeroViewModel{Title: "Alice Chen", Subtitle: "Product Designer"},
		About: domain.AboutViewModel{Name: "Alice Chen", Bio: "I design things.", Image: "/img/alice.jpg"},
		Work: domain.WorkViewModel{
			Heading: "Selected Work",
			Projects: []domain.ProjectViewModel{
				{ID: "proj-a", Title: "Banking App", Description: "Mobile banking", HasCaseStudy: true},
				{ID: "project-2", Title: "Design System"},
			},
		},
		Gallery: domain.GalleryViewModel{Images: []domain.GalleryImageViewModel{{Src: "/img/1.jpg", Caption: "Dusk"}}},
		Contact: domain.ContactViewModel{Email: "alice@example.com"},
	}
}

func TestRenderDeterministic(t *testing.T) {
	vm := sampleViewModel()
	for _, family := range Families() {
		first := Render(vm, family, Options{})
		second := Render(vm, family, Options{})
		if first != second {
			t.Fatalf("family %q not byte-deterministic", family)
		}
		if first == "" {
			t.Fatalf("family %q produced empty output", family)
		}
	}
}

func TestRenderUnknownFamilyFallsBack(t *testing.T) {
	vm := sampleViewModel()
	got := Render(vm, "does-not-exist", Options{})
	want := Render(vm, DefaultFamily, Options{})
	if got != want {
		t.Fatalf("unknown family should render the default family")
	}
}

func TestRenderLinksCaseStudies(t *testing.T) {
	out := Render(sampleViewModel(), "minimal", Options{})
	if !strings.Contains(out, "case-study-proj-a.html") {
		t.Fatalf("case study link missing:\n%s", out)
	}
	if strings.Contains(out, "case-study-project-2.html") {
		t.Fatalf("project without case study must not link one")
	}
}

func TestRenderForPDFStripsNavigation(t *testing.T) {
	vm := sampleViewModel()
	for _, family := range Families() {
		live := Render(vm, family, Options{})
		pdf := Render(vm, family, Options{ForPDF: true})
		if !strings.Contains(live, "<nav>") {
			t.Fatalf("family %q live page missing nav", family)
		}
		if strings.Contains(pdf, "<nav>") {
			t.Fatalf("family %q PDF output should strip nav", family)
		}
		if strings.Contains(pdf, "case-study-proj-a.html") {
			t.Fatalf("family %q PDF output should not link case studies", family)
		}
	}
}

func TestRenderEscapesUserContent(t *testing.T) {
	vm := sampleViewModel()
	vm.Hero.Title = `<script>alert("x")</script>`
	out := Render(vm, "minimal", Options{})
	if strings.Contains(out, "<script>alert") {
		t.Fatalf("user content must be escaped")
	}
}

func TestRenderEmptyViewModel(t *testing.T) {
	var vm domain.PortfolioViewModel
	for _, family := range Families() {
		out := Render(vm, family, Options{})
		if !strings.Contains(out, "<title>Portfolio</title>") {
			t.Fatalf("family %q should fall back to a generic title", family)
		}
	}
}

func TestRenderCaseStudyStub(t *testing.T) {
	cs := domain.CaseStudyViewModel{
		Title: "Banking App",
		Intro: "This case study is currently being developed.",
		Stub:  true,
	}
	out := RenderCaseStudy("proj-a", cs, sampleViewModel(), Options{})
	if out == "" {
		t.Fatalf("stub case study must render non-empty HTML")
	}
	if !strings.Contains(out, "currently being developed") {
		t.Fatalf("stub copy missing:\n%s", out)
	}
}

func TestRenderCaseStudyDeterministicAndPDF(t *testing.T) {
	cs := domain.CaseStudyViewModel{
		Category: "Fintech",
		Title:    "Rebuilding Onboarding",
		Intro:    "How we rebuilt onboarding.",
		Sections: []domain.CaseStudySection{{Number: "01", Title: "Research", Subsections: []string{"Interviews."}}},
	}
	vm := sampleViewModel()
	if RenderCaseStudy("proj-a", cs, vm, Options{}) != RenderCaseStudy("proj-a", cs, vm, Options{}) {
		t.Fatalf("case-study renderer not deterministic")
	}
	live := RenderCaseStudy("proj-a", cs, vm, Options{})
	pdf := RenderCaseStudy("proj-a", cs, vm, Options{ForPDF: true})
	if !strings.Contains(live, "Back to portfolio") {
		t.Fatalf("live page should carry back navigation")
	}
	if strings.Contains(pdf, "Back to portfolio") {
		t.Fatalf("PDF output should strip back navigation")
	}
}
