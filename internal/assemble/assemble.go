// Package assemble builds the complete file map persisted or uploaded for
// one publish attempt.
package assemble

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"foliohost/internal/render"
	"foliohost/pkg/domain"
)

// Target selects which backend the file set is assembled for.
type Target string

const (
	TargetLocal  Target = "local"
	TargetRemote Target = "remote"
)

// ManifestFilename is the static-site manifest added for remote deploys.
const ManifestFilename = "vercel.json"

// manifestJSON declares a zero-build static deployment so the hosting
// provider serves the files as-is instead of attempting a build step.
const manifestJSON = `{
  "version": 2,
  "public": true,
  "builds": [],
  "cleanUrls": true
}
`

// CaseStudyPage pairs a project id with its normalized case-study model.
type CaseStudyPage struct {
	ProjectID string
	ViewModel domain.CaseStudyViewModel
}

// Build renders index.html plus one case-study page per entry and returns
// the deployment file set. Case-study pages render in parallel; rendering is
// pure so the output is identical to a sequential build.
func Build(ctx context.Context, vm domain.PortfolioViewModel, studies []CaseStudyPage, templateID string, target Target) (domain.DeploymentFileSet, error) {
	files := domain.DeploymentFileSet{
		"index.html": render.Render(vm, templateID, render.Options{}),
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, study := range studies {
		g.Go(func() error {
			page := render.RenderCaseStudy(study.ProjectID, study.ViewModel, vm, render.Options{})
			mu.Lock()
			files[Filename(study.ProjectID)] = page
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if target == TargetRemote {
		files[ManifestFilename] = manifestJSON
	}
	return files, nil
}

// Filename returns the deployment filename for a project's case-study page.
func Filename(projectID string) string {
	return "case-study-" + projectID + ".html"
}
