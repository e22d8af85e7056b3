// Package app orchestrates the publishing pipeline: normalize content,
// render, assemble, resolve the subdomain, persist files, and track the
// site record through its deployment states.
package app

import (
	"context"
	"time"

	"foliohost/internal/assemble"
	"foliohost/internal/events"
	"foliohost/internal/hosting"
	"foliohost/internal/normalize"
	"foliohost/internal/publock"
	"foliohost/internal/storage"
	"foliohost/internal/store"
	"foliohost/pkg/domain"
)

// HostingClient is the slice of the provider client the orchestrator needs.
type HostingClient interface {
	CreateDeployment(ctx context.Context, name string, files domain.DeploymentFileSet) (hosting.Deployment, error)
	GetDeployment(ctx context.Context, uid string) (hosting.Deployment, error)
}

// Options wires the orchestrator's collaborators. Store, Local, and Locker
// are required; Mirror, Hosting, and Events degrade to no-ops when absent.
type Options struct {
	Store    store.Store
	Local    *storage.LocalStore
	Mirror   storage.Mirror
	Hosting  HostingClient
	Locker   publock.Locker
	Events   events.Publisher
	Visitors VisitorTracker

	// BaseDomain forms public URLs: https://<subdomain>.<BaseDomain>.
	BaseDomain string

	// Remote deploy polling knobs. Zero values get defaults.
	PollInterval    time.Duration
	PollMaxInterval time.Duration
	PollMaxAttempts int
}

type App struct {
	store    store.Store
	local    *storage.LocalStore
	mirror   storage.Mirror
	hosting  HostingClient
	locker   publock.Locker
	events   events.Publisher
	visitors VisitorTracker

	baseDomain      string
	pollInterval    time.Duration
	pollMaxInterval time.Duration
	pollMaxAttempts int

	now func() time.Time
}

func New(opts Options) *App {
	a := &App{
		store:           opts.Store,
		local:           opts.Local,
		mirror:          opts.Mirror,
		hosting:         opts.Hosting,
		locker:          opts.Locker,
		events:          opts.Events,
		visitors:        opts.Visitors,
		baseDomain:      opts.BaseDomain,
		pollInterval:    opts.PollInterval,
		pollMaxInterval: opts.PollMaxInterval,
		pollMaxAttempts: opts.PollMaxAttempts,
		now:             time.Now,
	}
	if a.locker == nil {
		a.locker = publock.NewMemoryLocker()
	}
	if a.events == nil {
		a.events = events.NopPublisher{}
	}
	if a.visitors == nil {
		a.visitors = NewMemoryVisitors()
	}
	if a.baseDomain == "" {
		a.baseDomain = "foliohost.local"
	}
	if a.pollInterval <= 0 {
		a.pollInterval = 2 * time.Second
	}
	if a.pollMaxInterval <= 0 {
		a.pollMaxInterval = 15 * time.Second
	}
	if a.pollMaxAttempts <= 0 {
		a.pollMaxAttempts = 30
	}
	return a
}

// siteURL forms the public address for a subdomain.
func (a *App) siteURL(subdomain string) string {
	return "https://" + subdomain + "." + a.baseDomain
}

// loadOwnedPortfolio fetches a portfolio and enforces ownership.
func (a *App) loadOwnedPortfolio(userID, portfolioID string) (domain.Portfolio, error) {
	if portfolioID == "" {
		return domain.Portfolio{}, validationf("portfolioId is required")
	}
	p, ok, err := a.store.GetPortfolio(portfolioID)
	if err != nil {
		return domain.Portfolio{}, err
	}
	if !ok {
		return domain.Portfolio{}, ErrNotFound
	}
	if p.UserID != userID {
		return domain.Portfolio{}, ErrForbidden
	}
	return p, nil
}

// buildViewModels normalizes the portfolio and its case studies into
// render-ready models. Projects gain case-study links only when a study
// record exists for their id.
func (a *App) buildViewModels(p domain.Portfolio) (domain.PortfolioViewModel, []assemble.CaseStudyPage, error) {
	vm := normalize.Portfolio(p)

	studies, err := a.store.ListCaseStudies(p.ID)
	if err != nil {
		return domain.PortfolioViewModel{}, nil, err
	}
	byProject := make(map[string]domain.CaseStudy, len(studies))
	for _, cs := range studies {
		byProject[cs.ProjectID] = cs
	}

	// Stored content may claim hasCaseStudy for projects whose study was
	// deleted; only an existing record may produce a link, or the index
	// would point at a page the assembler never writes.
	pages := make([]assemble.CaseStudyPage, 0, len(byProject))
	for i, project := range vm.Work.Projects {
		cs, ok := byProject[project.ID]
		vm.Work.Projects[i].HasCaseStudy = ok
		if !ok {
			continue
		}
		pages = append(pages, assemble.CaseStudyPage{
			ProjectID: project.ID,
			ViewModel: normalize.CaseStudy(cs, project.Title),
		})
	}
	return vm, pages, nil
}

func fileNames(files domain.DeploymentFileSet) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	return names
}
