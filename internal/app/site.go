package app

import (
	"context"
	"strings"
	"time"

	"foliohost/internal/hosting"
	"foliohost/pkg/domain"
)

// Status is the publish-state summary returned for a portfolio.
type Status struct {
	Published      bool                    `json:"published"`
	Subdomain      string                  `json:"subdomain,omitempty"`
	Status         domain.DeploymentStatus `json:"status,omitempty"`
	Error          string                  `json:"error,omitempty"`
	URL            string                  `json:"url,omitempty"`
	LastDeployedAt *time.Time              `json:"lastDeployedAt,omitempty"`
}

// SiteConfig is the user-editable site metadata.
type SiteConfig struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CustomDomain string `json:"customDomain,omitempty"`
}

// Status reports publish state for the caller's portfolio. A portfolio with
// no active site yields the zero status (published=false).
func (a *App) Status(ctx context.Context, userID, portfolioID string) (Status, error) {
	if _, err := a.loadOwnedPortfolio(userID, portfolioID); err != nil {
		return Status{}, err
	}
	site, ok, err := a.store.GetActiveSiteByPortfolio(portfolioID)
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{}, nil
	}
	return Status{
		Published:      site.Published,
		Subdomain:      site.Subdomain,
		Status:         site.DeploymentStatus,
		Error:          site.DeploymentError,
		URL:            site.URL,
		LastDeployedAt: site.LastDeployedAt,
	}, nil
}

// CheckDeployment polls the hosting provider once for the portfolio's
// in-flight deployment and syncs the site record with the answer. Covers
// callers that want fresher state than the background poller has written.
func (a *App) CheckDeployment(ctx context.Context, userID, portfolioID string) (Status, error) {
	if _, err := a.loadOwnedPortfolio(userID, portfolioID); err != nil {
		return Status{}, err
	}
	site, ok, err := a.store.GetActiveSiteByPortfolio(portfolioID)
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{}, ErrNotFound
	}
	if site.DeploymentUID == "" || a.hosting == nil || site.DeploymentStatus != domain.DeploymentBuilding {
		return a.Status(ctx, userID, portfolioID)
	}

	deployment, err := a.hosting.GetDeployment(ctx, site.DeploymentUID)
	if err != nil {
		return Status{}, &UpstreamError{Err: err}
	}
	switch {
	case deployment.ReadyState == hosting.StateReady:
		a.finishRemoteDeploy(ctx, site.ID, userID, portfolioID, site.Subdomain, deployment, nil)
	case hosting.Finished(deployment.ReadyState):
		message := deployment.Error
		if message == "" {
			message = "deployment ended in state " + deployment.ReadyState
		}
		if err := a.store.SetDeploymentStatus(site.ID, domain.DeploymentFailed, message); err != nil {
			return Status{}, err
		}
	}
	return a.Status(ctx, userID, portfolioID)
}

// GetSiteConfig returns the editable metadata of the active site.
func (a *App) GetSiteConfig(ctx context.Context, userID, portfolioID string) (SiteConfig, error) {
	if _, err := a.loadOwnedPortfolio(userID, portfolioID); err != nil {
		return SiteConfig{}, err
	}
	site, ok, err := a.store.GetActiveSiteByPortfolio(portfolioID)
	if err != nil {
		return SiteConfig{}, err
	}
	if !ok {
		return SiteConfig{}, ErrNotFound
	}
	return SiteConfig{
		Title:        site.Title,
		Description:  site.Description,
		CustomDomain: site.CustomDomain,
	}, nil
}

// UpdateSiteConfig stores new site metadata. Custom-domain DNS automation is
// out of scope; the value is only recorded.
func (a *App) UpdateSiteConfig(ctx context.Context, userID, portfolioID string, cfg SiteConfig) (SiteConfig, error) {
	if strings.TrimSpace(cfg.Title) == "" {
		return SiteConfig{}, validationf("title is required")
	}
	if _, err := a.loadOwnedPortfolio(userID, portfolioID); err != nil {
		return SiteConfig{}, err
	}
	site, ok, err := a.store.GetActiveSiteByPortfolio(portfolioID)
	if err != nil {
		return SiteConfig{}, err
	}
	if !ok {
		return SiteConfig{}, ErrNotFound
	}
	site.Title = strings.TrimSpace(cfg.Title)
	site.Description = strings.TrimSpace(cfg.Description)
	site.CustomDomain = strings.TrimSpace(cfg.CustomDomain)
	site.UpdatedAt = a.now().UTC()
	if err := a.store.SaveSite(site); err != nil {
		return SiteConfig{}, err
	}
	return SiteConfig{Title: site.Title, Description: site.Description, CustomDomain: site.CustomDomain}, nil
}

// ServeSite returns a stored page for an active subdomain. Only index.html
// and generated case-study pages are servable.
func (a *App) ServeSite(ctx context.Context, subdomain, filename string) ([]byte, error) {
	if filename == "" {
		filename = "index.html"
	}
	if !servableFilename(filename) {
		return nil, ErrNotFound
	}
	site, ok, err := a.store.GetActiveSiteBySubdomain(subdomain)
	if err != nil {
		return nil, err
	}
	if !ok || !site.Published {
		return nil, ErrNotFound
	}
	data, err := a.local.ReadFile(subdomain, filename)
	if err != nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// RecordView counts one page view for an active subdomain. Unique visitors
// are tracked via the visitor set keyed by hashed client IP.
func (a *App) RecordView(ctx context.Context, subdomain, referrer, clientIP string) error {
	site, ok, err := a.store.GetActiveSiteBySubdomain(subdomain)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	unique := false
	if clientIP != "" {
		first, err := a.visitors.FirstSeen(ctx, subdomain, HashVisitor(clientIP))
		if err != nil {
			// Counting the view matters more than uniqueness accuracy.
			first = false
		}
		unique = first
	}
	return a.store.RecordView(site.Subdomain, normalizeReferrer(referrer), unique)
}

func servableFilename(name string) bool {
	if name == "index.html" {
		return true
	}
	return strings.HasPrefix(name, "case-study-") && strings.HasSuffix(name, ".html") && safeName(name)
}

func safeName(name string) bool {
	return !strings.ContainsAny(name, "/\\") && !strings.HasPrefix(name, ".")
}

func normalizeReferrer(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return "direct"
	}
	referrer = strings.TrimPrefix(referrer, "https://")
	referrer = strings.TrimPrefix(referrer, "http://")
	if i := strings.IndexByte(referrer, '/'); i > 0 {
		referrer = referrer[:i]
	}
	return referrer
}
