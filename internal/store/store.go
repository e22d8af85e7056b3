package store

import "foliohost/pkg/domain"

// Store defines persistence for portfolios, case studies, and site records.
// The publishing core reads portfolios and case studies; it mutates only
// portfolio publish fields and site records.
type Store interface {
	// portfolios
	GetPortfolio(id string) (domain.Portfolio, bool, error)
	SetPortfolioPublishState(id string, published bool, slug, publishedURL string) error

	// case studies
	ListCaseStudies(portfolioID string) ([]domain.CaseStudy, error)

	// sites
	SaveSite(domain.Site) error
	GetSite(id string) (domain.Site, bool, error)
	GetActiveSiteByPortfolio(portfolioID string) (domain.Site, bool, error)
	GetActiveSiteBySubdomain(subdomain string) (domain.Site, bool, error)
	SetDeploymentStatus(siteID string, status domain.DeploymentStatus, errMsg string) error
	DeactivateSite(siteID string) error
	RecordView(subdomain, referrer string, unique bool) error
}
