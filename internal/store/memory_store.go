package store

import (
	"sync"
	"time"

	"foliohost/pkg/domain"
)

// MemoryStore keeps records in-process. Used by tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	portfolios  map[string]domain.Portfolio
	caseStudies map[string][]domain.CaseStudy // key: portfolio ID
	sites       map[string]domain.Site        // key: site ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		portfolios:  make(map[string]domain.Portfolio),
		caseStudies: make(map[string][]domain.CaseStudy),
		sites:       make(map[string]domain.Site),
	}
}

// SeedPortfolio inserts a portfolio record.
func (m *MemoryStore) SeedPortfolio(p domain.Portfolio) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[p.ID] = p
}

// SeedCaseStudy inserts a case-study record.
func (m *MemoryStore) SeedCaseStudy(cs domain.CaseStudy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caseStudies[cs.PortfolioID] = append(m.caseStudies[cs.PortfolioID], cs)
}

func (m *MemoryStore) GetPortfolio(id string) (domain.Portfolio, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.portfolios[id]
	return p, ok, nil
}

func (m *MemoryStore) SetPortfolioPublishState(id string, published bool, slug, publishedURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.portfolios[id]
	if !ok {
		return nil
	}
	p.IsPublished = published
	p.Slug = slug
	p.PublishedURL = publishedURL
	if published {
		now := time.Now().UTC()
		p.PublishedAt = &now
	} else {
		p.PublishedAt = nil
	}
	p.UpdatedAt = time.Now().UTC()
	m.portfolios[id] = p
	return nil
}

func (m *MemoryStore) ListCaseStudies(portfolioID string) ([]domain.CaseStudy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CaseStudy, len(m.caseStudies[portfolioID]))
	copy(out, m.caseStudies[portfolioID])
	return out, nil
}

func (m *MemoryStore) SaveSite(site domain.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	site.UpdatedAt = time.Now().UTC()
	m.sites[site.ID] = site
	return nil
}

func (m *MemoryStore) GetSite(id string) (domain.Site, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	site, ok := m.sites[id]
	return site, ok, nil
}

func (m *MemoryStore) GetActiveSiteByPortfolio(portfolioID string) (domain.Site, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, site := range m.sites {
		if site.PortfolioID == portfolioID && site.IsActive {
			return site, true, nil
		}
	}
	return domain.Site{}, false, nil
}

func (m *MemoryStore) GetActiveSiteBySubdomain(subdomain string) (domain.Site, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, site := range m.sites {
		if site.Subdomain == subdomain && site.IsActive {
			return site, true, nil
		}
	}
	return domain.Site{}, false, nil
}

func (m *MemoryStore) SetDeploymentStatus(siteID string, status domain.DeploymentStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	site, ok := m.sites[siteID]
	if !ok {
		return nil
	}
	site.DeploymentStatus = status
	site.DeploymentError = errMsg
	if status == domain.DeploymentSuccess {
		now := time.Now().UTC()
		site.LastDeployedAt = &now
	}
	site.UpdatedAt = time.Now().UTC()
	m.sites[siteID] = site
	return nil
}

func (m *MemoryStore) DeactivateSite(siteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	site, ok := m.sites[siteID]
	if !ok {
		return nil
	}
	site.IsActive = false
	site.Published = false
	site.UpdatedAt = time.Now().UTC()
	m.sites[siteID] = site
	return nil
}

func (m *MemoryStore) RecordView(subdomain, referrer string, unique bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, site := range m.sites {
		if site.Subdomain != subdomain || !site.IsActive {
			continue
		}
		site.ViewCount++
		if unique {
			site.UniqueVisitors++
		}
		if referrer != "" {
			site.Referrers = upsertReferrer(site.Referrers, referrer, time.Now().UTC())
		}
		site.UpdatedAt = time.Now().UTC()
		m.sites[id] = site
		return nil
	}
	return nil
}
