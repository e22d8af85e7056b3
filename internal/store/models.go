package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"foliohost/pkg/domain"
)

// GORM models used for persistence. Structured payloads (portfolio content,
// case-study sections, site files and referrers) live in jsonb columns.
type PortfolioModel struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"not null;index"`
	Title        string `gorm:"not null"`
	Description  string
	Template     string
	Content      datatypes.JSON `gorm:"type:jsonb"`
	IsPublished  bool           `gorm:"not null"`
	Slug         string         `gorm:"index"`
	PublishedURL string
	PublishedAt  *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type CaseStudyModel struct {
	ID          string `gorm:"primaryKey"`
	PortfolioID string `gorm:"not null;index;uniqueIndex:idx_case_study_project"`
	ProjectID   string `gorm:"not null;uniqueIndex:idx_case_study_project"`
	Category    string
	Title       string
	Overview    string
	HeroImage   string
	HeroCaption string
	AuthorName  string
	Sections    datatypes.JSON `gorm:"type:jsonb"`
	Conclusion  string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type SiteModel struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"not null;index"`
	PortfolioID      string `gorm:"not null;index"`
	Subdomain        string `gorm:"not null;index"`
	Title            string
	Description      string
	CustomDomain     string
	Template         string
	Published        bool   `gorm:"not null"`
	IsActive         bool   `gorm:"not null;index"`
	DeploymentStatus string `gorm:"not null"`
	DeploymentError  string
	DeploymentUID    string
	URL              string
	LastDeployedAt   *time.Time
	Files            datatypes.JSON `gorm:"type:jsonb"`
	ViewCount        int64          `gorm:"not null;default:0"`
	UniqueVisitors   int64          `gorm:"not null;default:0"`
	Referrers        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"not null"`
	UpdatedAt        time.Time      `gorm:"not null"`
}

func portfolioFromModel(m PortfolioModel) domain.Portfolio {
	return domain.Portfolio{
		ID:           m.ID,
		UserID:       m.UserID,
		Title:        m.Title,
		Description:  m.Description,
		Template:     m.Template,
		Content:      json.RawMessage(m.Content),
		IsPublished:  m.IsPublished,
		Slug:         m.Slug,
		PublishedURL: m.PublishedURL,
		PublishedAt:  m.PublishedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func caseStudyFromModel(m CaseStudyModel) domain.CaseStudy {
	return domain.CaseStudy{
		ID:          m.ID,
		PortfolioID: m.PortfolioID,
		ProjectID:   m.ProjectID,
		Category:    m.Category,
		Title:       m.Title,
		Overview:    m.Overview,
		HeroImage:   m.HeroImage,
		HeroCaption: m.HeroCaption,
		AuthorName:  m.AuthorName,
		Sections:    json.RawMessage(m.Sections),
		Conclusion:  m.Conclusion,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func siteToModel(s domain.Site) (SiteModel, error) {
	files, err := json.Marshal(s.Files)
	if err != nil {
		return SiteModel{}, err
	}
	referrers, err := json.Marshal(s.Referrers)
	if err != nil {
		return SiteModel{}, err
	}
	return SiteModel{
		ID:               s.ID,
		UserID:           s.UserID,
		PortfolioID:      s.PortfolioID,
		Subdomain:        s.Subdomain,
		Title:            s.Title,
		Description:      s.Description,
		CustomDomain:     s.CustomDomain,
		Template:         s.Template,
		Published:        s.Published,
		IsActive:         s.IsActive,
		DeploymentStatus: string(s.DeploymentStatus),
		DeploymentError:  s.DeploymentError,
		DeploymentUID:    s.DeploymentUID,
		URL:              s.URL,
		LastDeployedAt:   s.LastDeployedAt,
		Files:            datatypes.JSON(files),
		ViewCount:        s.ViewCount,
		UniqueVisitors:   s.UniqueVisitors,
		Referrers:        datatypes.JSON(referrers),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}, nil
}

func siteFromModel(m SiteModel) domain.Site {
	var files []string
	_ = json.Unmarshal(m.Files, &files)
	var referrers []domain.Referrer
	_ = json.Unmarshal(m.Referrers, &referrers)
	if files == nil {
		files = []string{}
	}
	if referrers == nil {
		referrers = []domain.Referrer{}
	}
	return domain.Site{
		ID:               m.ID,
		UserID:           m.UserID,
		PortfolioID:      m.PortfolioID,
		Subdomain:        m.Subdomain,
		Title:            m.Title,
		Description:      m.Description,
		CustomDomain:     m.CustomDomain,
		Template:         m.Template,
		Published:        m.Published,
		IsActive:         m.IsActive,
		DeploymentStatus: domain.DeploymentStatus(m.DeploymentStatus),
		DeploymentError:  m.DeploymentError,
		DeploymentUID:    m.DeploymentUID,
		URL:              m.URL,
		LastDeployedAt:   m.LastDeployedAt,
		Files:            files,
		ViewCount:        m.ViewCount,
		UniqueVisitors:   m.UniqueVisitors,
		Referrers:        referrers,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
