package domain

import (
	"encoding/json"
	"time"
)

type DeploymentStatus string

const (
	DeploymentDraft    DeploymentStatus = "draft"
	DeploymentBuilding DeploymentStatus = "building"
	DeploymentSuccess  DeploymentStatus = "success"
	DeploymentFailed   DeploymentStatus = "failed"
)

// Portfolio is the user's project-showcase document. The publishing core
// reads it and writes back only the publish fields (IsPublished, Slug,
// PublishedURL, PublishedAt); all other mutation happens elsewhere.
type Portfolio struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Template     string          `json:"template"`
	Content      json.RawMessage `json:"content,omitempty"`
	IsPublished  bool            `json:"isPublished"`
	Slug         string          `json:"slug,omitempty"`
	PublishedURL string          `json:"publishedUrl,omitempty"`
	PublishedAt  *time.Time      `json:"publishedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CaseStudy is a per-project write-up linked to a portfolio by ProjectID.
// At most one case study exists per (PortfolioID, ProjectID).
type CaseStudy struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	ProjectID   string          `json:"projectId"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Overview    string          `json:"overview"`
	HeroImage   string          `json:"heroImage"`
	HeroCaption string          `json:"heroCaption"`
	AuthorName  string          `json:"authorName"`
	Sections    json.RawMessage `json:"sections,omitempty"`
	Conclusion  string          `json:"conclusion"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Site tracks one published portfolio: its public subdomain, deployment
// state, and view counters. Soft-deleted on unpublish, never hard-deleted.
type Site struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	PortfolioID      string           `json:"portfolioId"`
	Subdomain        string           `json:"subdomain"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	CustomDomain     string           `json:"customDomain,omitempty"`
	Template         string           `json:"template"`
	Published        bool             `json:"published"`
	IsActive         bool             `json:"isActive"`
	DeploymentStatus DeploymentStatus `json:"deploymentStatus"`
	DeploymentError  string           `json:"deploymentError,omitempty"`
	DeploymentUID    string           `json:"deploymentUid,omitempty"`
	URL              string           `json:"url,omitempty"`
	LastDeployedAt   *time.Time       `json:"lastDeployedAt,omitempty"`
	Files            []string         `json:"files"`
	ViewCount        int64            `json:"viewCount"`
	UniqueVisitors   int64            `json:"uniqueVisitors"`
	Referrers        []Referrer       `json:"referrers"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Referrer is an upsert-style counter for one traffic source.
type Referrer struct {
	Source   string    `json:"source"`
	Count    int64     `json:"count"`
	LastSeen time.Time `json:"lastSeen"`
}

// PortfolioViewModel is the canonical rendering model every historical
// content shape is normalized into. Produced fresh per render, never stored.
type PortfolioViewModel struct {
	Hero    HeroViewModel    `json:"hero"`
	About   AboutViewModel   `json:"about"`
	Work    WorkViewModel    `json:"work"`
	Gallery GalleryViewModel `json:"gallery"`
	Contact ContactViewModel `json:"contact"`
}

type HeroViewModel struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type AboutViewModel struct {
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Image string `json:"image"`
}

type WorkViewModel struct {
	Heading  string             `json:"heading"`
	Projects []ProjectViewModel `json:"projects"`
}

type ProjectViewModel struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Meta         string `json:"meta"`
	HasCaseStudy bool   `json:"hasCaseStudy"`
}

type GalleryViewModel struct {
	Heading string                  `json:"heading"`
	Images  []GalleryImageViewModel `json:"images"`
}

type GalleryImageViewModel struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
}

type ContactViewModel struct {
	Heading string `json:"heading"`
	Email   string `json:"email"`
}

// CaseStudyViewModel is the uniform case-study rendering model shared by
// every template family.
type CaseStudyViewModel struct {
	Category    string             `json:"category"`
	Title       string             `json:"title"`
	Intro       string             `json:"intro"`
	HeroImage   string             `json:"heroImage"`
	HeroCaption string             `json:"heroCaption"`
	AuthorName  string             `json:"authorName"`
	Sections    []CaseStudySection `json:"sections"`
	Conclusion  string             `json:"conclusion"`
	Stub        bool               `json:"stub"`
}

type CaseStudySection struct {
	Number      string   `json:"number"`
	Title       string   `json:"title"`
	Subsections []string `json:"subsections"`
}

// DeploymentFileSet maps relative filenames to rendered content for one
// publish attempt. It always contains index.html.
type DeploymentFileSet map[string]string
