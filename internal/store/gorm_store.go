package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foliohost/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&PortfolioModel{}, &CaseStudyModel{}, &SiteModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// GetPortfolio looks up a portfolio by id.
func (s *GormStore) GetPortfolio(id string) (domain.Portfolio, bool, error) {
	var model PortfolioModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Portfolio{}, false, nil
		}
		return domain.Portfolio{}, false, err
	}
	return portfolioFromModel(model), true, nil
}

// SetPortfolioPublishState writes back only the publish fields.
func (s *GormStore) SetPortfolioPublishState(id string, published bool, slug, publishedURL string) error {
	updates := map[string]any{
		"is_published":  published,
		"slug":          slug,
		"published_url": publishedURL,
		"updated_at":    time.Now().UTC(),
	}
	if published {
		updates["published_at"] = time.Now().UTC()
	} else {
		updates["published_at"] = nil
	}
	return s.db.Model(&PortfolioModel{}).Where("id = ?", id).Updates(updates).Error
}

// ListCaseStudies returns all case studies for a portfolio.
func (s *GormStore) ListCaseStudies(portfolioID string) ([]domain.CaseStudy, error) {
	var models []CaseStudyModel
	if err := s.db.Where("portfolio_id = ?", portfolioID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CaseStudy, 0, len(models))
	for _, m := range models {
		res = append(res, caseStudyFromModel(m))
	}
	return res, nil
}

// SaveSite stores or updates a site record.
func (s *GormStore) SaveSite(site domain.Site) error {
	model, err := siteToModel(site)
	if err != nil {
		return fmt.Errorf("encode site: %w", err)
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subdomain", "title", "description", "custom_domain", "template",
			"published", "is_active", "deployment_status", "deployment_error",
			"deployment_uid", "url", "last_deployed_at", "files", "updated_at",
		}),
	}).Create(&model).Error
}

// GetSite retrieves a site by id regardless of active state.
func (s *GormStore) GetSite(id string) (domain.Site, bool, error) {
	return s.findSite("id = ?", id)
}

// GetActiveSiteByPortfolio returns the single active site for a portfolio.
func (s *GormStore) GetActiveSiteByPortfolio(portfolioID string) (domain.Site, bool, error) {
	return s.findSite("portfolio_id = ? AND is_active = ?", portfolioID, true)
}

// GetActiveSiteBySubdomain returns the active site occupying a subdomain.
// Deactivated sites do not hold their subdomain.
func (s *GormStore) GetActiveSiteBySubdomain(subdomain string) (domain.Site, bool, error) {
	return s.findSite("subdomain = ? AND is_active = ?", subdomain, true)
}

func (s *GormStore) findSite(cond string, args ...any) (domain.Site, bool, error) {
	var model SiteModel
	if err := s.db.Where(cond, args...).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Site{}, false, nil
		}
		return domain.Site{}, false, err
	}
	return siteFromModel(model), true, nil
}

// SetDeploymentStatus updates deployment state and error text.
func (s *GormStore) SetDeploymentStatus(siteID string, status domain.DeploymentStatus, errMsg string) error {
	updates := map[string]any{
		"deployment_status": string(status),
		"deployment_error":  errMsg,
		"updated_at":        time.Now().UTC(),
	}
	if status == domain.DeploymentSuccess {
		updates["last_deployed_at"] = time.Now().UTC()
	}
	return s.db.Model(&SiteModel{}).Where("id = ?", siteID).Updates(updates).Error
}

// DeactivateSite soft-deletes a site, releasing its subdomain.
func (s *GormStore) DeactivateSite(siteID string) error {
	return s.db.Model(&SiteModel{}).Where("id = ?", siteID).Updates(map[string]any{
		"is_active":  false,
		"published":  false,
		"updated_at": time.Now().UTC(),
	}).Error
}

// RecordView bumps view counters and upserts the referrer entry inside one
// transaction so concurrent views do not lose referrer updates.
func (s *GormStore) RecordView(subdomain, referrer string, unique bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model SiteModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("subdomain = ? AND is_active = ?", subdomain, true).
			First(&model).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		updates := map[string]any{
			"view_count": gorm.Expr("view_count + 1"),
			"updated_at": time.Now().UTC(),
		}
		if unique {
			updates["unique_visitors"] = gorm.Expr("unique_visitors + 1")
		}
		if referrer != "" {
			var referrers []domain.Referrer
			_ = json.Unmarshal(model.Referrers, &referrers)
			encoded, err := json.Marshal(upsertReferrer(referrers, referrer, time.Now().UTC()))
			if err != nil {
				return err
			}
			updates["referrers"] = datatypes.JSON(encoded)
		}
		return tx.Model(&SiteModel{}).Where("id = ?", model.ID).Updates(updates).Error
	})
}

func upsertReferrer(referrers []domain.Referrer, source string, now time.Time) []domain.Referrer {
	for i := range referrers {
		if referrers[i].Source == source {
			referrers[i].Count++
			referrers[i].LastSeen = now
			return referrers
		}
	}
	return append(referrers, domain.Referrer{Source: source, Count: 1, LastSeen: now})
}
