package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"foliohost/internal/assemble"
	"foliohost/internal/events"
	"foliohost/internal/hosting"
	"foliohost/internal/slug"
	"foliohost/internal/util"
	"foliohost/pkg/domain"
)

// PublishLocal publishes a portfolio to the local static root under a
// custom subdomain. The write-new-verify-then-remove-old ordering makes a
// subdomain rename safe: the old directory survives any failure.
func (a *App) PublishLocal(ctx context.Context, userID, portfolioID, customSubdomain string) (domain.Site, error) {
	p, err := a.loadOwnedPortfolio(userID, portfolioID)
	if err != nil {
		return domain.Site{}, err
	}

	vm, pages, err := a.buildViewModels(p)
	if err != nil {
		return domain.Site{}, err
	}

	subdomain, err := slug.Derive(customSubdomain, vm.About.Name, p.Title, userID)
	if err != nil {
		return domain.Site{}, &ValidationError{Message: err.Error()}
	}

	release, err := a.locker.Acquire(ctx, portfolioID)
	if err != nil {
		return domain.Site{}, err
	}
	defer release()

	site, err := a.resolveSubdomain(userID, portfolioID, subdomain, vm.About.Name)
	if err != nil {
		return domain.Site{}, err
	}
	oldSubdomain := site.Subdomain

	files, err := assemble.Build(ctx, vm, pages, p.Template, assemble.TargetLocal)
	if err != nil {
		return domain.Site{}, err
	}

	log := util.LoggerFromContext(ctx).With("portfolioId", portfolioID, "subdomain", subdomain)

	// Files are written and verified before any record change. A failed
	// write on a first publish commits nothing; on a republish only the
	// status and error text change, and the record keeps describing the
	// directory that is still served.
	if err := a.local.WriteSite(subdomain, files); err != nil {
		if site.ID != "" {
			_ = a.store.SetDeploymentStatus(site.ID, domain.DeploymentFailed, err.Error())
		}
		log.Error("local publish failed", "error", err)
		return domain.Site{}, &IOError{Err: err}
	}

	now := a.now().UTC()
	site.UserID = userID
	site.PortfolioID = portfolioID
	site.Subdomain = subdomain
	site.Title = p.Title
	site.Template = p.Template
	site.Published = true
	site.IsActive = true
	site.DeploymentStatus = domain.DeploymentSuccess
	site.DeploymentError = ""
	site.URL = a.siteURL(subdomain)
	site.LastDeployedAt = &now
	site.Files = fileNames(files)
	if site.ID == "" {
		site.ID = uuid.NewString()
		site.CreatedAt = now
	}
	site.UpdatedAt = now
	if err := a.store.SaveSite(site); err != nil {
		return domain.Site{}, err
	}

	// The old directory only goes away after the new one is verified and the
	// record points at it. Removal failures leave an orphan directory, which
	// is harmless: no active record references it.
	if oldSubdomain != "" && oldSubdomain != subdomain {
		if err := a.local.RemoveSite(oldSubdomain); err != nil {
			log.Warn("old site directory not removed", "oldSubdomain", oldSubdomain, "error", err)
		}
	}

	if a.mirror != nil {
		if err := a.mirror.PutFileSet(ctx, subdomain, files); err != nil {
			log.Warn("mirror upload failed", "error", err)
		}
		if oldSubdomain != "" && oldSubdomain != subdomain {
			if err := a.mirror.RemoveSite(ctx, oldSubdomain); err != nil {
				log.Warn("mirror cleanup failed", "oldSubdomain", oldSubdomain, "error", err)
			}
		}
	}

	if err := a.store.SetPortfolioPublishState(portfolioID, true, subdomain, site.URL); err != nil {
		return domain.Site{}, err
	}

	a.emit(ctx, events.SiteEvent{
		Type:        events.TypeSitePublished,
		UserID:      userID,
		PortfolioID: portfolioID,
		Subdomain:   subdomain,
		URL:         site.URL,
	})
	log.Info("site published", "files", len(files))
	return site, nil
}

// PublishRemote submits a deployment to the hosting provider and returns
// once the provider accepted it. A background poller tracks the build to a
// terminal state.
func (a *App) PublishRemote(ctx context.Context, userID, portfolioID string) (domain.Site, error) {
	if a.hosting == nil {
		return domain.Site{}, validationf("remote deployments are not configured")
	}
	p, err := a.loadOwnedPortfolio(userID, portfolioID)
	if err != nil {
		return domain.Site{}, err
	}

	vm, pages, err := a.buildViewModels(p)
	if err != nil {
		return domain.Site{}, err
	}

	subdomain, err := slug.Derive("", vm.About.Name, p.Title, userID)
	if err != nil {
		return domain.Site{}, &ValidationError{Message: err.Error()}
	}

	release, err := a.locker.Acquire(ctx, portfolioID)
	if err != nil {
		return domain.Site{}, err
	}
	defer release()

	site, err := a.resolveSubdomain(userID, portfolioID, subdomain, vm.About.Name)
	if err != nil {
		return domain.Site{}, err
	}
	if site.Subdomain != "" {
		subdomain = site.Subdomain // republish keeps the established name
	}

	files, err := assemble.Build(ctx, vm, pages, p.Template, assemble.TargetRemote)
	if err != nil {
		return domain.Site{}, err
	}

	log := util.LoggerFromContext(ctx).With("portfolioId", portfolioID, "subdomain", subdomain)

	// A rejected create call must not mint a site record. An existing
	// record keeps its last successful deploy; only status and error text
	// change.
	deployment, err := a.hosting.CreateDeployment(ctx, subdomain, files)
	if err != nil {
		if site.ID != "" {
			_ = a.store.SetDeploymentStatus(site.ID, domain.DeploymentFailed, err.Error())
		}
		log.Error("create deployment failed", "error", err)
		return domain.Site{}, &UpstreamError{Err: err}
	}

	now := a.now().UTC()
	site.UserID = userID
	site.PortfolioID = portfolioID
	site.Subdomain = subdomain
	site.Title = p.Title
	site.Template = p.Template
	site.IsActive = true
	site.DeploymentStatus = domain.DeploymentBuilding
	site.DeploymentError = ""
	site.DeploymentUID = deployment.UID
	if site.ID == "" {
		site.ID = uuid.NewString()
		site.CreatedAt = now
	}
	// Files and URL keep describing the last successful deploy until the
	// poller confirms this one.
	site.UpdatedAt = now
	if err := a.store.SaveSite(site); err != nil {
		return domain.Site{}, err
	}

	log.Info("deployment accepted", "deploymentUid", deployment.UID)
	go a.pollDeployment(site.ID, deployment.UID, userID, portfolioID, subdomain, fileNames(files))
	return site, nil
}

// pollDeployment follows one remote build to a terminal state with capped
// backoff and a hard attempt ceiling. Runs detached from the request.
func (a *App) pollDeployment(siteID, uid, userID, portfolioID, subdomain string, files []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	log := util.LoggerFromContext(ctx).With(
		"pollId", util.NewID(), "deploymentUid", uid, "subdomain", subdomain)

	interval := a.pollInterval
	for attempt := 1; attempt <= a.pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			_ = a.store.SetDeploymentStatus(siteID, domain.DeploymentFailed, "deployment status polling timed out")
			return
		case <-time.After(interval):
		}
		if interval *= 2; interval > a.pollMaxInterval {
			interval = a.pollMaxInterval
		}

		deployment, err := a.hosting.GetDeployment(ctx, uid)
		if err != nil {
			log.Warn("deployment poll failed", "attempt", attempt, "error", err)
			continue
		}
		if !hosting.Finished(deployment.ReadyState) {
			continue
		}

		switch deployment.ReadyState {
		case hosting.StateReady:
			a.finishRemoteDeploy(ctx, siteID, userID, portfolioID, subdomain, deployment, files)
			log.Info("deployment ready", "url", deployment.URL)
		default:
			message := deployment.Error
			if message == "" {
				message = "deployment ended in state " + deployment.ReadyState
			}
			_ = a.store.SetDeploymentStatus(siteID, domain.DeploymentFailed, message)
			a.emit(ctx, events.SiteEvent{
				Type:        events.TypeDeployFailed,
				UserID:      userID,
				PortfolioID: portfolioID,
				Subdomain:   subdomain,
			})
			log.Warn("deployment failed", "state", deployment.ReadyState, "error", message)
		}
		return
	}
	_ = a.store.SetDeploymentStatus(siteID, domain.DeploymentFailed, "deployment did not finish within the polling window")
	log.Warn("deployment polling exhausted")
}

func (a *App) finishRemoteDeploy(ctx context.Context, siteID, userID, portfolioID, subdomain string, deployment hosting.Deployment, files []string) {
	site, ok, err := a.store.GetSite(siteID)
	if err != nil || !ok {
		return
	}
	now := a.now().UTC()
	site.Published = true
	site.DeploymentStatus = domain.DeploymentSuccess
	site.DeploymentError = ""
	if deployment.URL != "" {
		site.URL = "https://" + deployment.URL
	}
	if len(files) > 0 {
		site.Files = files
	}
	site.LastDeployedAt = &now
	site.UpdatedAt = now
	if err := a.store.SaveSite(site); err != nil {
		return
	}
	_ = a.store.SetPortfolioPublishState(portfolioID, true, subdomain, site.URL)
	a.emit(ctx, events.SiteEvent{
		Type:        events.TypeSitePublished,
		UserID:      userID,
		PortfolioID: portfolioID,
		Subdomain:   subdomain,
		URL:         site.URL,
	})
}

// Unpublish soft-deletes the active site: files removed best-effort, record
// deactivated, portfolio publish fields cleared. The subdomain becomes
// available again.
func (a *App) Unpublish(ctx context.Context, userID, portfolioID string) error {
	if _, err := a.loadOwnedPortfolio(userID, portfolioID); err != nil {
		return err
	}
	site, ok, err := a.store.GetActiveSiteByPortfolio(portfolioID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	release, err := a.locker.Acquire(ctx, portfolioID)
	if err != nil {
		return err
	}
	defer release()

	log := util.LoggerFromContext(ctx).With("portfolioId", portfolioID, "subdomain", site.Subdomain)
	if err := a.local.RemoveSite(site.Subdomain); err != nil {
		log.Warn("site directory not removed on unpublish", "error", err)
	}
	if a.mirror != nil {
		if err := a.mirror.RemoveSite(ctx, site.Subdomain); err != nil {
			log.Warn("mirror not cleaned on unpublish", "error", err)
		}
	}

	if err := a.store.DeactivateSite(site.ID); err != nil {
		return err
	}
	if err := a.store.SetPortfolioPublishState(portfolioID, false, "", ""); err != nil {
		return err
	}

	a.emit(ctx, events.SiteEvent{
		Type:        events.TypeSiteUnpublished,
		UserID:      userID,
		PortfolioID: portfolioID,
		Subdomain:   site.Subdomain,
	})
	log.Info("site unpublished")
	return nil
}

// resolveSubdomain applies the ownership rules for a candidate subdomain
// against active site records. Returns the portfolio's existing site record
// (possibly empty) when the candidate is acceptable.
func (a *App) resolveSubdomain(userID, portfolioID, subdomain, ownerName string) (domain.Site, error) {
	taken, exists, err := a.store.GetActiveSiteBySubdomain(subdomain)
	if err != nil {
		return domain.Site{}, err
	}
	if exists && (taken.UserID != userID || taken.PortfolioID != portfolioID) {
		return domain.Site{}, &ConflictError{
			Subdomain:   subdomain,
			Suggestions: slug.Suggestions(subdomain, ownerName, a.now().Year()),
		}
	}

	current, ok, err := a.store.GetActiveSiteByPortfolio(portfolioID)
	if err != nil {
		return domain.Site{}, err
	}
	if !ok {
		return domain.Site{}, nil
	}
	return current, nil
}

func (a *App) emit(ctx context.Context, event events.SiteEvent) {
	if err := a.events.PublishSiteEvent(ctx, event); err != nil {
		util.LoggerFromContext(ctx).Warn("site event not published", "type", event.Type, "error", err)
	}
}
