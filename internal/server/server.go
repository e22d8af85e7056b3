// Package server exposes the publishing pipeline over HTTP. All API
// responses share the {success, message, data} envelope; published pages
// are served as plain HTML.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foliohost/internal/app"
	"foliohost/internal/publock"
	"foliohost/internal/ratelimit"
	"foliohost/internal/usertoken"
	"foliohost/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App           *app.App
	TokenVerifier *usertoken.Verifier

	RedisAddr                   string
	RedisPassword               string
	AnalyticsRateLimitPerMinute int

	TrustedProxies *util.TrustedProxies
}

// Server exposes HTTP endpoints for the publishing backend.
type Server struct {
	app              *app.App
	tokenVerifier    *usertoken.Verifier
	mux              *http.ServeMux
	analyticsLimiter *ratelimit.FixedWindowLimiter
	trustedProxies   *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	analyticsLimit := cfg.AnalyticsRateLimitPerMinute
	if analyticsLimit <= 0 {
		analyticsLimit = 60
	}
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(
		cfg.RedisAddr, cfg.RedisPassword, "foliohost:ratelimit:analytics", analyticsLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init analytics limiter: %w", err)
	}
	s := &Server{
		app:              cfg.App,
		tokenVerifier:    cfg.TokenVerifier,
		mux:              http.NewServeMux(),
		analyticsLimiter: limiter,
		trustedProxies:   cfg.TrustedProxies,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with ambient middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders("/sites/", util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// publish lifecycle (auth required)
	s.mux.Handle("/sites/publish", s.authenticated(s.handlePublish))
	s.mux.Handle("/sites/sub-publish", s.authenticated(s.handleSubPublish))
	s.mux.Handle("/sites/unpublish/", s.authenticated(s.handleUnpublish))
	s.mux.Handle("/sites/status", s.authenticated(s.handleStatus))
	s.mux.Handle("/sites/deploy-status", s.authenticated(s.handleDeployStatus))
	s.mux.Handle("/sites/config", s.authenticated(s.handleSiteConfig))

	// public
	s.mux.HandleFunc("/sites/analytics/view", s.handleAnalyticsView)
	s.mux.HandleFunc("/sites/", s.handleServeSite)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrapper
type authHandler func(http.ResponseWriter, *http.Request, string)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := usertoken.BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		userID, err := s.tokenVerifier.VerifySubject(token)
		if err != nil {
			util.LoggerFromContext(r.Context()).Warn("token rejected", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, userID)
	})
}

type publishRequest struct {
	PortfolioID     string `json:"portfolioId"`
	CustomSubdomain string `json:"customSubdomain"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req publishRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	site, err := s.app.PublishRemote(r.Context(), userID, req.PortfolioID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeSuccess(w, http.StatusAccepted, "deployment started", site)
}

func (s *Server) handleSubPublish(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req publishRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CustomSubdomain) == "" {
		writeError(w, http.StatusBadRequest, "customSubdomain is required")
		return
	}
	site, err := s.app.PublishLocal(r.Context(), userID, req.PortfolioID, req.CustomSubdomain)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "site published", site)
}

func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	portfolioID := strings.TrimPrefix(r.URL.Path, "/sites/unpublish/")
	if portfolioID == "" || strings.Contains(portfolioID, "/") {
		writeError(w, http.StatusBadRequest, "portfolioId is required")
		return
	}
	if err := s.app.Unpublish(r.Context(), userID, portfolioID); err != nil {
		writeAppError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "site unpublished", nil)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	status, err := s.app.Status(r.Context(), userID, r.URL.Query().Get("portfolioId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	message := "not_published"
	if status.Published {
		message = "published"
	}
	writeSuccess(w, http.StatusOK, message, status)
}

func (s *Server) handleDeployStatus(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	status, err := s.app.CheckDeployment(r.Context(), userID, r.URL.Query().Get("portfolioId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, string(status.Status), status)
}

func (s *Server) handleSiteConfig(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.app.GetSiteConfig(r.Context(), userID, r.URL.Query().Get("portfolioId"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "", cfg)
	case http.MethodPut:
		var req struct {
			PortfolioID string `json:"portfolioId"`
			app.SiteConfig
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		cfg, err := s.app.UpdateSiteConfig(r.Context(), userID, req.PortfolioID, req.SiteConfig)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, "site config updated", cfg)
	default:
		methodNotAllowed(w)
	}
}

type viewRequest struct {
	Subdomain string `json:"subdomain"`
	Referrer  string `json:"referrer"`
}

func (s *Server) handleAnalyticsView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	ip := util.ClientIP(r, s.trustedProxies)
	if !s.analyticsLimiter.Allow(ip) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req viewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Subdomain) == "" {
		writeError(w, http.StatusBadRequest, "subdomain is required")
		return
	}
	if err := s.app.RecordView(r.Context(), req.Subdomain, req.Referrer, ip); err != nil {
		writeAppError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "view recorded", nil)
}

// handleServeSite serves stored pages: /sites/<subdomain> for the index and
// /sites/<subdomain>/<page>.html for generated case-study pages.
func (s *Server) handleServeSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/sites/")
	subdomain, filename, _ := strings.Cut(strings.TrimSuffix(rest, "/"), "/")
	if subdomain == "" {
		http.NotFound(w, r)
		return
	}
	page, err := s.app.ServeSite(r.Context(), subdomain, filename)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// envelope helpers

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg, Error: msg})
}

type conflictData struct {
	Subdomain   string   `json:"subdomain"`
	Suggestions []string `json:"suggestions"`
}

// writeAppError maps orchestrator errors to HTTP. The error taxonomy is
// resolved here only; handlers never inspect status codes.
func writeAppError(w http.ResponseWriter, err error) {
	var validation *app.ValidationError
	var conflict *app.ConflictError
	var upstream *app.UpstreamError
	var ioErr *app.IOError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, envelope{
			Success: false,
			Message: conflict.Error(),
			Error:   "subdomain_taken",
			Data:    conflictData{Subdomain: conflict.Subdomain, Suggestions: conflict.Suggestions},
		})
	case errors.Is(err, publock.ErrLocked):
		writeError(w, http.StatusConflict, publock.ErrLocked.Error())
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, upstream.Error())
	case errors.As(err, &ioErr):
		writeError(w, http.StatusInternalServerError, "site storage failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
