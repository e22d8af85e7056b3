package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/golang-jwt/jwt/v5"

	"foliohost/internal/app"
	"foliohost/internal/storage"
	"foliohost/internal/store"
	"foliohost/internal/usertoken"
	"foliohost/pkg/domain"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, analyticsLimit int) (*Server, *store.MemoryStore) {
	t.Helper()
	redis := miniredis.RunT(t)
	memory := store.NewMemoryStore()
	application := app.New(app.Options{
		Store:      memory,
		Local:      storage.NewLocalStoreFS(memfs.New()),
		BaseDomain: "folio.test",
	})
	verifier, err := usertoken.NewVerifier(testSecret, "")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	s, err := New(Config{
		App:                         application,
		TokenVerifier:               verifier,
		RedisAddr:                   redis.Addr(),
		AnalyticsRateLimitPerMinute: analyticsLimit,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, memory
}

func token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func seedPortfolio(memory *store.MemoryStore, id, userID string) {
	memory.SeedPortfolio(domain.Portfolio{
		ID:       id,
		UserID:   userID,
		Title:    "Alice Portfolio",
		Template: "minimal",
	})
}

func doJSON(t *testing.T, s *Server, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t, 0)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/sites/publish"},
		{http.MethodPost, "/sites/sub-publish"},
		{http.MethodDelete, "/sites/unpublish/pf-1"},
		{http.MethodGet, "/sites/status?portfolioId=pf-1"},
		{http.MethodGet, "/sites/config?portfolioId=pf-1"},
	}
	for _, tc := range paths {
		rec := doJSON(t, s, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s = %d, want 401", tc.method, tc.path, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Success {
			t.Fatalf("error envelope must have success=false: %+v", env)
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/sites/status?portfolioId=pf-1", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
}

func TestSubPublishAndServe(t *testing.T) {
	s, memory := newTestServer(t, 0)
	seedPortfolio(memory, "pf-1", "user-1")

	rec := doJSON(t, s, http.MethodPost, "/sites/sub-publish", token(t, "user-1"),
		publishRequest{PortfolioID: "pf-1", CustomSubdomain: "Alice Chen"})
	if rec.Code != http.StatusOK {
		t.Fatalf("sub-publish status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "site published" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	data, _ := json.Marshal(env.Data)
	var site domain.Site
	if err := json.Unmarshal(data, &site); err != nil {
		t.Fatalf("decode site data: %v", err)
	}
	if site.Subdomain != "alice-chen" {
		t.Fatalf("subdomain = %q", site.Subdomain)
	}

	page := doJSON(t, s, http.MethodGet, "/sites/alice-chen", "", nil)
	if page.Code != http.StatusOK {
		t.Fatalf("serve status = %d", page.Code)
	}
	if ct := page.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(page.Body.String(), "<html") {
		t.Fatal("expected html page body")
	}

	missing := doJSON(t, s, http.MethodGet, "/sites/nobody", "", nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("unknown subdomain status = %d, want 404", missing.Code)
	}
}

func TestSubPublishRequiresCustomSubdomain(t *testing.T) {
	s, memory := newTestServer(t, 0)
	seedPortfolio(memory, "pf-1", "user-1")

	rec := doJSON(t, s, http.MethodPost, "/sites/sub-publish", token(t, "user-1"),
		publishRequest{PortfolioID: "pf-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubPublishConflictCarriesSuggestions(t *testing.T) {
	s, memory := newTestServer(t, 0)
	seedPortfolio(memory, "pf-1", "user-1")
	seedPortfolio(memory, "pf-2", "user-2")

	if rec := doJSON(t, s, http.MethodPost, "/sites/sub-publish", token(t, "user-1"),
		publishRequest{PortfolioID: "pf-1", CustomSubdomain: "alice"}); rec.Code != http.StatusOK {
		t.Fatalf("first publish status = %d", rec.Code)
	}
	rec := doJSON(t, s, http.MethodPost, "/sites/sub-publish", token(t, "user-2"),
		publishRequest{PortfolioID: "pf-2", CustomSubdomain: "alice"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflict status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "subdomain_taken" {
		t.Fatalf("error code = %q", env.Error)
	}
	data, _ := json.Marshal(env.Data)
	var conflict conflictData
	if err := json.Unmarshal(data, &conflict); err != nil {
		t.Fatalf("decode conflict data: %v", err)
	}
	if len(conflict.Suggestions) < 3 {
		t.Fatalf("expected suggestions, got %v", conflict.Suggestions)
	}
}

func TestStatusAndUnpublish(t *testing.T) {
	s, memory := newTestServer(t, 0)
	seedPortfolio(memory, "pf-1", "user-1")
	bearer := token(t, "user-1")

	rec := doJSON(t, s, http.MethodGet, "/sites/status?portfolioId=pf-1", bearer, nil)
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusOK || env.Message != "not_published" {
		t.Fatalf("pre-publish status: code %d envelope %+v", rec.Code, env)
	}

	if rec := doJSON(t, s, http.MethodPost, "/sites/sub-publish", bearer,
		publishRequest{PortfolioID: "pf-1", CustomSubdomain: "alice"}); rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/sites/status?portfolioId=pf-1", bearer, nil)
	env = decodeEnvelope(t, rec)
	if env.Message != "published" {
		t.Fatalf("post-publish envelope: %+v", env)
	}

	rec = doJSON(t, s, http.MethodDelete, "/sites/unpublish/pf-1", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unpublish status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/sites/status?portfolioId=pf-1", bearer, nil)
	env = decodeEnvelope(t, rec)
	if env.Message != "not_published" {
		t.Fatalf("post-unpublish envelope: %+v", env)
	}

	// Other users cannot unpublish someone else's portfolio.
	rec = doJSON(t, s, http.MethodDelete, "/sites/unpublish/pf-1", token(t, "user-2"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign unpublish status = %d, want 403", rec.Code)
	}
}

func TestSiteConfigEndpoint(t *testing.T) {
	s, memory := newTestServer(t, 0)
	seedPortfolio(memory, "pf-1", "user-1")
	bearer := token(t, "user-1")

	if rec := doJSON(t, s, http.MethodPost, "/sites/sub-publish", bearer,
		publishRequest{PortfolioID: "pf-1", CustomSubdomain: "alice"}); rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d", rec.Code)
	}

	update := map[string]string{
		"portfolioId": "pf-1",
		"title":       "Alice — Product Design",
		"description": "Selected work",
	}
	rec := doJSON(t, s, http.MethodPut, "/sites/config", bearer, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update config status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/sites/config?portfolioId=pf-1", bearer, nil)
	env := decodeEnvelope(t, rec)
	data, _ := json.Marshal(env.Data)
	var cfg app.SiteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Title != "Alice — Product Design" || cfg.Description != "Selected work" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestAnalyticsViewRateLimited(t *testing.T) {
	s, memory := newTestServer(t, 2)
	seedPortfolio(memory, "pf-1", "user-1")
	if rec := doJSON(t, s, http.MethodPost, "/sites/sub-publish", token(t, "user-1"),
		publishRequest{PortfolioID: "pf-1", CustomSubdomain: "alice"}); rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d", rec.Code)
	}

	view := viewRequest{Subdomain: "alice", Referrer: "https://news.example/post"}
	for i := 0; i < 2; i++ {
		rec := doJSON(t, s, http.MethodPost, "/sites/analytics/view", "", view)
		if rec.Code != http.StatusOK {
			t.Fatalf("view %d status = %d, body %s", i, rec.Code, rec.Body.String())
		}
	}
	rec := doJSON(t, s, http.MethodPost, "/sites/analytics/view", "", view)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	site, _, _ := memory.GetActiveSiteBySubdomain("alice")
	if site.ViewCount != 2 {
		t.Fatalf("view count = %d, want 2", site.ViewCount)
	}
}

func TestAnalyticsViewUnknownSubdomain(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec := doJSON(t, s, http.MethodPost, "/sites/analytics/view", "",
		viewRequest{Subdomain: "nobody"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
