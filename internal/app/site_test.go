package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"foliohost/pkg/domain"
)

func TestStatusNotPublished(t *testing.T) {
	a, memory, _ := newTestApp(t, Options{})
	seedPortfolio(memory, "pf-1", "user-1", "Alice Portfolio")

	status, err := a.Status(context.Background(), "user-1", "pf-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Published || status.Subdomain != "" {
		t.Fatalf("expected unpublished zero status, got %+v", status)
	}
}

func TestStatusAfterPublish(t *testing.T) {
	a, memory, _ := newTestApp(t, Options{})
	seedPortfolio(memory, "pf-1", "user-1", "Alice Portfolio")

	if _, err := a.PublishLocal(context.Background(), "user-1", "pf-1", "alice"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	status, err := a.Status(context.Background(), "user-1", "pf-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Published || status.Subdomain != "alice" || status.Status != domain.DeploymentSuccess {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.LastDeployedAt == nil {
		t.Fatal("lastDeployedAt missing")
	}

	if _, err := a.Status(context.Background(), "user-2", "pf-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
}

func TestServeSite(t *testing.T) {
	a, memory, _ := newTestApp(t, Options{})
	seedPortfolio(memory, "pf-1", "user-1", "Alice Portfolio")
	memory.SeedCaseStudy(domain.CaseStudy{
		ID:          "cs-1",
		PortfolioID: "pf-1",
		ProjectID:   "project-1",
		Title:       "Atlas Redesign",
		Overview:    "A real overview.",
	})
	if _, err := a.PublishLocal(context.Background(), "user-1", "pf-1", "alice"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	page, err := a.ServeSite(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("serve index: %v", err)
	}
	if !strings.Contains(string(page), "<html") {
		t.Fatal("expected html index page")
	}

	if _, err := a.ServeSite(context.Background(), "alice", "case-study-project-1.html"); err != nil {
		t.Fatalf("serve case study: %v", err)
	}

	if _, err := a.ServeSite(context.Background(), "alice", "../escape.html"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for traversal name, got %v", err)
	}
	if _, err := a.ServeSite(context.Background(), "alice", "vercel.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("only html pages are servable, got %v", err)
	}
	if _, err := a.ServeSite(context.Background(), "nobody", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown subdomain, got %v", err)
	}

	if err := a.Unpublish(context.Background(), "user-1", "pf-1"); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if _, err := a.ServeSite(context.Background(), "alice", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unpublished site must 404, got %v", err)
	}
}

func TestRecordView(t *testing.T) {
	a, memory, _ := newTestApp(t, Options{})
	seedPortfolio(memory, "pf-1", "user-1", "Alice Portfolio")
	if _, err := a.PublishLocal(context.Background(), "user-1", "pf-1", "alice"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, ip := range []string{"203.0.113.5", "203.0.113.5", "203.0.113.9"} {
		if err := a.RecordView(context.Background(), "alice", "https://news.example/post/1", ip); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}

	site, _, _ := memory.GetActiveSiteBySubdomain("alice")
	if site.ViewCount != 3 {
		t.Fatalf("view count = %d, want 3", site.ViewCount)
	}
	if site.UniqueVisitors != 2 {
		t.Fatalf("unique visitors = %d, want 2", site.UniqueVisitors)
	}
	if len(site.Referrers) != 1 || site.Referrers[0].Source != "news.example" || site.Referrers[0].Count != 3 {
		t.Fatalf("unexpected referrers: %+v", site.Referrers)
	}

	if err := a.RecordView(context.Background(), "nobody", "", "203.0.113.5"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown subdomain, got %v", err)
	}
}

func TestSiteConfigRoundTrip(t *testing.T) {
	a, memory, _ := newTestApp(t, Options{})
	seedPortfolio(memory, "pf-1", "user-1", "Alice Portfolio")
	if _, err := a.PublishLocal(context.Background(), "user-1", "pf-1", "alice"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	updated, err := a.UpdateSiteConfig(context.Background(), "user-1", "pf-1", SiteConfig{
		Title:        "Alice — Product Design",
		Description:  "Selected work",
		CustomDomain: "alice.design",
	})
	if err != nil {
		t.Fatalf("update config: %v", err)
	}
	got, err := a.GetSiteConfig(context.Background(), "user-1", "pf-1")
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if got != updated {
		t.Fatalf("config round trip mismatch: %+v vs %+v", got, updated)
	}

	if _, err := a.UpdateSiteConfig(context.Background(), "user-1", "pf-1", SiteConfig{Title: "  "}); err == nil {
		t.Fatal("expected validation error for empty title")
	}
	if _, err := a.GetSiteConfig(context.Background(), "user-2", "pf-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestNormalizeReferrer(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "direct"},
		{"   ", "direct"},
		{"https://news.example/post/1", "news.example"},
		{"http://blog.example", "blog.example"},
		{"twitter.com/alice", "twitter.com"},
	}
	for _, tc := range tests {
		if got := normalizeReferrer(tc.in); got != tc.want {
			t.Fatalf("normalizeReferrer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
