package hosting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"foliohost/pkg/domain"
)

func TestCreateDeployment(t *testing.T) {
	var got createDeploymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/deployments" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Fatalf("missing provider token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Deployment{UID: "dpl_1", URL: "https://alice.example.app", ReadyState: StateQueued})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	files := domain.DeploymentFileSet{
		"index.html":  "<html></html>",
		"vercel.json": "{}",
	}
	deployment, err := client.CreateDeployment(context.Background(), "alice", files)
	if err != nil {
		t.Fatalf("create deployment: %v", err)
	}
	if deployment.UID != "dpl_1" || deployment.ReadyState != StateQueued {
		t.Fatalf("unexpected deployment: %+v", deployment)
	}
	if got.Name != "alice" || got.Target != "production" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(got.Files) != 2 || got.Files[0].File != "index.html" || got.Files[0].Encoding != "utf-8" {
		t.Fatalf("files not submitted in sorted order: %+v", got.Files)
	}
}

func TestCreateDeploymentProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "quota exceeded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CreateDeployment(context.Background(), "alice", domain.DeploymentFileSet{"index.html": "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Message != "quota exceeded" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestGetDeployment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deployments/dpl_1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Deployment{UID: "dpl_1", ReadyState: StateReady})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	deployment, err := client.GetDeployment(context.Background(), "dpl_1")
	if err != nil {
		t.Fatalf("get deployment: %v", err)
	}
	if deployment.ReadyState != StateReady {
		t.Fatalf("unexpected state %q", deployment.ReadyState)
	}
}

func TestFinished(t *testing.T) {
	for state, want := range map[string]bool{
		StateQueued:   false,
		StateBuilding: false,
		StateReady:    true,
		StateError:    true,
		StateCanceled: true,
	} {
		if Finished(state) != want {
			t.Fatalf("Finished(%q) = %v, want %v", state, !want, want)
		}
	}
}
