// Package hosting calls the external static-hosting deployment API.
package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"foliohost/pkg/domain"
)

// Ready states reported by the provider.
const (
	StateQueued   = "QUEUED"
	StateBuilding = "BUILDING"
	StateReady    = "READY"
	StateError    = "ERROR"
	StateCanceled = "CANCELED"
)

// Client calls the deployment provider over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError represents a provider error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.Status)
	}
	return e.Message
}

// Deployment is the provider's view of one deployment.
type Deployment struct {
	UID        string `json:"uid"`
	URL        string `json:"url"`
	Alias      string `json:"alias,omitempty"`
	ReadyState string `json:"readyState"`
	Error      string `json:"error,omitempty"`
}

// NewClient constructs a deployment API client. The create call uploads the
// full file set in one request, so the timeout is generous but bounded.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type deploymentFile struct {
	File     string `json:"file"`
	Data     string `json:"data"`
	Encoding string `json:"encoding"`
}

type createDeploymentRequest struct {
	Name   string           `json:"name"`
	Files  []deploymentFile `json:"files"`
	Target string           `json:"target"`
}

// CreateDeployment submits the file set as a single create-deployment call.
// The provider accepts immediately and builds asynchronously; callers poll
// GetDeployment for completion.
func (c *Client) CreateDeployment(ctx context.Context, name string, files domain.DeploymentFileSet) (Deployment, error) {
	payload := createDeploymentRequest{
		Name:   name,
		Files:  make([]deploymentFile, 0, len(files)),
		Target: "production",
	}
	names := make([]string, 0, len(files))
	for file := range files {
		names = append(names, file)
	}
	sort.Strings(names)
	for _, file := range names {
		payload.Files = append(payload.Files, deploymentFile{
			File:     file,
			Data:     files[file],
			Encoding: "utf-8",
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Deployment{}, fmt.Errorf("encode deployment: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/deployments", bytes.NewReader(body))
	if err != nil {
		return Deployment{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var deployment Deployment
	if err := c.do(req, &deployment); err != nil {
		return Deployment{}, err
	}
	return deployment, nil
}

// GetDeployment fetches current build state for a deployment.
func (c *Client) GetDeployment(ctx context.Context, uid string) (Deployment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/deployments/"+uid, nil)
	if err != nil {
		return Deployment{}, err
	}
	var deployment Deployment
	if err := c.do(req, &deployment); err != nil {
		return Deployment{}, err
	}
	return deployment, nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// Finished reports whether a ready state is terminal.
func Finished(state string) bool {
	switch state {
	case StateReady, StateError, StateCanceled:
		return true
	default:
		return false
	}
}
