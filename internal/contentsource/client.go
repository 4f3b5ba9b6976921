package contentsource

// Package contentsource talks to the external content provider (a
// third-party file/folder API). All calls authenticate with a static service
// credential, never an end-user session.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docaudit/internal/config"
)

// Item is provider metadata for one file or folder.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Folder   bool   `json:"folder"`
}

// Source is the capability the import orchestrator consumes.
type Source interface {
	// Stat returns metadata for a single item.
	Stat(ctx context.Context, id string) (*Item, error)
	// List returns the direct children of a folder. Sub-folders are included
	// and must be filtered by the caller.
	List(ctx context.Context, folderID string) ([]Item, error)
	// Download fetches an item's bytes.
	Download(ctx context.Context, id string) ([]byte, error)
}

// Client is the HTTP implementation of Source.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient validates the configuration and builds a provider client. No
// network calls are made; failures surface on first use.
func NewClient(cfg config.ContentSourceConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("content source base url is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("content source token is required")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

var _ Source = (*Client)(nil)

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return resp, nil
}

// Stat returns metadata for one item.
func (c *Client) Stat(ctx context.Context, id string) (*Item, error) {
	resp, err := c.get(ctx, "/files/"+id)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var it Item
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return &it, nil
}

// List returns the direct children of a folder.
func (c *Client) List(ctx context.Context, folderID string) ([]Item, error) {
	resp, err := c.get(ctx, "/folders/"+folderID+"/children")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Items []Item `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return out.Items, nil
}

// Download fetches an item's content. Items are bounded by the ingestion
// size ceiling, so buffering in memory keeps the payload replayable for the
// upload strategy chain.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.get(ctx, "/files/"+id+"/content")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}
