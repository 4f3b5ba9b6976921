package contentsource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docaudit/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.ContentSourceConfig{BaseURL: srv.URL, Token: "static-token"})
	require.NoError(t, err)
	c.http = srv.Client()
	return c, srv
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.ContentSourceConfig{Token: "t"})
	assert.Error(t, err)

	_, err = NewClient(config.ContentSourceConfig{BaseURL: "http://provider"})
	assert.Error(t, err)
}

func TestClient_Stat(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/item-1", r.URL.Path)
		assert.Equal(t, "Bearer static-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Item{ID: "item-1", Name: "report.pdf", MimeType: "application/pdf", Size: 42})
	})

	it, err := c.Stat(context.Background(), "item-1")

	require.NoError(t, err)
	assert.Equal(t, "report.pdf", it.Name)
	assert.False(t, it.Folder)
}

func TestClient_Stat_NotOK(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Stat(context.Background(), "missing")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestClient_List(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/folders/folder-1/children", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"items": []Item{
			{ID: "a", Name: "a.pdf"},
			{ID: "sub", Name: "nested", Folder: true},
		}})
	})

	items, err := c.List(context.Background(), "folder-1")

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[1].Folder)
}

func TestClient_Download(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/item-1/content", r.URL.Path)
		w.Write([]byte("binary-bytes"))
	})

	data, err := c.Download(context.Background(), "item-1")

	require.NoError(t, err)
	assert.Equal(t, []byte("binary-bytes"), data)
}
