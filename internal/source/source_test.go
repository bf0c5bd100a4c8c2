package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outagemonitor/internal/config"
	"outagemonitor/internal/models"
	"outagemonitor/internal/storage"
)

func testSourceConfig(url string) config.SourceConfig {
	cfg := config.DefaultConfig().Source
	cfg.URL = url
	return cfg
}

func TestHTTPFetcherSendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("<article>1.1 10:00-12:00</article>"))
	}))
	defer srv.Close()

	body, err := NewHTTPFetcher(testSourceConfig(srv.URL), nil).Page(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<article>1.1 10:00-12:00</article>", body)
	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, "uk-UA,uk;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "https://www.zoe.com.ua/", got.Get("Referer"))
}

func TestHTTPFetcherToleratesSelfSignedTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := NewHTTPFetcher(testSourceConfig(srv.URL), nil).Page(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", body)

	strict := testSourceConfig(srv.URL)
	strict.InsecureSkipVerify = false
	_, err = NewHTTPFetcher(strict, nil).Page(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
}

func TestHTTPFetcherRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(testSourceConfig(srv.URL), nil).Page(context.Background())
	require.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "http 502")
}

func TestHTTPFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHTTPFetcher(testSourceConfig(srv.URL), nil).Page(ctx)
	require.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "timed out")
}

func TestStoreSource(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "outage.html"))
	require.NoError(t, err)
	src := NewStoreSource(store)

	_, err = src.Page(context.Background())
	require.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)

	require.NoError(t, store.Save(context.Background(), models.Snapshot{Body: "cached"}))
	body, err := src.Page(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", body)
}

func TestNewSelectsServingMode(t *testing.T) {
	cfg := config.DefaultConfig()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "outage.html"))
	require.NoError(t, err)

	assert.IsType(t, &StoreSource{}, New(cfg, store, nil))
	cfg.Source.Serve = config.ServeLive
	assert.IsType(t, &HTTPFetcher{}, New(cfg, store, nil))
}
