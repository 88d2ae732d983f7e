package mockhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiebushman1/jwt-pizza/internal/fixture"
)

func newTestServer(t *testing.T, opts ...ServerOption) (*fixture.Backend, *resty.Client) {
	t.Helper()
	backend := fixture.New()
	srv := httptest.NewServer(NewServer(backend, opts...).Handler())
	t.Cleanup(srv.Close)

	client := resty.New().
		SetBaseURL(srv.URL).
		SetHeader("Content-Type", "application/json")
	return backend, client
}

func TestServerLoginFlow(t *testing.T) {
	backend, client := newTestServer(t)

	resp, err := client.R().
		SetBody(map[string]string{"email": "d@jwt.com", "password": "a"}).
		Put("/api/auth")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `"token":"abcdef"`)
	require.NotNil(t, backend.Session())

	resp, err = client.R().Get("/api/user/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "d@jwt.com")

	resp, err = client.R().Delete("/api/auth")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Nil(t, backend.Session())

	resp, err = client.R().Get("/api/user/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

func TestServerRejectsBadCredentials(t *testing.T) {
	_, client := newTestServer(t)

	resp, err := client.R().
		SetBody(map[string]string{"email": "d@jwt.com", "password": "nope"}).
		Put("/api/auth")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "Unauthorized")
}

func TestServerCORS(t *testing.T) {
	_, client := newTestServer(t)

	t.Run("preflight gets 204 with the allow headers", func(t *testing.T) {
		resp, err := client.R().Options("/api/order/menu")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode())
		assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})

	t.Run("normal responses carry the origin header", func(t *testing.T) {
		resp, err := client.R().Get("/api/order/menu")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServerRequestID(t *testing.T) {
	_, client := newTestServer(t)

	resp, err := client.R().Get("/api/order/menu")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))

	resp, err = client.R().SetHeader("X-Request-ID", "pizza-42").Get("/api/order/menu")
	require.NoError(t, err)
	assert.Equal(t, "pizza-42", resp.Header().Get("X-Request-ID"))
}

func TestServerUnmatchedRoutes(t *testing.T) {
	_, client := newTestServer(t)

	for _, path := range []string{"/api/franchise/3", "/api/docs", "/some/page"} {
		resp, err := client.R().Get(path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode(), path)
		assert.JSONEq(t, `{"error":"not found"}`, string(resp.Body()), path)
	}
}

func TestServerHealthAndMetrics(t *testing.T) {
	_, client := newTestServer(t)

	resp, err := client.R().Get("/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "ok")

	// Generate a little traffic so the counters exist.
	_, err = client.R().Get("/api/order/menu")
	require.NoError(t, err)
	_, err = client.R().Get("/nope")
	require.NoError(t, err)

	resp, err = client.R().Get("/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	body := string(resp.Body())
	assert.Contains(t, body, "pizza_mock_requests_total")
	assert.Contains(t, body, `route="/api/order/menu"`)
	assert.Contains(t, body, `route="unmatched"`)
}

func TestServerOrderLogRecording(t *testing.T) {
	log, err := OpenOrderLog(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	_, client := newTestServer(t, WithOrderLog(log))

	for i := 0; i < 2; i++ {
		resp, err := client.R().
			SetBody(map[string]interface{}{
				"items":   []map[string]interface{}{{"menuId": 1, "description": "Veggie", "price": 0.0038}},
				"storeId": "4",
			}).
			Post("/api/order")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
	}

	ctx := context.Background()
	n, err := log.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	records, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Greater(t, records[0].ID, records[1].ID, "newest first")
	assert.Contains(t, records[0].Body, "Veggie")
	assert.Equal(t, "/api/order", records[0].Route)
}

func TestWatchFixturesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pizza.yaml")
	require.NoError(t, os.WriteFile(path, []byte("menu:\n  - id: 1\n    title: Veggie\n    price: 0.0038\n"), 0o644))

	backend := fixture.New()
	require.NoError(t, backend.LoadFile(path))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, WatchFixtures(ctx, backend, path))

	require.NoError(t, os.WriteFile(path, []byte("menu:\n  - id: 9\n    title: Margherita\n    price: 0.005\n"), 0o644))

	assert.Eventually(t, func() bool {
		resp, err := backend.Handle(fixture.Request{Method: http.MethodGet, URL: "/api/order/menu"})
		return err == nil && strings.Contains(string(resp.Body), "Margherita")
	}, 5*time.Second, 50*time.Millisecond, "watcher should pick up the rewritten fixture file")
}

func TestWatchFixturesBurstWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pizza.yaml")
	require.NoError(t, os.WriteFile(path, []byte("menu:\n  - id: 1\n    title: Veggie\n    price: 0.0038\n"), 0o644))

	backend := fixture.New()
	require.NoError(t, backend.LoadFile(path))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, WatchFixtures(ctx, backend, path))

	// A save can hit the disk as a truncated or half-written file before the
	// final content lands. The backend must end up serving the final state.
	require.NoError(t, os.WriteFile(path, []byte("menu: [broken"), 0o644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("menu:\n  - id: 9\n    title: Margherita\n    price: 0.005\n"), 0o644))

	assert.Eventually(t, func() bool {
		resp, err := backend.Handle(fixture.Request{Method: http.MethodGet, URL: "/api/order/menu"})
		return err == nil && strings.Contains(string(resp.Body), "Margherita")
	}, 5*time.Second, 50*time.Millisecond, "last write of a save burst should be the one served")
}
