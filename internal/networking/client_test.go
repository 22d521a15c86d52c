package networking

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafabd1/hashes/internal/config"
	"github.com/rafabd1/hashes/internal/utils"
)

func testConfig(target string) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.TargetURL = target
	cfg.ConnectTimeout = 5 * time.Second
	cfg.ReadTimeout = 5 * time.Second
	return cfg
}

func TestBuildPayload(t *testing.T) {
	assert.Equal(t, "Aa=&BB=", BuildPayload([]string{"Aa", "BB"}))
	assert.Equal(t, "", BuildPayload(nil))

	payload := BuildPayload([]string{" a&b", "c=d "})
	values, err := url.ParseQuery(payload)
	require.NoError(t, err)
	require.Contains(t, values, " a&b")
	require.Contains(t, values, "c=d ")
	require.Len(t, values, 2)
}

func TestSendPostsFormPayload(t *testing.T) {
	var (
		mu       sync.Mutex
		received url.Values
		headers  http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		received = r.PostForm
		headers = r.Header.Clone()
		mu.Unlock()
		_, _ = io.WriteString(w, "processed")
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.WaitResponse = true
	cfg.CustomHeaders = []string{"Cookie: session=1"}
	client, err := NewClient(cfg, nil, utils.NewNopLogger())
	require.NoError(t, err)

	keys := []string{"AaAa", "AaBB", "BBAa", "BBBB"}
	resp := client.Send(context.Background(), BuildPayload(keys))
	require.NoError(t, resp.Err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(len("processed")), resp.BytesReceived)
	assert.Equal(t, len("AaAa=&AaBB=&BBAa=&BBBB="), resp.BytesSent)

	mu.Lock()
	defer mu.Unlock()
	for _, k := range keys {
		assert.Contains(t, received, k)
	}
	assert.Equal(t, "application/x-www-form-urlencoded", headers.Get("Content-Type"))
	assert.Equal(t, config.DefaultUserAgent, headers.Get("User-Agent"))
	assert.Equal(t, "session=1", headers.Get("Cookie"))
	assert.Equal(t, resp.RequestID, headers.Get(RequestIDHeader))
	_, err = uuid.Parse(resp.RequestID)
	assert.NoError(t, err)
}

func TestSendWithoutWaitSkipsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, strings.Repeat("x", 1024))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), nil, utils.NewNopLogger())
	require.NoError(t, err)

	resp := client.Send(context.Background(), "a=")
	require.NoError(t, resp.Err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Zero(t, resp.BytesReceived)
}

func TestSendWaitBoundsSlowBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "partial")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.WaitResponse = true
	cfg.ReadTimeout = 200 * time.Millisecond
	client, err := NewClient(cfg, nil, utils.NewNopLogger())
	require.NoError(t, err)

	start := time.Now()
	resp := client.Send(context.Background(), "a=")
	require.Error(t, resp.Err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSendReportsTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	client, err := NewClient(testConfig(target), nil, utils.NewNopLogger())
	require.NoError(t, err)
	resp := client.Send(context.Background(), "a=")
	require.Error(t, resp.Err)
	assert.Zero(t, resp.StatusCode)
}

func TestSendHonoursCancelledContext(t *testing.T) {
	client, err := NewClient(testConfig("http://127.0.0.1:1/"), NewPacer(1, utils.NewNopLogger()), utils.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := client.Send(ctx, "a=")
	require.ErrorIs(t, resp.Err, context.Canceled)
}

func TestProxiesAreUsedRoundRobin(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}
	newProxy := func(name string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits[name]++
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
	}
	p1, p2 := newProxy("p1"), newProxy("p2")
	defer p1.Close()
	defer p2.Close()

	cfg := testConfig("http://target.invalid/form")
	proxies, err := utils.ParseProxyInput(p1.URL+","+p2.URL, utils.NewNopLogger())
	require.NoError(t, err)
	cfg.ParsedProxies = proxies

	client, err := NewClient(cfg, nil, utils.NewNopLogger())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		resp := client.Send(context.Background(), "a=")
		require.NoError(t, resp.Err)
	}
	assert.Equal(t, map[string]int{"p1": 2, "p2": 2}, hits)
}

func TestNewClientRejectsBadHeaders(t *testing.T) {
	cfg := testConfig("http://localhost/")
	cfg.CustomHeaders = []string{"broken"}
	_, err := NewClient(cfg, nil, utils.NewNopLogger())
	require.Error(t, err)
}
