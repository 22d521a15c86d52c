package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/collision"
	"github.com/rafabd1/hashes/internal/config"
	"github.com/rafabd1/hashes/internal/utils"
)

type formRecorder struct {
	mu    sync.Mutex
	forms [][]string
}

func (f *formRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var names []string
		for k := range r.PostForm {
			names = append(names, k)
		}
		f.mu.Lock()
		f.forms = append(f.forms, names)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func injectorConfig(target string) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.TargetURL = target
	cfg.ConnectTimeout = 5 * time.Second
	cfg.ReadTimeout = 5 * time.Second
	return cfg
}

func TestRunSendsCollidingKeysFromEveryClient(t *testing.T) {
	rec := &formRecorder{}
	server := httptest.NewServer(rec.handler(t))
	defer server.Close()

	cfg := injectorConfig(server.URL)
	cfg.Algorithm = "java"
	cfg.GenerateNewKeys = true
	cfg.NumberOfKeys = 100
	cfg.NumberOfClients = 3
	cfg.RequestsPerClient = 2
	cfg.WaitResponse = true
	require.NoError(t, cfg.Validate())

	summary, err := NewInjector(cfg, utils.NewNopLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Requests)
	assert.Equal(t, map[int]int{http.StatusOK: 6}, summary.StatusCounts)
	assert.Zero(t, summary.Failures)
	assert.Equal(t, "DJBX31A", summary.Algorithm)
	assert.Equal(t, 100, summary.Keys)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.forms, 6)
	for _, names := range rec.forms {
		require.Len(t, names, 100)
		require.NoError(t, collision.Verify(algorithm.DJBX31A(), names))
	}
}

func TestRunCountsFailedRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := injectorConfig(server.URL)
	cfg.NumberOfKeys = 10
	cfg.RequestsPerClient = 3

	summary, err := NewInjector(cfg, utils.NewNopLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]int{http.StatusServiceUnavailable: 3}, summary.StatusCounts)
}

func TestRunSavesAndReloadsKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")

	cfg := config.GetDefaultConfig()
	cfg.Algorithm = "v8"
	cfg.NumberOfKeys = 64
	cfg.SaveKeysFile = path
	require.NoError(t, cfg.Validate())

	summary, err := NewInjector(cfg, utils.NewNopLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Requests)
	assert.Equal(t, 64, summary.Keys)

	cfg = config.GetDefaultConfig()
	cfg.Algorithm = "node"
	cfg.KeysFile = path
	cfg.NumberOfKeys = 1000
	alg, keys, err := NewInjector(cfg, utils.NewNopLogger()).Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "V8", alg.Name())
	assert.Len(t, keys, 64)
}

func TestKeysFileMustCollide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte("Aa\nBB\nCc\n"), 0o600))

	cfg := config.GetDefaultConfig()
	cfg.Algorithm = "java"
	cfg.KeysFile = path
	_, _, err := NewInjector(cfg, utils.NewNopLogger()).Keys(context.Background())
	require.ErrorIs(t, err, collision.ErrNotColliding)
}

func TestKeysFromMITMSearch(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Algorithm = "v8"
	cfg.GenerateNewKeys = true
	cfg.Seed = "injector"
	cfg.MITMWorkers = 2
	cfg.NumberOfKeys = 3

	alg, keys, err := NewInjector(cfg, utils.NewNopLogger()).Keys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 3)
	for _, k := range keys {
		assert.Equal(t, alg.Hash("injector"), alg.Hash(k))
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := injectorConfig("http://127.0.0.1:1/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInjector(cfg, utils.NewNopLogger()).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunSavesJSONKeysThatReloadAsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")

	cfg := config.GetDefaultConfig()
	cfg.Algorithm = "asp"
	cfg.NumberOfKeys = 32
	cfg.SaveKeysFile = path
	cfg.SaveKeysFormat = "json"
	require.NoError(t, cfg.Validate())
	_, err := NewInjector(cfg, utils.NewNopLogger()).Run(context.Background())
	require.NoError(t, err)

	cfg = config.GetDefaultConfig()
	cfg.Algorithm = "asp"
	cfg.KeysFile = path
	_, keys, err := NewInjector(cfg, utils.NewNopLogger()).Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 32)
}
