package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "sitecanvas", cfg.DynamoDBTable)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("TABLE_NAME", "sitecanvas-test")
	t.Setenv("AI_TIMEOUT", "30s")
	t.Setenv("AI_USE_MOCK", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, "sitecanvas-test", cfg.DynamoDBTable)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.AI.UseMock)
}

func TestLoadConfig_ProductionValidation(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_API_KEY")

	t.Setenv("AI_API_KEY", "sk-test")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_MemoryStoreRejectedInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("USE_MEMORY_STORE", "true")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USE_MEMORY_STORE")
}

func writeDynamicConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "dynamic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestWatcher_LoadsInitialConfig(t *testing.T) {
	path := writeDynamicConfig(t, t.TempDir(), `
limits:
  maxNodesPerProject: 100
  maxEdgesPerNode: 10
generation:
  maxConcurrentRuns: 2
`)

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	current := w.Current()
	assert.Equal(t, 100, current.Limits.MaxNodesPerProject)
	assert.Equal(t, 10, current.Limits.MaxEdgesPerNode)
	assert.Equal(t, 2, current.Generation.MaxConcurrentRuns)
	// unset keys fall back to defaults
	assert.Equal(t, 512<<10, current.Generation.MaxPromptBytes)
}

func TestWatcher_RejectsInvalidInitialConfig(t *testing.T) {
	path := writeDynamicConfig(t, t.TempDir(), `
limits:
  maxNodesPerProject: -1
`)

	_, err := NewWatcher(path, zap.NewNop())
	require.Error(t, err)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeDynamicConfig(t, dir, `
limits:
  maxNodesPerProject: 100
`)

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *DynamicConfig, 1)
	w.OnChange(func(cfg *DynamicConfig) {
		select {
		case changed <- cfg:
		default:
		}
	})
	w.Start()

	writeDynamicConfig(t, dir, `
limits:
  maxNodesPerProject: 250
`)

	select {
	case cfg := <-changed:
		assert.Equal(t, 250, cfg.Limits.MaxNodesPerProject)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	assert.Equal(t, 250, w.Current().Limits.MaxNodesPerProject)
}

func TestWatcher_ServesLimitsAcrossReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeDynamicConfig(t, dir, `
limits:
  maxNodesPerProject: 100
  maxEdgesPerNode: 10
generation:
  maxConcurrentRuns: 2
  maxPromptBytes: 1024
`)

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	// registered handlers must not block or break an explicit reload
	w.OnChange(func(*DynamicConfig) {})
	w.OnChange(func(*DynamicConfig) {})

	limits := w.Limits()
	assert.Equal(t, 100, limits.MaxNodesPerProject)
	assert.Equal(t, 10, limits.MaxEdgesPerNode)
	assert.Equal(t, 2, limits.MaxConcurrentRuns)
	assert.Equal(t, 1024, limits.MaxPromptBytes)

	writeDynamicConfig(t, dir, `
limits:
  maxNodesPerProject: 250
`)
	w.reload()

	// the raised cap is visible through the provider interface immediately
	assert.Equal(t, 250, w.Limits().MaxNodesPerProject)
}

func TestWatcher_KeepsLastGoodConfigOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := writeDynamicConfig(t, dir, `
limits:
  maxNodesPerProject: 100
`)

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	writeDynamicConfig(t, dir, "limits: [not a mapping")

	// the reload is async; give the watcher time to see the change
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 100, w.Current().Limits.MaxNodesPerProject)
}
