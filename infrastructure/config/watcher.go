package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sitecanvas-backend/application/ports"
)

// DynamicConfig holds the runtime-adjustable settings, reloaded from a YAML
// file without a restart.
type DynamicConfig struct {
	Limits     Limits     `yaml:"limits"`
	Generation Generation `yaml:"generation"`
}

// Limits caps canvas size per project.
type Limits struct {
	MaxNodesPerProject int `yaml:"maxNodesPerProject"`
	MaxEdgesPerNode    int `yaml:"maxEdgesPerNode"`
}

// Generation holds tunable generation settings.
type Generation struct {
	MaxConcurrentRuns int `yaml:"maxConcurrentRuns"`
	MaxPromptBytes    int `yaml:"maxPromptBytes"`
}

// DefaultDynamicConfig returns the settings used when no file is configured.
func DefaultDynamicConfig() *DynamicConfig {
	return &DynamicConfig{
		Limits: Limits{
			MaxNodesPerProject: 500,
			MaxEdgesPerNode:    50,
		},
		Generation: Generation{
			MaxConcurrentRuns: 4,
			MaxPromptBytes:    512 << 10,
		},
	}
}

func (c *DynamicConfig) toLimits() ports.Limits {
	return ports.Limits{
		MaxNodesPerProject: c.Limits.MaxNodesPerProject,
		MaxEdgesPerNode:    c.Limits.MaxEdgesPerNode,
		MaxConcurrentRuns:  c.Generation.MaxConcurrentRuns,
		MaxPromptBytes:     c.Generation.MaxPromptBytes,
	}
}

// StaticLimits serves fixed limits when no dynamic config file is
// configured.
type StaticLimits struct {
	limits ports.Limits
}

// NewStaticLimits captures a snapshot of the given configuration.
func NewStaticLimits(c *DynamicConfig) *StaticLimits {
	return &StaticLimits{limits: c.toLimits()}
}

// Limits returns the fixed limits.
func (s *StaticLimits) Limits() ports.Limits { return s.limits }

func (c *DynamicConfig) validate() error {
	if c.Limits.MaxNodesPerProject <= 0 {
		return fmt.Errorf("maxNodesPerProject must be positive")
	}
	if c.Limits.MaxEdgesPerNode <= 0 {
		return fmt.Errorf("maxEdgesPerNode must be positive")
	}
	if c.Generation.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("maxConcurrentRuns must be positive")
	}
	return nil
}

// Watcher reloads the dynamic configuration when its file changes. An
// invalid or unreadable file keeps the last good configuration.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	current  *DynamicConfig
	onChange []func(*DynamicConfig)
}

// NewWatcher loads the initial configuration and sets up the file watcher.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	current, err := loadDynamicConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory too: editors and config pushes often replace the
	// file via rename instead of writing in place.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		path:    path,
		watcher: fsWatcher,
		logger:  logger,
		stopCh:  make(chan struct{}),
		current: current,
	}, nil
}

// Start begins watching for configuration changes.
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("configuration watcher started", zap.String("path", w.path))
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

// Current returns the active configuration.
func (w *Watcher) Current() *DynamicConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Limits returns the active limits in the shape the application services
// consume, so the watcher can serve as the live limits provider.
func (w *Watcher) Limits() ports.Limits {
	return w.Current().toLimits()
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(handler func(*DynamicConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

func (w *Watcher) watchLoop() {
	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := loadDynamicConfig(w.path)
	if err != nil {
		w.logger.Error("failed to reload configuration, keeping current",
			zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = next
	handlers := make([]func(*DynamicConfig), len(w.onChange))
	copy(handlers, w.onChange)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded",
		zap.Int("max_nodes_per_project", next.Limits.MaxNodesPerProject),
		zap.Int("max_concurrent_runs", next.Generation.MaxConcurrentRuns))
	for _, handler := range handlers {
		go handler(next)
	}
}

func loadDynamicConfig(path string) (*DynamicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultDynamicConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}
