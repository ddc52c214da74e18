package mail

import (
	"fmt"
	"sync"
)

// DefaultHandler is the configuration key Use falls back to.
const DefaultHandler = "default"

// Constructor builds a handler from its configuration.
type Constructor func(cfg Config) (Mailer, error)

// Manager is a registry of handler constructors, named configurations
// and lazily built shared instances. It is safe for concurrent use.
type Manager struct {
	mu           sync.Mutex
	constructors map[string]Constructor
	configs      map[string]Config
	instances    map[string]Mailer
}

// NewManager returns an empty registry.
func NewManager() *Manager {
	return &Manager{
		constructors: map[string]Constructor{},
		configs:      map[string]Config{},
		instances:    map[string]Mailer{},
	}
}

// Register makes a constructor available under a handler tag.
// Registering the same tag again replaces the previous constructor.
func (mgr *Manager) Register(handler string, ctor Constructor) error {
	if handler == "" || ctor == nil {
		return fmt.Errorf("%w: empty handler registration", ErrInvalidConfig)
	}

	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.constructors[handler] = ctor
	return nil
}

// SetConfig stores a named configuration. The key must be unused.
func (mgr *Manager) SetConfig(key string, cfg Config) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if _, ok := mgr.configs[key]; ok {
		return fmt.Errorf("%w: %s", ErrConfigExists, key)
	}
	mgr.configs[key] = cfg
	return nil
}

// Configure stores a set of named configurations at once, typically the
// result of LoadConfigFile. Duplicate keys fail the whole call without
// partial effect.
func (mgr *Manager) Configure(configs map[string]Config) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	for key := range configs {
		if _, ok := mgr.configs[key]; ok {
			return fmt.Errorf("%w: %s", ErrConfigExists, key)
		}
	}
	for key, cfg := range configs {
		mgr.configs[key] = cfg
	}
	return nil
}

// GetConfig returns the configuration stored under key.
func (mgr *Manager) GetConfig(key string) (Config, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	cfg, ok := mgr.configs[key]
	return cfg, ok
}

// HasConfig reports whether a configuration is stored under key.
func (mgr *Manager) HasConfig(key string) bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	_, ok := mgr.configs[key]
	return ok
}

// IsLoaded reports whether a shared instance has been built for key.
func (mgr *Manager) IsLoaded(key string) bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	_, ok := mgr.instances[key]
	return ok
}

// Use returns the shared handler for key, building it on first use.
// An empty key resolves to DefaultHandler.
func (mgr *Manager) Use(key string) (Mailer, error) {
	if key == "" {
		key = DefaultHandler
	}

	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if m, ok := mgr.instances[key]; ok {
		return m, nil
	}

	cfg, ok := mgr.configs[key]
	if !ok {
		return nil, fmt.Errorf("%w: no config for %s", ErrInvalidConfig, key)
	}

	m, err := mgr.build(cfg)
	if err != nil {
		return nil, err
	}
	mgr.instances[key] = m
	return m, nil
}

// Build constructs a fresh, unshared handler from cfg.
func (mgr *Manager) Build(cfg Config) (Mailer, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.build(cfg)
}

func (mgr *Manager) build(cfg Config) (Mailer, error) {
	ctor, ok := mgr.constructors[cfg.Handler]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotRegistered, cfg.Handler)
	}
	return ctor(cfg)
}

// Unload drops the shared instance and configuration stored under key.
func (mgr *Manager) Unload(key string) bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	_, ok := mgr.configs[key]
	delete(mgr.configs, key)
	delete(mgr.instances, key)
	return ok
}

// Clear drops every configuration and shared instance, keeping the
// registered constructors.
func (mgr *Manager) Clear() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	mgr.configs = map[string]Config{}
	mgr.instances = map[string]Mailer{}
}
