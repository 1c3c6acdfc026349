package pom

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/logger"
	"github.com/devicelab-dev/pom-runner/pkg/page"
)

// Options configures the page.Base handed to constructors.
type Options struct {
	WaitTimeout  time.Duration
	PollInterval time.Duration
}

// Manager caches page objects for a single session. It is owned by one
// worker at a time; the mutex only guards against tests that share it
// with helper goroutines.
type Manager struct {
	driver   core.Driver
	platform core.Platform
	registry *Registry
	opts     Options

	mu    sync.Mutex
	cache map[reflect.Type]interface{}
}

// NewManager creates a manager resolving pages for platform.
func NewManager(driver core.Driver, platform core.Platform, registry *Registry, opts Options) *Manager {
	return &Manager{
		driver:   driver,
		platform: platform,
		registry: registry,
		opts:     opts,
		cache:    make(map[reflect.Type]interface{}),
	}
}

// Platform returns the platform pages are resolved for.
func (m *Manager) Platform() core.Platform { return m.platform }

// Driver returns the session driver.
func (m *Manager) Driver() core.Driver { return m.driver }

// Get returns the page object for contract, constructing it on first use.
func (m *Manager) Get(contract reflect.Type) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if obj, ok := m.cache[contract]; ok {
		return obj, nil
	}

	entry, ok := m.registry.Lookup(m.platform, contract)
	if !ok {
		return nil, core.ErrPageNotRegistered.WithMessagef("no concrete implementation registered for %s on %s", contract, m.platform)
	}

	obj, err := entry.New(page.NewBase(m.driver, m.opts.WaitTimeout, m.opts.PollInterval))
	if err != nil {
		return nil, err
	}
	logger.Debug("page %s -> %s (%s)", contract, entry.Impl, m.platform)
	m.cache[contract] = obj
	return obj, nil
}

// Get returns the page object implementing T for the manager's platform.
func Get[T any](m *Manager) (T, error) {
	var zero T
	obj, err := m.Get(ContractOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, core.ErrPageConstruction.WithMessagef("page %T does not implement %s", obj, ContractOf[T]())
	}
	return typed, nil
}

// MustGet is Get that panics on error.
func MustGet[T any](m *Manager) T {
	obj, err := Get[T](m)
	if err != nil {
		panic(fmt.Errorf("pom: %w", err))
	}
	return obj
}

// Reset drops every cached page object.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.cache = make(map[reflect.Type]interface{})
	m.mu.Unlock()
}

// Cached returns how many page objects are cached.
func (m *Manager) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}
