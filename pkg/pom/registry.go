// Package pom maps abstract page contracts to platform implementations
// and hands out per-session page object instances.
//
// A contract is an interface type such as common.LoginPage. For each
// platform exactly one constructor of the form func(*page.Base) Impl is
// registered, where Impl implements the contract. Registration happens
// once at startup; the registry is then sealed and shared read-only by
// every worker.
package pom

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/page"
)

var baseType = reflect.TypeOf((*page.Base)(nil))

// ContractOf returns the reflect.Type of the interface T.
func ContractOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Entry is one (platform, contract) mapping.
type Entry struct {
	Platform core.Platform
	Contract reflect.Type
	Impl     reflect.Type

	ctor reflect.Value
}

// New instantiates the implementation. A panicking constructor or a nil
// result is reported as a construction error.
func (e Entry) New(base *page.Base) (obj interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			obj = nil
			err = core.ErrPageConstruction.WithMessagef("failed to instantiate %s for %s: %v", e.Impl, e.Platform, r)
		}
	}()

	out := e.ctor.Call([]reflect.Value{reflect.ValueOf(base)})[0]
	if isNil(out) {
		return nil, core.ErrPageConstruction.WithMessagef("constructor for %s on %s returned nil", e.Contract, e.Platform)
	}
	return out.Interface(), nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Registry holds the static contract-to-implementation mapping.
type Registry struct {
	mu      sync.RWMutex
	entries map[core.Platform]map[reflect.Type]Entry
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[core.Platform]map[reflect.Type]Entry)}
}

// Register maps contract on platform to ctor.
func (r *Registry) Register(p core.Platform, contract reflect.Type, ctor interface{}) error {
	if !p.Valid() {
		return core.ErrUnsupportedPlatform.WithMessagef("unsupported platform: %q", p)
	}
	if contract == nil || contract.Kind() != reflect.Interface {
		return core.ErrPageConstruction.WithMessagef("contract must be an interface type, got %v", contract)
	}

	if ctor == nil {
		return core.ErrPageConstruction.WithMessagef("constructor for %s is nil", contract)
	}
	cv := reflect.ValueOf(ctor)
	ct := cv.Type()
	if ct.Kind() != reflect.Func {
		return core.ErrPageConstruction.WithMessagef("constructor for %s must be a function, got %T", contract, ctor)
	}
	if ct.NumIn() != 1 || ct.In(0) != baseType || ct.NumOut() != 1 || ct.IsVariadic() {
		return core.ErrPageConstruction.WithMessagef("constructor for %s must have signature func(*page.Base) T, got %s", contract, ct)
	}
	impl := ct.Out(0)
	if !impl.Implements(contract) {
		return core.ErrPageConstruction.WithMessagef("%s does not implement %s", impl, contract)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return core.ErrPageConstruction.WithMessagef("registry is sealed; cannot register %s for %s", contract, p)
	}
	byContract, ok := r.entries[p]
	if !ok {
		byContract = make(map[reflect.Type]Entry)
		r.entries[p] = byContract
	}
	if existing, dup := byContract[contract]; dup {
		return core.ErrDuplicatePage.WithMessagef("%s already registered for %s (%s)", contract, p, existing.Impl)
	}
	byContract[contract] = Entry{Platform: p, Contract: contract, Impl: impl, ctor: cv}
	return nil
}

// Register is the type-safe form of Registry.Register.
func Register[T any](r *Registry, p core.Platform, ctor interface{}) error {
	return r.Register(p, ContractOf[T](), ctor)
}

// MustRegister is Register that panics on error, for static tables.
func MustRegister[T any](r *Registry, p core.Platform, ctor interface{}) {
	if err := Register[T](r, p, ctor); err != nil {
		panic(err)
	}
}

// Seal freezes the registry. Later registrations fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the entry for contract on platform.
func (r *Registry) Lookup(p core.Platform, contract reflect.Type) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[p][contract]
	return e, ok
}

// Contracts returns the contracts registered for platform, sorted by name.
func (r *Registry) Contracts(p core.Platform) []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]reflect.Type, 0, len(r.entries[p]))
	for c := range r.entries[p] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Entries returns every entry for platform, sorted by contract name.
func (r *Registry) Entries(p core.Platform) []Entry {
	contracts := r.Contracts(p)
	out := make([]Entry, 0, len(contracts))
	for _, c := range contracts {
		if e, ok := r.Lookup(p, c); ok {
			out = append(out, e)
		}
	}
	return out
}

// Platforms returns the platforms with at least one entry.
func (r *Registry) Platforms() []core.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Platform, 0, len(r.entries))
	for p, m := range r.entries {
		if len(m) > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CheckParity verifies every contract known on any platform is
// registered on all supported platforms.
func (r *Registry) CheckParity() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[reflect.Type]bool)
	for _, m := range r.entries {
		for c := range m {
			all[c] = true
		}
	}

	var missing []string
	for _, p := range core.Platforms() {
		for c := range all {
			if _, ok := r.entries[p][c]; !ok {
				missing = append(missing, fmt.Sprintf("%s on %s", c, p))
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return core.ErrPageNotRegistered.WithMessagef("missing implementations: %s", strings.Join(missing, ", "))
}
