// Package executor runs tests against per-worker driver sessions and
// collects their results.
package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/pom"
)

// Test is a single UI test.
type Test struct {
	Name        string
	Description string
	Tags        []string

	// Platforms restricts the test; empty means every platform.
	Platforms []core.Platform

	Run func(t *T)
}

// RunsOn reports whether the test supports platform p.
func (tc Test) RunsOn(p core.Platform) bool {
	if len(tc.Platforms) == 0 {
		return true
	}
	for _, tp := range tc.Platforms {
		if tp == p {
			return true
		}
	}
	return false
}

// HasTag reports whether the test carries tag (case-insensitive).
func (tc Test) HasTag(tag string) bool {
	for _, t := range tc.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// T is the scope of one running test. It owns the session driver and the
// page manager for the test's duration and implements the TestingT
// interfaces of testify's assert and require packages.
type T struct {
	ctx      context.Context
	name     string
	platform core.Platform
	driver   core.Driver
	pages    *pom.Manager
	log      *logrus.Entry

	mu         sync.Mutex
	failed     bool
	errored    bool
	skipped    bool
	skipReason string
	category   core.ErrorCategory
	errors     []string
	logs       []string
	cleanups   []func()
}

func newT(ctx context.Context, name string, driver core.Driver, pages *pom.Manager, log *logrus.Entry) *T {
	return &T{
		ctx:      ctx,
		name:     name,
		platform: driver.Platform(),
		driver:   driver,
		pages:    pages,
		log:      log,
	}
}

// Name returns the test name.
func (t *T) Name() string { return t.name }

// Context is cancelled when the run is interrupted.
func (t *T) Context() context.Context { return t.ctx }

// Platform returns the session platform.
func (t *T) Platform() core.Platform { return t.platform }

// Driver returns the session driver.
func (t *T) Driver() core.Driver { return t.driver }

// Pages returns the session's page manager.
func (t *T) Pages() *pom.Manager { return t.pages }

// Errorf marks the test failed and records the message. The test keeps
// running.
func (t *T) Errorf(format string, args ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	t.mu.Lock()
	t.failed = true
	if t.category == core.ErrCategoryNone {
		t.category = core.ErrCategoryAssertion
	}
	t.errors = append(t.errors, msg)
	t.mu.Unlock()
	t.log.Error(msg)
}

// FailNow stops the test. It must be called from the test goroutine.
func (t *T) FailNow() {
	t.mu.Lock()
	t.failed = true
	t.mu.Unlock()
	panic(t)
}

// Fatalf is Errorf followed by FailNow.
func (t *T) Fatalf(format string, args ...interface{}) {
	t.Errorf(format, args...)
	t.FailNow()
}

// Helper is a no-op; it lets T satisfy testify's tHelper.
func (t *T) Helper() {}

// Logf records a line in the test's output.
func (t *T) Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.mu.Lock()
	t.logs = append(t.logs, msg)
	t.mu.Unlock()
	t.log.Info(msg)
}

// Skip stops the test and marks it skipped.
func (t *T) Skip(reason string) {
	t.mu.Lock()
	t.skipped = true
	t.skipReason = reason
	t.mu.Unlock()
	panic(t)
}

// Cleanup registers fn to run after the test, before the session closes.
// Cleanups run in reverse order.
func (t *T) Cleanup(fn func()) {
	t.mu.Lock()
	t.cleanups = append(t.cleanups, fn)
	t.mu.Unlock()
}

// Failed reports whether the test has failed so far.
func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed || t.errored
}

// Check stops the test if err is non-nil. Assertion and timeout errors
// fail the test; anything else (lost session, missing page) errors it.
func (t *T) Check(err error) {
	if err == nil {
		return
	}
	t.fail(err)
	t.FailNow()
}

func (t *T) fail(err error) {
	category := core.CategoryOf(err)
	t.mu.Lock()
	switch category {
	case core.ErrCategoryAssertion, core.ErrCategoryTimeout:
		t.failed = true
	default:
		t.errored = true
	}
	if t.category == core.ErrCategoryNone {
		t.category = category
	}
	t.errors = append(t.errors, err.Error())
	t.mu.Unlock()
	t.log.Error(err.Error())
}

// Page resolves the page object implementing P for the test's platform,
// stopping the test if none can be built.
func Page[P any](t *T) P {
	p, err := pom.Get[P](t.pages)
	t.Check(err)
	return p
}

// run executes fn, converting FailNow/Skip and unexpected panics into
// test state, then runs cleanups.
func (t *T) run(fn func(*T)) {
	defer t.runCleanups()
	defer func() {
		r := recover()
		if r == nil || r == t {
			return
		}
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}
		t.mu.Lock()
		t.errored = true
		t.errors = append(t.errors, fmt.Sprintf("unexpected panic in test: %v\n%s", err, debug.Stack()))
		if t.category == core.ErrCategoryNone {
			t.category = core.CategoryOf(err)
		}
		t.mu.Unlock()
		t.log.Errorf("panic: %v", err)
	}()
	fn(t)
}

func (t *T) runCleanups() {
	t.mu.Lock()
	cleanups := t.cleanups
	t.cleanups = nil
	t.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil && r != t {
					t.log.Warnf("cleanup panic: %v", r)
				}
			}()
			cleanups[i]()
		}()
	}
}

// status derives the final status. Skip wins only if nothing failed
// before it.
func (t *T) status() core.TestStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.errored:
		return core.StatusErrored
	case t.failed:
		return core.StatusFailed
	case t.skipped:
		return core.StatusSkipped
	default:
		return core.StatusPassed
	}
}
