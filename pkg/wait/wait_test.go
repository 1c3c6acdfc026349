package wait

import (
	"errors"
	"testing"
	"time"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/driver/mock"
)

const (
	shortTimeout = 50 * time.Millisecond
	shortPoll    = 5 * time.Millisecond
)

func TestNewDefaults(t *testing.T) {
	h := New(mock.New(mock.Config{}), 0, 0)
	if h.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", h.Timeout(), DefaultTimeout)
	}
	if h.interval != DefaultPollInterval {
		t.Errorf("interval = %v, want %v", h.interval, DefaultPollInterval)
	}
}

func TestUntilSucceedsAfterRetries(t *testing.T) {
	h := New(mock.New(mock.Config{}), time.Second, shortPoll)
	calls := 0
	err := h.Until("third call", func() (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("Until() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestUntilTimeoutCarriesLastError(t *testing.T) {
	h := New(mock.New(mock.Config{}), shortTimeout, shortPoll)
	cause := errors.New("still loading")
	err := h.Until("never", func() (bool, error) { return false, cause })

	if !errors.Is(err, core.ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected last error in chain, got %v", err)
	}
	if core.CategoryOf(err) != core.ErrCategoryTimeout {
		t.Errorf("CategoryOf() = %v, want timeout", core.CategoryOf(err))
	}
}

func TestUntilStopsOnConnectionError(t *testing.T) {
	h := New(mock.New(mock.Config{}), time.Minute, shortPoll)
	start := time.Now()
	err := h.Until("session", func() (bool, error) { return false, core.ErrNoSession })

	if !errors.Is(err, core.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Until should return immediately on connection errors")
	}
}

func TestForVisibility(t *testing.T) {
	d := mock.New(mock.Config{})
	by := core.ByAccessibilityID("Login-screen")
	e := d.Add(by, &mock.Element{Hidden: true})

	go func() {
		time.Sleep(20 * time.Millisecond)
		d.Show(by)
	}()

	id, err := New(d, time.Second, shortPoll).ForVisibility(by)
	if err != nil {
		t.Fatalf("ForVisibility() error = %v", err)
	}
	if id != e.ID() {
		t.Errorf("id = %q, want %q", id, e.ID())
	}
}

func TestForVisibilityTimeout(t *testing.T) {
	d := mock.New(mock.Config{})
	by := core.ByID("hidden")
	d.Add(by, &mock.Element{Hidden: true})

	_, err := New(d, shortTimeout, shortPoll).ForVisibility(by)
	if !errors.Is(err, core.ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
	if !errors.Is(err, core.ErrElementNotVisible) {
		t.Errorf("expected ErrElementNotVisible cause, got %v", err)
	}
}

func TestForVisibilityMissing(t *testing.T) {
	d := mock.New(mock.Config{})
	_, err := New(d, shortTimeout, shortPoll).ForVisibility(core.ByID("missing"))
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound cause, got %v", err)
	}
}

func TestForClickability(t *testing.T) {
	d := mock.New(mock.Config{})
	by := core.ByID("button")
	d.Add(by, &mock.Element{Disabled: true})

	_, err := New(d, shortTimeout, shortPoll).ForClickability(by)
	if !errors.Is(err, core.ErrElementNotClickable) {
		t.Fatalf("expected ErrElementNotClickable cause, got %v", err)
	}

	e, _ := d.Element(by)
	e.Disabled = false
	id, err := New(d, shortTimeout, shortPoll).ForClickability(by)
	if err != nil {
		t.Fatalf("ForClickability() error = %v", err)
	}
	if id != e.ID() {
		t.Errorf("id = %q, want %q", id, e.ID())
	}
}

func TestForPageText(t *testing.T) {
	d := mock.New(mock.Config{})
	d.Add(core.ByID("msg"), &mock.Element{Text: "Please enter a valid email address"})

	ok, err := New(d, shortTimeout, shortPoll).ForPageText("valid email")
	if err != nil || !ok {
		t.Fatalf("ForPageText() = %v, %v", ok, err)
	}

	ok, err = New(d, shortTimeout, shortPoll).ForPageText("not there")
	if ok || !errors.Is(err, core.ErrWaitTimeout) {
		t.Errorf("ForPageText() = %v, %v; want false, ErrWaitTimeout", ok, err)
	}
}
