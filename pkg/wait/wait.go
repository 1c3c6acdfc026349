// Package wait provides explicit waits that poll a driver until a UI
// condition holds or the timeout elapses.
package wait

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 200 * time.Millisecond
)

// Condition reports whether the awaited state holds. A non-nil error with
// false is remembered and returned with the timeout.
type Condition func() (bool, error)

// Helper polls a driver with a fixed timeout and interval.
type Helper struct {
	driver   core.Driver
	timeout  time.Duration
	interval time.Duration
}

// New creates a Helper. Zero durations fall back to the defaults.
func New(driver core.Driver, timeout, interval time.Duration) *Helper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Helper{driver: driver, timeout: timeout, interval: interval}
}

// Timeout returns the configured timeout.
func (h *Helper) Timeout() time.Duration { return h.timeout }

// Until polls cond until it returns true. Connection failures end the wait
// immediately since the session will not recover.
func (h *Helper) Until(desc string, cond Condition) error {
	deadline := time.Now().Add(h.timeout)

	var lastErr error
	for {
		ok, err := cond()
		if ok {
			return nil
		}
		if err != nil {
			if core.CategoryOf(err) == core.ErrCategoryConnection {
				return err
			}
			lastErr = err
		}

		if time.Now().After(deadline) {
			timeoutErr := core.ErrWaitTimeout.WithMessagef("timed out after %s waiting for %s", h.timeout, desc)
			if lastErr != nil {
				return timeoutErr.WithCause(lastErr)
			}
			return timeoutErr
		}
		time.Sleep(h.interval)
	}
}

// ForVisibility waits until the element is present and displayed and
// returns its id.
func (h *Helper) ForVisibility(by core.By) (string, error) {
	var id string
	err := h.Until(fmt.Sprintf("visibility of %s", by), func() (bool, error) {
		elemID, err := h.driver.FindElement(by)
		if err != nil {
			return false, err
		}
		displayed, err := h.driver.IsElementDisplayed(elemID)
		if err != nil {
			return false, err
		}
		if !displayed {
			return false, core.ErrElementNotVisible.WithDetails(map[string]interface{}{"locator": by.String()})
		}
		id = elemID
		return true, nil
	})
	return id, err
}

// ForClickability waits until the element is displayed and enabled and
// returns its id.
func (h *Helper) ForClickability(by core.By) (string, error) {
	var id string
	err := h.Until(fmt.Sprintf("clickability of %s", by), func() (bool, error) {
		elemID, err := h.driver.FindElement(by)
		if err != nil {
			return false, err
		}
		displayed, err := h.driver.IsElementDisplayed(elemID)
		if err != nil {
			return false, err
		}
		enabled, err := h.driver.IsElementEnabled(elemID)
		if err != nil {
			return false, err
		}
		if !displayed || !enabled {
			return false, core.ErrElementNotClickable.WithDetails(map[string]interface{}{"locator": by.String()})
		}
		id = elemID
		return true, nil
	})
	return id, err
}

// ForPageText waits until the page source contains text.
func (h *Helper) ForPageText(text string) (bool, error) {
	err := h.Until(fmt.Sprintf("page text %q", text), func() (bool, error) {
		src, err := h.driver.Source()
		if err != nil {
			return false, err
		}
		return strings.Contains(src, text), nil
	})
	return err == nil, err
}
