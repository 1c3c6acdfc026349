// Package page provides the base every page object embeds: the session
// driver, an explicit-wait helper and common element actions.
package page

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/logger"
	"github.com/devicelab-dev/pom-runner/pkg/wait"
)

// Base holds what page objects share for one session.
type Base struct {
	Driver core.Driver
	Wait   *wait.Helper
	Log    *logrus.Entry
}

// NewBase creates a Base bound to driver.
func NewBase(driver core.Driver, timeout, poll time.Duration) *Base {
	return &Base{
		Driver: driver,
		Wait:   wait.New(driver, timeout, poll),
		Log:    logger.WithFields(logrus.Fields{"platform": driver.Platform().String()}),
	}
}

// Platform returns the session platform.
func (b *Base) Platform() core.Platform {
	return b.Driver.Platform()
}

// Click waits for the element to become clickable, then clicks it.
func (b *Base) Click(by core.By) error {
	b.Log.Debugf("click %s", by)
	id, err := b.Wait.ForClickability(by)
	if err != nil {
		return actionError(core.ErrElementNotClickable, by, err)
	}
	if err := b.Driver.ClickElement(id); err != nil {
		return actionError(core.ErrElementNotClickable, by, err)
	}
	return nil
}

// Type waits for the element to be visible, clears it and sends text.
func (b *Base) Type(by core.By, text string) error {
	b.Log.Debugf("type %q into %s", text, by)
	id, err := b.Wait.ForVisibility(by)
	if err != nil {
		return actionError(core.ErrElementNotVisible, by, err)
	}
	if err := b.Driver.ClearElement(id); err != nil {
		return actionError(core.ErrElementNotVisible, by, err)
	}
	if text == "" {
		return nil
	}
	if err := b.Driver.SendKeysToElement(id, text); err != nil {
		return actionError(core.ErrElementNotVisible, by, err)
	}
	return nil
}

// GetText waits for the element to be visible and returns its text.
func (b *Base) GetText(by core.By) (string, error) {
	id, err := b.Wait.ForVisibility(by)
	if err != nil {
		return "", err
	}
	return b.Driver.GetElementText(id)
}

// IsDisplayed reports whether the element becomes visible within the
// wait timeout. Any failure counts as not displayed.
func (b *Base) IsDisplayed(by core.By) bool {
	_, err := b.Wait.ForVisibility(by)
	if err != nil {
		b.Log.Debugf("%s not displayed: %v", by, err)
		return false
	}
	return true
}

// Back presses the system back button.
func (b *Base) Back() error {
	return b.Driver.Back()
}

// HideKeyboard dismisses the soft keyboard if shown.
func (b *Base) HideKeyboard() error {
	return b.Driver.HideKeyboard()
}

// actionError wraps cause in kind unless the session itself is gone, in
// which case the connection error is more useful as is.
func actionError(kind *core.ExecutionError, by core.By, cause error) error {
	if core.CategoryOf(cause) == core.ErrCategoryConnection {
		return cause
	}
	var execErr *core.ExecutionError
	if errors.As(cause, &execErr) && execErr.Code == kind.Code {
		return cause
	}
	return kind.WithMessagef("%s: %s", kind.Message, by).WithCause(cause)
}
