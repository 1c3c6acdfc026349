package appium

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devicelab-dev/pom-runner/pkg/config"
	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/logger"
)

// Driver implements core.Driver on an Appium session.
type Driver struct {
	client    *Client
	platform  core.Platform
	appID     string
	startedAt time.Time
	log       *logrus.Entry
}

var _ core.Driver = (*Driver)(nil)

// NewSession opens a session for the platform on cfg.AppiumURL and applies
// the global implicit wait. Every failure is reported as core.ErrSessionFailed
// so the caller can abort the test without inspecting the cause.
func NewSession(p core.Platform, cfg *config.Config) (*Driver, error) {
	if !p.Valid() {
		return nil, core.ErrSessionFailed.WithCause(
			core.ErrUnsupportedPlatform.WithMessagef("unsupported platform: %q", p))
	}

	log := logger.WithFields(logrus.Fields{"platform": p})
	log.Infof("Initializing driver for platform: %s", p.DisplayName())

	caps, err := CapabilitiesFor(p, cfg)
	if err != nil {
		return nil, core.ErrSessionFailed.WithCause(err)
	}
	log.Debugf("%s capabilities set. Launching driver.", p.DisplayName())

	d, err := NewDriver(cfg.AppiumURL, p, caps)
	if err != nil {
		log.Errorf("Failed to initialize driver for %s: %v", p, err)
		if errors.Is(err, core.ErrSessionFailed) {
			return nil, err
		}
		return nil, core.ErrSessionFailed.WithCause(err)
	}

	if cfg.ImplicitWait > 0 {
		if err := d.client.SetImplicitWait(cfg.ImplicitWait); err != nil {
			_ = d.Quit()
			return nil, core.ErrSessionFailed.WithCause(fmt.Errorf("set implicit wait: %w", err))
		}
	}

	log.WithField("session", d.SessionID()).Info("Driver initialized successfully")
	return d, nil
}

// NewDriver connects with raw capabilities, without config defaults.
func NewDriver(serverURL string, p core.Platform, capabilities map[string]interface{}) (*Driver, error) {
	client := NewClient(serverURL)

	if err := client.Connect(capabilities); err != nil {
		return nil, classify(err, core.By{})
	}

	d := &Driver{
		client:    client,
		platform:  p,
		startedAt: time.Now(),
		log:       logger.WithFields(logrus.Fields{"platform": p, "session": client.SessionID()}),
	}

	// Extract app ID from capabilities
	if appID, ok := capabilities["appium:appPackage"].(string); ok {
		d.appID = appID
	} else if appID, ok := capabilities["appium:bundleId"].(string); ok {
		d.appID = appID
	}

	return d, nil
}

// Quit implements core.Driver.
func (d *Driver) Quit() error {
	if d.client.SessionID() == "" {
		return nil
	}
	d.log.Debug("Quitting session")
	return d.client.Disconnect()
}

// Platform implements core.Driver.
func (d *Driver) Platform() core.Platform {
	return d.platform
}

// SessionID implements core.Driver.
func (d *Driver) SessionID() string {
	return d.client.SessionID()
}

// SessionInfo implements core.SessionDescriber.
func (d *Driver) SessionInfo() core.SessionInfo {
	w, h := d.client.ScreenSize()
	info := core.SessionInfo{
		SessionID:    d.client.SessionID(),
		Platform:     d.platform,
		AppID:        d.appID,
		ScreenWidth:  w,
		ScreenHeight: h,
		StartedAt:    d.startedAt,
	}
	if v, ok := d.client.Capability("deviceName"); ok {
		info.DeviceName, _ = v.(string)
	}
	if v, ok := d.client.Capability("platformVersion"); ok {
		info.OSVersion, _ = v.(string)
	}
	return info
}

// FindElement implements core.Driver.
func (d *Driver) FindElement(by core.By) (string, error) {
	id, err := d.client.FindElement(by.Using, by.Value)
	if err != nil {
		return "", classify(err, by)
	}
	return id, nil
}

// FindElements implements core.Driver.
func (d *Driver) FindElements(by core.By) ([]string, error) {
	ids, err := d.client.FindElements(by.Using, by.Value)
	if err != nil {
		return nil, classify(err, by)
	}
	return ids, nil
}

// ClickElement implements core.Driver.
func (d *Driver) ClickElement(elementID string) error {
	return classify(d.client.ClickElement(elementID), core.By{})
}

// ClearElement implements core.Driver.
func (d *Driver) ClearElement(elementID string) error {
	return classify(d.client.ClearElement(elementID), core.By{})
}

// SendKeysToElement implements core.Driver.
func (d *Driver) SendKeysToElement(elementID, text string) error {
	return classify(d.client.SendKeysToElement(elementID, text), core.By{})
}

// GetElementText implements core.Driver.
func (d *Driver) GetElementText(elementID string) (string, error) {
	text, err := d.client.GetElementText(elementID)
	return text, classify(err, core.By{})
}

// IsElementDisplayed implements core.Driver.
func (d *Driver) IsElementDisplayed(elementID string) (bool, error) {
	ok, err := d.client.IsElementDisplayed(elementID)
	return ok, classify(err, core.By{})
}

// IsElementEnabled implements core.Driver.
func (d *Driver) IsElementEnabled(elementID string) (bool, error) {
	ok, err := d.client.IsElementEnabled(elementID)
	return ok, classify(err, core.By{})
}

// Source implements core.Driver.
func (d *Driver) Source() (string, error) {
	src, err := d.client.Source()
	return src, classify(err, core.By{})
}

// Screenshot implements core.Driver.
func (d *Driver) Screenshot() ([]byte, error) {
	data, err := d.client.Screenshot()
	return data, classify(err, core.By{})
}

// Back implements core.Driver.
func (d *Driver) Back() error {
	return classify(d.client.Back(), core.By{})
}

// HideKeyboard implements core.Driver.
func (d *Driver) HideKeyboard() error {
	return classify(d.client.HideKeyboard(), core.By{})
}

// classify maps transport and W3C errors onto the core taxonomy.
func classify(err error, by core.By) error {
	if err == nil {
		return nil
	}

	var details map[string]interface{}
	if !by.IsZero() {
		details = map[string]interface{}{"locator": by.String()}
	}

	var wdErr *WebDriverError
	if errors.As(err, &wdErr) {
		switch wdErr.Code {
		case errNoSuchElement, errStaleElement:
			return core.ErrElementNotFound.WithCause(err).WithDetails(details)
		case errElementNotInteract, errElementClickBlocked:
			return core.ErrElementNotClickable.WithCause(err).WithDetails(details)
		case errInvalidSessionID:
			return core.ErrNoSession.WithCause(err)
		case errSessionNotCreated:
			return core.ErrSessionFailed.WithCause(err)
		}
		return err
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return core.ErrServerUnreachable.WithCause(err)
	}
	return err
}
