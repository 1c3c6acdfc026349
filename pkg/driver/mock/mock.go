// Package mock provides an in-memory core.Driver for testing without an
// Appium server or a device.
package mock

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

// Element is a node on the mock screen.
type Element struct {
	Text     string
	Hidden   bool
	Disabled bool

	// OnClick runs after a successful click, typically to change screens.
	OnClick func(d *Driver)

	id    string
	by    core.By
	typed []string
}

// ID returns the element id handed to callers by FindElement.
func (e *Element) ID() string { return e.id }

// Config configures mock driver behavior.
type Config struct {
	Platform  core.Platform
	SessionID string

	// Errors injected per operation name ("find", "click", "sendKeys",
	// "text", "screenshot", "quit", ...).
	Failures map[string]error
}

// Driver is a mock implementation of core.Driver.
type Driver struct {
	mu       sync.Mutex
	cfg      Config
	session  string
	elements map[core.By]*Element
	byID     map[string]*Element
	nextID   int
	calls    []string
	quits    int
}

var _ core.Driver = (*Driver)(nil)

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.Platform == "" {
		cfg.Platform = core.PlatformAndroid
	}
	if cfg.SessionID == "" {
		cfg.SessionID = "mock-session"
	}
	return &Driver{
		cfg:      cfg,
		session:  cfg.SessionID,
		elements: make(map[core.By]*Element),
		byID:     make(map[string]*Element),
	}
}

// Add places an element on screen under the locator and returns it.
func (d *Driver) Add(by core.By, e *Element) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e == nil {
		e = &Element{}
	}
	d.nextID++
	e.id = fmt.Sprintf("mock-%d", d.nextID)
	e.by = by
	d.elements[by] = e
	d.byID[e.id] = e
	return e
}

// Remove takes the element off screen; later lookups fail.
func (d *Driver) Remove(by core.By) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.elements[by]; ok {
		delete(d.byID, e.id)
		delete(d.elements, by)
	}
}

// Show marks an element visible.
func (d *Driver) Show(by core.By) { d.setHidden(by, false) }

// Hide marks an element invisible while keeping it findable.
func (d *Driver) Hide(by core.By) { d.setHidden(by, true) }

func (d *Driver) setHidden(by core.By, hidden bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.elements[by]; ok {
		e.Hidden = hidden
	}
}

// Element returns the element registered under the locator.
func (d *Driver) Element(by core.By) (*Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.elements[by]
	return e, ok
}

// Typed returns every string sent to the element, in order.
func (d *Driver) Typed(by core.By) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.elements[by]; ok {
		return append([]string(nil), e.typed...)
	}
	return nil
}

// Calls returns the operation log ("click mock-1", "find By.xpath(...)").
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Quits returns how many times Quit was called.
func (d *Driver) Quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quits
}

// SetFailure injects (or clears, with nil) an error for an operation.
func (d *Driver) SetFailure(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cfg.Failures == nil {
		d.cfg.Failures = make(map[string]error)
	}
	if err == nil {
		delete(d.cfg.Failures, op)
		return
	}
	d.cfg.Failures[op] = err
}

// record logs the call and returns the injected failure, if any.
// Callers must hold d.mu.
func (d *Driver) record(op, arg string) error {
	d.calls = append(d.calls, op+" "+arg)
	if d.session == "" && op != "quit" {
		return core.ErrNoSession
	}
	return d.cfg.Failures[op]
}

func (d *Driver) lookup(elementID string) (*Element, error) {
	e, ok := d.byID[elementID]
	if !ok {
		return nil, core.ErrElementNotFound.WithMessagef("stale element: %s", elementID)
	}
	return e, nil
}

// FindElement implements core.Driver.
func (d *Driver) FindElement(by core.By) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("find", by.String()); err != nil {
		return "", err
	}
	e, ok := d.elements[by]
	if !ok {
		return "", core.ErrElementNotFound.WithDetails(map[string]interface{}{"locator": by.String()})
	}
	return e.id, nil
}

// FindElements implements core.Driver.
func (d *Driver) FindElements(by core.By) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("findAll", by.String()); err != nil {
		return nil, err
	}
	if e, ok := d.elements[by]; ok {
		return []string{e.id}, nil
	}
	return nil, nil
}

// ClickElement implements core.Driver.
func (d *Driver) ClickElement(elementID string) error {
	d.mu.Lock()
	if err := d.record("click", elementID); err != nil {
		d.mu.Unlock()
		return err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if e.Hidden || e.Disabled {
		d.mu.Unlock()
		return core.ErrElementNotClickable.WithDetails(map[string]interface{}{"locator": e.by.String()})
	}
	onClick := e.OnClick
	d.mu.Unlock()

	if onClick != nil {
		onClick(d)
	}
	return nil
}

// ClearElement implements core.Driver.
func (d *Driver) ClearElement(elementID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("clear", elementID); err != nil {
		return err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return err
	}
	e.Text = ""
	return nil
}

// SendKeysToElement implements core.Driver.
func (d *Driver) SendKeysToElement(elementID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("sendKeys", elementID); err != nil {
		return err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return err
	}
	e.Text += text
	e.typed = append(e.typed, text)
	return nil
}

// GetElementText implements core.Driver.
func (d *Driver) GetElementText(elementID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("text", elementID); err != nil {
		return "", err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return "", err
	}
	return e.Text, nil
}

// IsElementDisplayed implements core.Driver.
func (d *Driver) IsElementDisplayed(elementID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("displayed", elementID); err != nil {
		return false, err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return false, err
	}
	return !e.Hidden, nil
}

// IsElementEnabled implements core.Driver.
func (d *Driver) IsElementEnabled(elementID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("enabled", elementID); err != nil {
		return false, err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return false, err
	}
	return !e.Disabled, nil
}

// Source renders the visible elements as a flat XML hierarchy.
func (d *Driver) Source() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("source", ""); err != nil {
		return "", err
	}

	ids := make([]string, 0, len(d.byID))
	for id := range d.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<hierarchy>\n")
	for _, id := range ids {
		e := d.byID[id]
		if e.Hidden {
			continue
		}
		fmt.Fprintf(&b, "  <node id=%q locator=%q text=\"%s\" enabled=\"%t\"/>\n",
			id, e.by.String(), html.EscapeString(e.Text), !e.Disabled)
	}
	b.WriteString("</hierarchy>")
	return b.String(), nil
}

// Screenshot returns a mock PNG image.
func (d *Driver) Screenshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("screenshot", ""); err != nil {
		return nil, err
	}
	// Minimal valid PNG (1x1 transparent pixel)
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// Back implements core.Driver.
func (d *Driver) Back() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("back", "")
}

// HideKeyboard implements core.Driver.
func (d *Driver) HideKeyboard() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("hideKeyboard", "")
}

// Platform implements core.Driver.
func (d *Driver) Platform() core.Platform {
	return d.cfg.Platform
}

// SessionID implements core.Driver.
func (d *Driver) SessionID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// SessionInfo implements core.SessionDescriber.
func (d *Driver) SessionInfo() core.SessionInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return core.SessionInfo{
		SessionID:    d.session,
		Platform:     d.cfg.Platform,
		DeviceName:   "Mock Device",
		OSVersion:    "1.0",
		ScreenWidth:  1080,
		ScreenHeight: 2400,
	}
}

// Quit implements core.Driver.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quits++
	if err := d.record("quit", ""); err != nil {
		return err
	}
	d.session = ""
	return nil
}
