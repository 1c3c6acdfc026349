// Package appium opens sessions on an Appium server and implements
// core.Driver over the W3C WebDriver protocol.
package appium

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// W3C WebDriver element identifier key (standard constant)
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// legacyElementKey is returned by JSONWP-era servers.
const legacyElementKey = "ELEMENT"

// WebDriverError is an error payload returned by the server.
type WebDriverError struct {
	Code       string // W3C error code: "no such element", "session not created", ...
	Message    string
	StatusCode int
}

func (e *WebDriverError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// W3C error codes we react to.
const (
	errNoSuchElement       = "no such element"
	errStaleElement        = "stale element reference"
	errSessionNotCreated   = "session not created"
	errInvalidSessionID    = "invalid session id"
	errElementNotInteract  = "element not interactable"
	errElementClickBlocked = "element click intercepted"
	errUnknown             = "unknown error"
)

// reply is the W3C response envelope; the payload is always in "value".
type reply struct {
	Value json.RawMessage `json:"value"`
}

type errorValue struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type newSessionValue struct {
	SessionID    string                 `json:"sessionId"`
	Capabilities map[string]interface{} `json:"capabilities"`
}

type windowRect struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// elementRef holds an element id under the W3C or legacy key.
type elementRef map[string]string

func (r elementRef) id() string {
	if id := r[w3cElementKey]; id != "" {
		return id
	}
	return r[legacyElementKey]
}

// Client handles HTTP communication with Appium server.
type Client struct {
	serverURL    string
	sessionID    string
	httpClient   *http.Client
	platform     string // ios, android
	capabilities map[string]interface{}
	screenW      int
	screenH      int
}

// NewClient creates a new Appium client.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for install/WDA launch
		},
	}
}

// Connect creates a new session with the given capabilities.
func (c *Client) Connect(capabilities map[string]interface{}) error {
	req := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
			"firstMatch":  []interface{}{map[string]interface{}{}},
		},
	}

	var session newSessionValue
	if err := c.do(http.MethodPost, "/session", req, &session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if session.SessionID == "" {
		return fmt.Errorf("no session ID in response")
	}
	c.sessionID = session.SessionID
	c.capabilities = session.Capabilities

	// Prefer what the server granted over what was asked for
	name, _ := session.Capabilities["platformName"].(string)
	if name == "" {
		name, _ = capabilities["platformName"].(string)
	}
	c.platform = strings.ToLower(name)

	var rect windowRect
	if err := c.do(http.MethodGet, c.sessionPath()+"/window/rect", nil, &rect); err == nil {
		c.screenW, c.screenH = int(rect.Width), int(rect.Height)
	}
	return nil
}

// Disconnect closes the session.
func (c *Client) Disconnect() error {
	if c.sessionID == "" {
		return nil
	}
	err := c.do(http.MethodDelete, c.sessionPath(), nil, nil)
	c.sessionID = ""
	return err
}

// SessionID returns the current session id, empty when disconnected.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Platform returns the platform (ios/android).
func (c *Client) Platform() string {
	return c.platform
}

// Capability returns a capability the server reported for the session.
func (c *Client) Capability(name string) (interface{}, bool) {
	v, ok := c.capabilities[name]
	return v, ok
}

// ScreenSize returns the screen dimensions.
func (c *Client) ScreenSize() (int, int) {
	return c.screenW, c.screenH
}

// FindElement finds a single element.
func (c *Client) FindElement(strategy, value string) (string, error) {
	var ref elementRef
	if err := c.do(http.MethodPost, c.sessionPath()+"/element", locate(strategy, value), &ref); err != nil {
		return "", err
	}
	id := ref.id()
	if id == "" {
		return "", &WebDriverError{Code: errNoSuchElement, Message: "no element id in response"}
	}
	return id, nil
}

// FindElements finds multiple elements. No match is not an error.
func (c *Client) FindElements(strategy, value string) ([]string, error) {
	var refs []elementRef
	if err := c.do(http.MethodPost, c.sessionPath()+"/elements", locate(strategy, value), &refs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if id := ref.id(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func locate(strategy, value string) map[string]string {
	return map[string]string{"using": strategy, "value": value}
}

// ClickElement clicks an element.
func (c *Client) ClickElement(elementID string) error {
	return c.do(http.MethodPost, c.elementPath(elementID)+"/click", struct{}{}, nil)
}

// ClearElement clears an element's text.
func (c *Client) ClearElement(elementID string) error {
	return c.do(http.MethodPost, c.elementPath(elementID)+"/clear", struct{}{}, nil)
}

// SendKeysToElement types text into an element. Both the W3C "text" and
// the per-character "value" forms are sent for older drivers.
func (c *Client) SendKeysToElement(elementID, text string) error {
	chars := make([]string, 0, len(text))
	for _, ch := range text {
		chars = append(chars, string(ch))
	}
	return c.do(http.MethodPost, c.elementPath(elementID)+"/value", map[string]interface{}{
		"text":  text,
		"value": chars,
	}, nil)
}

// GetElementText returns an element's text.
func (c *Client) GetElementText(elementID string) (string, error) {
	var text string
	err := c.do(http.MethodGet, c.elementPath(elementID)+"/text", nil, &text)
	return text, err
}

// IsElementDisplayed checks if element is visible.
func (c *Client) IsElementDisplayed(elementID string) (bool, error) {
	var displayed bool
	err := c.do(http.MethodGet, c.elementPath(elementID)+"/displayed", nil, &displayed)
	return displayed, err
}

// IsElementEnabled checks if element is enabled.
func (c *Client) IsElementEnabled(elementID string) (bool, error) {
	var enabled bool
	err := c.do(http.MethodGet, c.elementPath(elementID)+"/enabled", nil, &enabled)
	return enabled, err
}

// Back presses the system back button.
func (c *Client) Back() error {
	return c.do(http.MethodPost, c.sessionPath()+"/back", struct{}{}, nil)
}

// HideKeyboard hides the on-screen keyboard.
func (c *Client) HideKeyboard() error {
	return c.do(http.MethodPost, c.sessionPath()+"/appium/device/hide_keyboard", struct{}{}, nil)
}

// Screenshot returns a screenshot as PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	var encoded string
	if err := c.do(http.MethodGet, c.sessionPath()+"/screenshot", nil, &encoded); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// Source returns the page source XML.
func (c *Client) Source() (string, error) {
	var source string
	err := c.do(http.MethodGet, c.sessionPath()+"/source", nil, &source)
	return source, err
}

// SetImplicitWait sets the session's implicit wait.
func (c *Client) SetImplicitWait(timeout time.Duration) error {
	return c.do(http.MethodPost, c.sessionPath()+"/timeouts", map[string]int64{
		"implicit": timeout.Milliseconds(),
	}, nil)
}

// SetSettings updates Appium driver settings.
// For Android UiAutomator2: waitForIdleTimeout, waitForSelectorTimeout
// For iOS XCUITest: snapshotMaxDepth, customSnapshotTimeout
func (c *Client) SetSettings(settings map[string]interface{}) error {
	return c.do(http.MethodPost, c.sessionPath()+"/appium/settings", map[string]interface{}{
		"settings": settings,
	}, nil)
}

func (c *Client) sessionPath() string {
	return "/session/" + c.sessionID
}

func (c *Client) elementPath(elementID string) string {
	return c.sessionPath() + "/element/" + elementID
}

// do sends one command and decodes the "value" of the reply into out
// (which may be nil). W3C error payloads and bare HTTP errors come back as
// *WebDriverError.
func (c *Client) do(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.serverURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var r reply
	if err := json.Unmarshal(data, &r); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &WebDriverError{Code: errUnknown, Message: http.StatusText(resp.StatusCode), StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	var e errorValue
	if json.Unmarshal(r.Value, &e) == nil && e.Error != "" {
		return &WebDriverError{Code: e.Error, Message: e.Message, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &WebDriverError{Code: errUnknown, Message: http.StatusText(resp.StatusCode), StatusCode: resp.StatusCode}
	}

	if out == nil || len(r.Value) == 0 || string(r.Value) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Value, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
