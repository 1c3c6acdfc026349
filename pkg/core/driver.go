package core

import (
	"time"
)

// Driver is a live session on a remote automation server.
// Implementations: appium.Driver (real server), mock.Driver (tests).
// Elements are addressed by the opaque ids the server hands back from
// FindElement; page objects never hold ids across actions.
type Driver interface {
	// FindElement returns the id of the first element matching by.
	FindElement(by By) (string, error)

	// FindElements returns the ids of all elements matching by.
	FindElements(by By) ([]string, error)

	ClickElement(elementID string) error
	ClearElement(elementID string) error
	SendKeysToElement(elementID, text string) error
	GetElementText(elementID string) (string, error)
	IsElementDisplayed(elementID string) (bool, error)
	IsElementEnabled(elementID string) (bool, error)

	// Source returns the page source XML.
	Source() (string, error)

	// Screenshot captures the current screen as PNG
	Screenshot() ([]byte, error)

	Back() error
	HideKeyboard() error

	// Platform returns the platform the session was opened for.
	Platform() Platform

	// SessionID returns the remote session id, empty once quit.
	SessionID() string

	// Quit ends the remote session. Calling it twice is a no-op.
	Quit() error
}

// SessionInfo describes an opened session for reports.
type SessionInfo struct {
	SessionID    string    `json:"sessionId,omitempty"`
	Platform     Platform  `json:"platform"`
	DeviceName   string    `json:"deviceName,omitempty"`
	OSVersion    string    `json:"osVersion,omitempty"`
	AppID        string    `json:"appId,omitempty"` // Bundle ID / Package name
	ScreenWidth  int       `json:"screenWidth,omitempty"`
	ScreenHeight int       `json:"screenHeight,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
}

// SessionDescriber is implemented by drivers that can report session details.
type SessionDescriber interface {
	SessionInfo() SessionInfo
}
