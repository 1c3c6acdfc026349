// Package demoapp scripts the native demo app on top of the mock driver,
// so suites can run without an Appium server (the CLI's --mock mode).
package demoapp

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/driver/mock"
	"github.com/devicelab-dev/pom-runner/pkg/pages/android"
	"github.com/devicelab-dev/pom-runner/pkg/pages/common"
	"github.com/devicelab-dev/pom-runner/pkg/pages/ios"
)

// Locators are the on-screen elements the script knows about.
type Locators struct {
	HomeScreen, HomeTab, WebviewTab, LoginTab, FormsTab, SwipeTab, DragTab core.By

	LoginScreen, LoginSignUpForm, EmailField, PasswordField, LoginButton core.By
	LoginError, PasswordError                                            core.By
}

// LocatorsFor returns the locators the page objects use on platform.
func LocatorsFor(p core.Platform) Locators {
	if p == core.PlatformIOS {
		return Locators{
			HomeScreen: ios.HomeScreen, HomeTab: ios.HomeTab, WebviewTab: ios.WebviewTab,
			LoginTab: ios.LoginTab, FormsTab: ios.FormsTab, SwipeTab: ios.SwipeTab, DragTab: ios.DragTab,
			LoginScreen: ios.LoginScreen, LoginSignUpForm: ios.LoginSignUpForm,
			EmailField: ios.EmailField, PasswordField: ios.PasswordField, LoginButton: ios.LoginButton,
			LoginError: ios.LoginInputErrorMessage, PasswordError: ios.PasswordErrorMessage,
		}
	}
	return Locators{
		HomeScreen: android.HomeScreen, HomeTab: android.HomeTab, WebviewTab: android.WebviewTab,
		LoginTab: android.LoginTab, FormsTab: android.FormsTab, SwipeTab: android.SwipeTab, DragTab: android.DragTab,
		LoginScreen: android.LoginScreen, LoginSignUpForm: android.LoginSignUpForm,
		EmailField: android.EmailField, PasswordField: android.PasswordField, LoginButton: android.LoginButton,
		LoginError: android.LoginInputErrorMessage, PasswordError: android.PasswordErrorMessage,
	}
}

var sessions atomic.Int64

// New returns a mock driver showing the demo app's home screen.
func New(p core.Platform) *mock.Driver {
	d := mock.New(mock.Config{
		Platform:  p,
		SessionID: fmt.Sprintf("demo-%s-%d", p, sessions.Add(1)),
	})
	app := &app{loc: LocatorsFor(p)}
	app.install(d)
	return d
}

// NewSession adapts New to the runner's session factory signature.
func NewSession(p core.Platform) (core.Driver, error) {
	if !p.Valid() {
		return nil, core.ErrUnsupportedPlatform.WithMessagef("unsupported platform: %q", p)
	}
	return New(p), nil
}

type app struct {
	loc Locators
}

func (a *app) install(d *mock.Driver) {
	tabs := map[core.By]func(*mock.Driver){
		a.loc.HomeTab:    a.showHome,
		a.loc.LoginTab:   a.showLogin,
		a.loc.WebviewTab: a.clearScreen,
		a.loc.FormsTab:   a.clearScreen,
		a.loc.SwipeTab:   a.clearScreen,
		a.loc.DragTab:    a.clearScreen,
	}
	for by, onClick := range tabs {
		d.Add(by, &mock.Element{OnClick: onClick})
	}
	a.showHome(d)
}

func (a *app) screenElements() []core.By {
	return []core.By{
		a.loc.HomeScreen,
		a.loc.LoginScreen, a.loc.LoginSignUpForm, a.loc.EmailField, a.loc.PasswordField, a.loc.LoginButton,
		a.loc.LoginError, a.loc.PasswordError,
	}
}

func (a *app) clearScreen(d *mock.Driver) {
	for _, by := range a.screenElements() {
		d.Remove(by)
	}
}

func (a *app) showHome(d *mock.Driver) {
	a.clearScreen(d)
	d.Add(a.loc.HomeScreen, &mock.Element{})
}

func (a *app) showLogin(d *mock.Driver) {
	a.clearScreen(d)
	d.Add(a.loc.LoginScreen, &mock.Element{})
	d.Add(a.loc.LoginSignUpForm, &mock.Element{Text: common.LoginSignUpFormTitle})
	d.Add(a.loc.EmailField, &mock.Element{})
	d.Add(a.loc.PasswordField, &mock.Element{})
	d.Add(a.loc.LoginButton, &mock.Element{Text: "LOGIN", OnClick: a.submitLogin})
}

// submitLogin mirrors the form's client-side validation.
func (a *app) submitLogin(d *mock.Driver) {
	d.Remove(a.loc.LoginError)
	d.Remove(a.loc.PasswordError)

	var email, password string
	if e, ok := d.Element(a.loc.EmailField); ok {
		email = e.Text
	}
	if e, ok := d.Element(a.loc.PasswordField); ok {
		password = e.Text
	}

	if !validEmail(email) {
		d.Add(a.loc.LoginError, &mock.Element{Text: common.InvalidEmailMessage})
	}
	if len(password) < common.MinimumPasswordLength {
		d.Add(a.loc.PasswordError, &mock.Element{Text: common.ShortPasswordMessage})
	}
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
