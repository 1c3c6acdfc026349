// Package ios implements the page contracts with XCUITest locators.
package ios

import (
	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/page"
)

// Login screen locators.
var (
	LoginScreen            = core.ByXPath(`//XCUIElementTypeOther[@name = "Login-screen"]/XCUIElementTypeScrollView`)
	LoginSignUpForm        = core.ByXPath(`//XCUIElementTypeStaticText[@name="Login / Sign up Form"]`)
	EmailField             = core.ByXPath(`//XCUIElementTypeTextField[@name="input-email"]`)
	PasswordField          = core.ByXPath(`//XCUIElementTypeSecureTextField[@name="input-password"]`)
	LoginButton            = core.ByXPath(`//XCUIElementTypeStaticText[@name="LOGIN"]`)
	LoginInputErrorMessage = core.ByXPath(`//XCUIElementTypeStaticText[@name="Please enter a valid email address"]`)
	PasswordErrorMessage   = core.ByXPath(`//XCUIElementTypeStaticText[@name="Please enter at least 8 characters"]`)
)

// LoginPage implements common.LoginPage.
type LoginPage struct {
	*page.Base
}

// NewLoginPage creates the iOS login page.
func NewLoginPage(b *page.Base) *LoginPage {
	return &LoginPage{Base: b}
}

func (p *LoginPage) EnterEmail(email string) error {
	return p.Type(EmailField, email)
}

// EnterPassword types into the secure field and dismisses the keyboard,
// which otherwise covers the LOGIN button on smaller screens.
func (p *LoginPage) EnterPassword(password string) error {
	if err := p.Type(PasswordField, password); err != nil {
		return err
	}
	if err := p.HideKeyboard(); err != nil {
		p.Log.Debugf("hide keyboard: %v", err)
	}
	return nil
}

func (p *LoginPage) ClickLoginButton() error {
	return p.Click(LoginButton)
}

func (p *LoginPage) IsLoginScreenDisplayed() bool {
	return p.IsDisplayed(LoginScreen)
}

func (p *LoginPage) IsSignUpFormDisplayed() bool {
	return p.IsDisplayed(LoginSignUpForm)
}

func (p *LoginPage) LoginErrorMessageText() (string, error) {
	return p.GetText(LoginInputErrorMessage)
}

func (p *LoginPage) PasswordErrorMessageText() (string, error) {
	return p.GetText(PasswordErrorMessage)
}
