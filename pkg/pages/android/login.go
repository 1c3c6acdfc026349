// Package android implements the page contracts with UiAutomator2
// locators.
package android

import (
	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/page"
)

// Login screen locators.
var (
	LoginScreen            = core.ByXPath(`//android.widget.ScrollView[@content-desc="Login-screen"]`)
	LoginSignUpForm        = core.ByXPath(`//android.widget.TextView[@text="Login / Sign up Form"]`)
	EmailField             = core.ByXPath(`//android.widget.EditText[@content-desc="input-email"]`)
	PasswordField          = core.ByXPath(`//android.widget.EditText[@content-desc="input-password"]`)
	LoginButton            = core.ByXPath(`//android.view.ViewGroup[@content-desc="button-LOGIN"]/android.view.ViewGroup`)
	LoginInputErrorMessage = core.ByXPath(`//android.widget.TextView[@text="Please enter a valid email address"]`)
	PasswordErrorMessage   = core.ByXPath(`//android.widget.TextView[@text="Please enter at least 8 characters"]`)
)

// LoginPage implements common.LoginPage.
type LoginPage struct {
	*page.Base
}

// NewLoginPage creates the Android login page.
func NewLoginPage(b *page.Base) *LoginPage {
	return &LoginPage{Base: b}
}

func (p *LoginPage) EnterEmail(email string) error {
	return p.Type(EmailField, email)
}

func (p *LoginPage) EnterPassword(password string) error {
	return p.Type(PasswordField, password)
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
