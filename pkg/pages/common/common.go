// Package common declares the page contracts shared by every platform.
// Tests depend only on these interfaces; the platform packages provide
// the implementations.
package common

// Error texts shown by the demo app's login form.
const (
	InvalidEmailMessage   = "Please enter a valid email address"
	ShortPasswordMessage  = "Please enter at least 8 characters"
	LoginSignUpFormTitle  = "Login / Sign up Form"
	MinimumPasswordLength = 8
)

// LoginPage is the login / sign up screen.
type LoginPage interface {
	EnterEmail(email string) error
	EnterPassword(password string) error
	ClickLoginButton() error

	IsLoginScreenDisplayed() bool
	IsSignUpFormDisplayed() bool
	LoginErrorMessageText() (string, error)
	PasswordErrorMessageText() (string, error)
}

// BottomNavigation is the tab bar present on every screen.
type BottomNavigation interface {
	GoToHome() error
	GoToWebview() error
	GoToLogin() error
	GoToForms() error
	GoToSwipe() error
	GoToDrag() error

	IsHomeScreenDisplayed() bool
}
