// Package login holds the cross-platform login screen tests. They only
// use the page contracts, so the same test runs on Android and iOS.
package login

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/pom-runner/pkg/executor"
	"github.com/devicelab-dev/pom-runner/pkg/pages/common"
)

// Tests returns the login tests in run order.
func Tests() []executor.Test {
	return []executor.Test{NavigateToLogin, Negative, ShortPassword}
}

// NavigateToLogin opens the Login tab from the home screen.
var NavigateToLogin = executor.Test{
	Name:        "Navigate to login",
	Description: "Login tab shows the login / sign up form",
	Tags:        []string{"login", "navigation", "smoke"},
	Run: func(t *executor.T) {
		nav := executor.Page[common.BottomNavigation](t)
		login := executor.Page[common.LoginPage](t)

		t.Check(nav.GoToLogin())

		require.True(t, login.IsLoginScreenDisplayed(), "login screen should be displayed")
		assert.True(t, login.IsSignUpFormDisplayed(), "sign up form should be displayed")
	},
}

// Negative submits an invalid email with an empty password.
var Negative = executor.Test{
	Name:        "Log in",
	Description: "invalid email shows the email validation error",
	Tags:        []string{"login", "negative"},
	Run: func(t *executor.T) {
		nav := executor.Page[common.BottomNavigation](t)
		login := executor.Page[common.LoginPage](t)

		t.Check(nav.GoToLogin())
		require.True(t, login.IsLoginScreenDisplayed(), "login screen should be displayed")

		t.Check(login.EnterEmail("poo"))
		t.Check(login.EnterPassword(""))
		t.Check(login.ClickLoginButton())

		text, err := login.LoginErrorMessageText()
		t.Check(err)
		assert.Equal(t, common.InvalidEmailMessage, text)
	},
}

// ShortPassword submits a valid email with a too-short password.
var ShortPassword = executor.Test{
	Name:        "Log in with short password",
	Description: "password under 8 characters shows the password validation error",
	Tags:        []string{"login", "negative"},
	Run: func(t *executor.T) {
		nav := executor.Page[common.BottomNavigation](t)
		login := executor.Page[common.LoginPage](t)

		t.Check(nav.GoToLogin())
		require.True(t, login.IsLoginScreenDisplayed(), "login screen should be displayed")

		t.Check(login.EnterEmail("tester@example.com"))
		t.Check(login.EnterPassword("short"))
		t.Check(login.ClickLoginButton())

		text, err := login.PasswordErrorMessageText()
		t.Check(err)
		assert.Equal(t, common.ShortPasswordMessage, text)
	},
}
