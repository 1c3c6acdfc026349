package android

import (
	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/page"
)

// Bottom navigation locators. The Login tab needs an xpath because the
// accessibility id also matches the login button label.
var (
	HomeScreen = core.ByAccessibilityID("Home-screen")
	HomeTab    = core.ByAccessibilityID("Home")
	WebviewTab = core.ByAccessibilityID("Webview")
	LoginTab   = core.ByXPath(`//android.view.View[@content-desc="Login"]`)
	FormsTab   = core.ByAccessibilityID("Forms")
	SwipeTab   = core.ByAccessibilityID("Swipe")
	DragTab    = core.ByAccessibilityID("Drag")
)

// HomePage implements common.BottomNavigation.
type HomePage struct {
	*page.Base
}

// NewHomePage creates the Android home page.
func NewHomePage(b *page.Base) *HomePage {
	b.Log.Debug("Android home page initialized")
	return &HomePage{Base: b}
}

func (p *HomePage) GoToHome() error    { return p.Click(HomeTab) }
func (p *HomePage) GoToWebview() error { return p.Click(WebviewTab) }
func (p *HomePage) GoToLogin() error   { return p.Click(LoginTab) }
func (p *HomePage) GoToForms() error   { return p.Click(FormsTab) }
func (p *HomePage) GoToSwipe() error   { return p.Click(SwipeTab) }
func (p *HomePage) GoToDrag() error    { return p.Click(DragTab) }

func (p *HomePage) IsHomeScreenDisplayed() bool {
	return p.IsDisplayed(HomeScreen)
}
