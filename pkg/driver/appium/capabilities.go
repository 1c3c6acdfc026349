package appium

import (
	"time"

	"github.com/devicelab-dev/pom-runner/pkg/config"
	"github.com/devicelab-dev/pom-runner/pkg/core"
)

// Options is a W3C capability set with Appium vendor-prefixed keys.
type Options struct {
	caps map[string]interface{}
}

func newOptions() *Options {
	return &Options{caps: make(map[string]interface{})}
}

// Set sets a raw capability. Non-standard keys should carry the "appium:" prefix.
func (o *Options) Set(name string, value interface{}) *Options {
	o.caps[name] = value
	return o
}

func (o *Options) setAppium(name string, value interface{}) *Options {
	return o.Set("appium:"+name, value)
}

func (o *Options) SetPlatformName(name string) *Options { return o.Set("platformName", name) }
func (o *Options) SetDeviceName(name string) *Options   { return o.setAppium("deviceName", name) }
func (o *Options) SetUDID(udid string) *Options         { return o.setAppium("udid", udid) }
func (o *Options) SetApp(path string) *Options          { return o.setAppium("app", path) }
func (o *Options) SetAutomationName(name string) *Options {
	return o.setAppium("automationName", name)
}
func (o *Options) SetPlatformVersion(version string) *Options {
	return o.setAppium("platformVersion", version)
}
func (o *Options) SetNoReset(v bool) *Options { return o.setAppium("noReset", v) }

// SetNewCommandTimeout is sent in seconds, as Appium expects.
func (o *Options) SetNewCommandTimeout(d time.Duration) *Options {
	return o.setAppium("newCommandTimeout", int64(d/time.Second))
}

// Capabilities returns a copy of the capability map.
func (o *Options) Capabilities() map[string]interface{} {
	out := make(map[string]interface{}, len(o.caps))
	for k, v := range o.caps {
		out[k] = v
	}
	return out
}

// UiAutomator2Options builds Android session capabilities.
type UiAutomator2Options struct {
	*Options
}

// NewUiAutomator2Options presets platformName and automationName for Android.
func NewUiAutomator2Options() *UiAutomator2Options {
	o := &UiAutomator2Options{Options: newOptions()}
	o.SetPlatformName(core.PlatformAndroid.DisplayName())
	o.SetAutomationName("UiAutomator2")
	return o
}

func (o *UiAutomator2Options) SetAppPackage(pkg string) *UiAutomator2Options {
	o.setAppium("appPackage", pkg)
	return o
}

func (o *UiAutomator2Options) SetAppActivity(activity string) *UiAutomator2Options {
	o.setAppium("appActivity", activity)
	return o
}

func (o *UiAutomator2Options) SetSkipDeviceInitialization(v bool) *UiAutomator2Options {
	o.setAppium("skipDeviceInitialization", v)
	return o
}

func (o *UiAutomator2Options) SetSkipServerInstallation(v bool) *UiAutomator2Options {
	o.setAppium("skipServerInstallation", v)
	return o
}

func (o *UiAutomator2Options) SetAutoGrantPermissions(v bool) *UiAutomator2Options {
	o.setAppium("autoGrantPermissions", v)
	return o
}

// XCUITestOptions builds iOS session capabilities.
type XCUITestOptions struct {
	*Options
}

// NewXCUITestOptions presets platformName and automationName for iOS.
func NewXCUITestOptions() *XCUITestOptions {
	o := &XCUITestOptions{Options: newOptions()}
	o.SetPlatformName(core.PlatformIOS.DisplayName())
	o.SetAutomationName("XCUITest")
	return o
}

func (o *XCUITestOptions) SetBundleID(id string) *XCUITestOptions {
	o.setAppium("bundleId", id)
	return o
}

// SetWDALaunchTimeout is sent in milliseconds, as XCUITest expects.
func (o *XCUITestOptions) SetWDALaunchTimeout(d time.Duration) *XCUITestOptions {
	o.setAppium("wdaLaunchTimeout", d.Milliseconds())
	return o
}

// CapabilitiesFor builds the session capabilities for a platform from config.
// Extra capabilities in cfg.Capabilities are merged last and win.
func CapabilitiesFor(p core.Platform, cfg *config.Config) (map[string]interface{}, error) {
	var caps map[string]interface{}

	switch p {
	case core.PlatformAndroid:
		a := cfg.Android
		o := NewUiAutomator2Options()
		o.SetDeviceName(a.DeviceName)
		if a.AutomationName != "" {
			o.SetAutomationName(a.AutomationName)
		}
		if a.PlatformVersion != "" {
			o.SetPlatformVersion(a.PlatformVersion)
		}
		if app := cfg.AppPath(p); app != "" {
			o.SetApp(app)
		}
		o.SetAppPackage(a.AppPackage)
		if a.AppActivity != "" {
			o.SetAppActivity(a.AppActivity)
		}
		o.SetNoReset(a.NoReset)
		o.SetSkipDeviceInitialization(a.SkipDeviceInitialization)
		o.SetSkipServerInstallation(a.SkipServerInstallation)
		o.SetAutoGrantPermissions(a.AutoGrantPermissions)
		if a.NewCommandTimeout > 0 {
			o.SetNewCommandTimeout(a.NewCommandTimeout)
		}
		caps = o.Capabilities()

	case core.PlatformIOS:
		i := cfg.IOS
		o := NewXCUITestOptions()
		o.SetDeviceName(i.DeviceName)
		if i.AutomationName != "" {
			o.SetAutomationName(i.AutomationName)
		}
		if i.PlatformVersion != "" {
			o.SetPlatformVersion(i.PlatformVersion)
		}
		if i.UDID != "" {
			o.SetUDID(i.UDID)
		}
		if app := cfg.AppPath(p); app != "" {
			o.SetApp(app)
		}
		o.SetBundleID(i.BundleID)
		o.SetNoReset(i.NoReset)
		if i.WDALaunchTimeout > 0 {
			o.SetWDALaunchTimeout(i.WDALaunchTimeout)
		}
		if i.NewCommandTimeout > 0 {
			o.SetNewCommandTimeout(i.NewCommandTimeout)
		}
		caps = o.Capabilities()

	default:
		return nil, core.ErrUnsupportedPlatform.WithMessagef("unsupported platform: %q", p)
	}

	for k, v := range cfg.Capabilities {
		caps[k] = v
	}
	return caps, nil
}
