// Package config handles configuration for pom-runner.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

// Defaults for the WebdriverIO native demo app on a local Appium server.
const (
	DefaultAppiumURL    = "http://127.0.0.1:4723"
	DefaultImplicitWait = 15 * time.Second
	DefaultWaitTimeout  = 15 * time.Second
	DefaultPollInterval = 200 * time.Millisecond

	DefaultAndroidAppPackage = "com.wdiodemoapp"
	DefaultIOSBundleID       = "org.reactjs.native.example.wdiodemoapp"

	DefaultAndroidAppPath = "apps/android.wdio.native.app.v1.0.8.apk"
	DefaultIOSAppPath     = "apps/ios/wdiodemoapp.app"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Appium server
	AppiumURL string `yaml:"appiumURL" toml:"appiumURL"`

	// Timeouts
	ImplicitWait time.Duration `yaml:"implicitWait" toml:"implicitWait"` // Global implicit wait set after session start
	WaitTimeout  time.Duration `yaml:"waitTimeout" toml:"waitTimeout"`   // Explicit wait used by page objects
	PollInterval time.Duration `yaml:"pollInterval" toml:"pollInterval"` // Explicit wait poll interval

	// Execution settings
	Workers   int    `yaml:"workers" toml:"workers"`     // Parallel sessions (one per worker)
	OutputDir string `yaml:"outputDir" toml:"outputDir"` // Report directory; empty means <home>/reports/<timestamp>

	// Failure artifacts (screenshot, page source)
	Artifacts core.ArtifactConfig `yaml:"artifacts" toml:"artifacts"`

	// Per-platform session settings
	Android AndroidConfig `yaml:"android" toml:"android"`
	IOS     IOSConfig     `yaml:"ios" toml:"ios"`

	// Extra raw capabilities merged last (e.g. cloud provider options)
	Capabilities map[string]interface{} `yaml:"capabilities" toml:"capabilities"`
}

// AndroidConfig holds UiAutomator2 session settings.
type AndroidConfig struct {
	DeviceName               string        `yaml:"deviceName" toml:"deviceName"`
	PlatformVersion          string        `yaml:"platformVersion" toml:"platformVersion"`
	App                      string        `yaml:"app" toml:"app"`
	AppPackage               string        `yaml:"appPackage" toml:"appPackage"`
	AppActivity              string        `yaml:"appActivity" toml:"appActivity"`
	AutomationName           string        `yaml:"automationName" toml:"automationName"`
	NoReset                  bool          `yaml:"noReset" toml:"noReset"`
	SkipDeviceInitialization bool          `yaml:"skipDeviceInitialization" toml:"skipDeviceInitialization"`
	SkipServerInstallation   bool          `yaml:"skipServerInstallation" toml:"skipServerInstallation"`
	AutoGrantPermissions     bool          `yaml:"autoGrantPermissions" toml:"autoGrantPermissions"`
	NewCommandTimeout        time.Duration `yaml:"newCommandTimeout" toml:"newCommandTimeout"`
}

// IOSConfig holds XCUITest session settings.
type IOSConfig struct {
	DeviceName        string        `yaml:"deviceName" toml:"deviceName"`
	PlatformVersion   string        `yaml:"platformVersion" toml:"platformVersion"`
	UDID              string        `yaml:"udid" toml:"udid"`
	App               string        `yaml:"app" toml:"app"`
	BundleID          string        `yaml:"bundleId" toml:"bundleId"`
	AutomationName    string        `yaml:"automationName" toml:"automationName"`
	NoReset           bool          `yaml:"noReset" toml:"noReset"`
	WDALaunchTimeout  time.Duration `yaml:"wdaLaunchTimeout" toml:"wdaLaunchTimeout"`
	NewCommandTimeout time.Duration `yaml:"newCommandTimeout" toml:"newCommandTimeout"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		AppiumURL:    DefaultAppiumURL,
		ImplicitWait: DefaultImplicitWait,
		WaitTimeout:  DefaultWaitTimeout,
		PollInterval: DefaultPollInterval,
		Workers:      1,
		Artifacts:    core.DefaultArtifactConfig(),
		Android: AndroidConfig{
			DeviceName:           "emulator-5554",
			App:                  DefaultAndroidAppPath,
			AppPackage:           DefaultAndroidAppPackage,
			AutomationName:       "UiAutomator2",
			AutoGrantPermissions: true,
			NewCommandTimeout:    60 * time.Second,
		},
		IOS: IOSConfig{
			DeviceName:        "iPhone 16e",
			PlatformVersion:   "26.0",
			App:               DefaultIOSAppPath,
			BundleID:          DefaultIOSBundleID,
			AutomationName:    "XCUITest",
			WDALaunchTimeout:  120 * time.Second,
			NewCommandTimeout: 3600 * time.Second,
		},
	}
}

// configFiles are tried in order by LoadFromDir.
var configFiles = []string{"config.yaml", "config.yml", "config.toml"}

// Load loads configuration from a file, on top of Default().
// Files ending in .toml are parsed as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir looks for config.yaml, config.yml or config.toml in the
// directory and falls back to defaults.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range configFiles {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return defaults
	return Default(), nil
}

// Validate checks the settings every session depends on.
func (c *Config) Validate() error {
	if c.AppiumURL == "" {
		return core.ErrInvalidConfig.WithMessage("appiumURL is required")
	}
	u, err := url.Parse(c.AppiumURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return core.ErrInvalidConfig.WithMessagef("invalid Appium server URL: %q", c.AppiumURL)
	}
	if c.Workers < 1 {
		return core.ErrInvalidConfig.WithMessagef("workers must be at least 1, got %d", c.Workers)
	}
	if c.WaitTimeout <= 0 {
		return core.ErrInvalidConfig.WithMessage("waitTimeout must be positive")
	}
	if c.PollInterval <= 0 {
		return core.ErrInvalidConfig.WithMessage("pollInterval must be positive")
	}
	return nil
}

// AppPath returns the resolved application path for a platform.
func (c *Config) AppPath(p core.Platform) string {
	switch p {
	case core.PlatformAndroid:
		return ResolveAppPath(c.Android.App)
	case core.PlatformIOS:
		return ResolveAppPath(c.IOS.App)
	}
	return ""
}

// AppID returns the package name (Android) or bundle id (iOS).
func (c *Config) AppID(p core.Platform) string {
	switch p {
	case core.PlatformAndroid:
		return c.Android.AppPackage
	case core.PlatformIOS:
		return c.IOS.BundleID
	}
	return ""
}
