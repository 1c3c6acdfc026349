package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const envHome = "POM_RUNNER_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// IsRunningInCI reports whether we run on GitHub Actions.
func IsRunningInCI() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// GetHome returns the project root that relative app paths are resolved against.
//
// Resolution order:
//  1. $POM_RUNNER_HOME environment variable
//  2. Current working directory
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetAppsDir returns <home>/apps.
func GetAppsDir() string {
	return filepath.Join(GetHome(), "apps")
}

// GetReportsDir returns <home>/reports.
func GetReportsDir() string {
	return filepath.Join(GetHome(), "reports")
}

// ResolveAppPath turns a configured app path into what Appium should load.
// URLs and absolute paths pass through. In CI relative paths are joined to
// the checkout root; locally they are made absolute against the current
// directory so the Appium server (a separate process) can find them.
func ResolveAppPath(p string) string {
	if p == "" || isURL(p) || filepath.IsAbs(p) {
		return p
	}
	if IsRunningInCI() {
		return filepath.Join(GetHome(), p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Join(GetHome(), p)
	}
	return abs
}

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

func resolveHome() string {
	// 1. Environment variable
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	// 2. Current working directory
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
