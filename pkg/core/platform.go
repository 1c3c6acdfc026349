// Package core provides the shared domain types for pom-runner: platforms,
// locators, the remote driver contract, errors and test results.
package core

import (
	"strings"
)

// Platform identifies the mobile platform a session runs against.
type Platform string

// Supported platforms
const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Platforms lists every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformAndroid, PlatformIOS}
}

// ParsePlatform normalizes a platform name ("Android", "IOS", " ios ").
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "android":
		return PlatformAndroid, nil
	case "ios":
		return PlatformIOS, nil
	}
	return "", ErrUnsupportedPlatform.WithMessagef("unsupported platform: %q", s)
}

// String returns the lowercase platform name.
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns the platformName capability value ("Android", "iOS").
func (p Platform) DisplayName() string {
	switch p {
	case PlatformAndroid:
		return "Android"
	case PlatformIOS:
		return "iOS"
	default:
		return string(p)
	}
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	return p == PlatformAndroid || p == PlatformIOS
}
