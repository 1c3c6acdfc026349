package core

import (
	"errors"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"android", PlatformAndroid},
		{"ANDROID", PlatformAndroid},
		{" Android ", PlatformAndroid},
		{"ios", PlatformIOS},
		{"IOS", PlatformIOS},
		{"iOS", PlatformIOS},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		if err != nil {
			t.Errorf("ParsePlatform(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePlatform(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParsePlatform_Unsupported(t *testing.T) {
	for _, in := range []string{"", "web", "windows"} {
		_, err := ParsePlatform(in)
		if err == nil {
			t.Errorf("ParsePlatform(%q) expected error", in)
			continue
		}
		if !errors.Is(err, ErrUnsupportedPlatform) {
			t.Errorf("ParsePlatform(%q) error = %v, want ErrUnsupportedPlatform", in, err)
		}
		if CategoryOf(err) != ErrCategoryConfig {
			t.Errorf("ParsePlatform(%q) category = %s, want config", in, CategoryOf(err))
		}
	}
}

func TestPlatform_DisplayName(t *testing.T) {
	if got := PlatformAndroid.DisplayName(); got != "Android" {
		t.Errorf("DisplayName() = %q, want Android", got)
	}
	if got := PlatformIOS.DisplayName(); got != "iOS" {
		t.Errorf("DisplayName() = %q, want iOS", got)
	}
}

func TestBy_String(t *testing.T) {
	by := ByAccessibilityID("input-email")
	if got := by.String(); got != "By.accessibility id(input-email)" {
		t.Errorf("String() = %q", got)
	}
	if by.IsZero() {
		t.Error("IsZero() = true for set locator")
	}
	if !(By{}).IsZero() {
		t.Error("IsZero() = false for empty locator")
	}
}
