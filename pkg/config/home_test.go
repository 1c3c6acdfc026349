package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetHome_EnvVar(t *testing.T) {
	ResetHome()
	t.Setenv("POM_RUNNER_HOME", "/custom/path")

	got := GetHome()
	if got != "/custom/path" {
		t.Errorf("GetHome() = %q, want %q", got, "/custom/path")
	}
}

func TestGetHome_FallbackToCwd(t *testing.T) {
	ResetHome()
	t.Setenv("POM_RUNNER_HOME", "")

	got := GetHome()
	cwd, _ := os.Getwd()
	if got != cwd {
		t.Errorf("GetHome() = %q, want cwd %q", got, cwd)
	}
}

func TestGetHome_Cached(t *testing.T) {
	ResetHome()
	t.Setenv("POM_RUNNER_HOME", "/first")

	first := GetHome()

	// Change env — should NOT affect cached value
	t.Setenv("POM_RUNNER_HOME", "/second")
	second := GetHome()

	if first != second {
		t.Errorf("GetHome() not cached: first=%q, second=%q", first, second)
	}
}

func TestGetAppsDir(t *testing.T) {
	ResetHome()
	t.Setenv("POM_RUNNER_HOME", "/project")

	if got := GetAppsDir(); got != filepath.Join("/project", "apps") {
		t.Errorf("GetAppsDir() = %q", got)
	}
	if got := GetReportsDir(); got != filepath.Join("/project", "reports") {
		t.Errorf("GetReportsDir() = %q", got)
	}
}

func TestIsRunningInCI(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	if !IsRunningInCI() {
		t.Error("IsRunningInCI() = false with GITHUB_ACTIONS=true")
	}
	t.Setenv("GITHUB_ACTIONS", "false")
	if IsRunningInCI() {
		t.Error("IsRunningInCI() = true with GITHUB_ACTIONS=false")
	}
	t.Setenv("GITHUB_ACTIONS", "")
	if IsRunningInCI() {
		t.Error("IsRunningInCI() = true with GITHUB_ACTIONS unset")
	}
}

func TestResolveAppPath_CI(t *testing.T) {
	ResetHome()
	t.Setenv("POM_RUNNER_HOME", "/workspace/repo")
	t.Setenv("GITHUB_ACTIONS", "true")

	got := ResolveAppPath("apps/android.apk")
	want := filepath.Join("/workspace/repo", "apps/android.apk")
	if got != want {
		t.Errorf("ResolveAppPath() = %q, want %q", got, want)
	}
}

func TestResolveAppPath_Local(t *testing.T) {
	ResetHome()
	t.Setenv("GITHUB_ACTIONS", "")

	got := ResolveAppPath("apps/android.apk")
	want, _ := filepath.Abs("apps/android.apk")
	if got != want {
		t.Errorf("ResolveAppPath() = %q, want %q", got, want)
	}
}

func TestResolveAppPath_PassThrough(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")

	for _, p := range []string{"", "/abs/app.apk", "https://example.com/app.apk", "http://host/app.zip"} {
		if got := ResolveAppPath(p); got != p {
			t.Errorf("ResolveAppPath(%q) = %q, want unchanged", p, got)
		}
	}
}
