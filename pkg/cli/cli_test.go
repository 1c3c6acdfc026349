package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pom-runner/pkg/config"
	"github.com/devicelab-dev/pom-runner/pkg/report"
)

// runApp runs the CLI with args and returns stdout. Exit codes are
// returned as errors instead of terminating the test binary.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"pom-runner", "--no-ansi"}, args...))
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const fastConfig = `
waitTimeout: 500ms
pollInterval: 10ms
workers: 2
`

func TestResolveOutputDir(t *testing.T) {
	if _, err := resolveOutputDir("", true); err == nil {
		t.Error("expected error for --flatten without --output")
	}

	dir, err := resolveOutputDir("out/", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "out" {
		t.Errorf("flatten dir = %q, want %q", dir, "out")
	}

	dir, err = resolveOutputDir("out", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(dir) != "out" || filepath.Base(dir) == "out" {
		t.Errorf("expected timestamp subfolder of out, got %q", dir)
	}

	dir, err = resolveOutputDir("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(dir) != config.GetReportsDir() {
		t.Errorf("expected timestamp subfolder of %q, got %q", config.GetReportsDir(), dir)
	}
}

func TestTestCommand_Mock(t *testing.T) {
	for _, platform := range []string{"android", "ios"} {
		t.Run(platform, func(t *testing.T) {
			outDir := t.TempDir()
			out, err := runApp(t,
				"--platform", platform,
				"--config", writeConfig(t, fastConfig),
				"test", "--mock", "--output", outDir, "--flatten",
			)
			if err != nil {
				t.Fatalf("unexpected error: %v\n%s", err, out)
			}
			if !strings.Contains(out, "All tests passed") {
				t.Errorf("expected success summary, got:\n%s", out)
			}
			for _, name := range []string{report.JSONFile, report.JUnitFile, report.HTMLFile, "pom-runner.log"} {
				if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
					t.Errorf("expected %s to be written: %v", name, err)
				}
			}

			suite, err := report.ReadJSON(filepath.Join(outDir, report.JSONFile))
			if err != nil {
				t.Fatal(err)
			}
			if string(suite.Platform) != platform {
				t.Errorf("report platform = %q, want %q", suite.Platform, platform)
			}
			if suite.TotalTests == 0 || suite.PassedTests != suite.TotalTests {
				t.Errorf("expected all tests passed, got %d/%d", suite.PassedTests, suite.TotalTests)
			}
		})
	}
}

func TestTestCommand_Filter(t *testing.T) {
	outDir := t.TempDir()
	out, err := runApp(t,
		"--config", writeConfig(t, fastConfig),
		"test", "--mock", "--output", outDir, "--flatten", "--run", "^Log in$",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	suite, err := report.ReadJSON(filepath.Join(outDir, report.JSONFile))
	if err != nil {
		t.Fatal(err)
	}
	if suite.TotalTests != 1 || suite.Tests[0].Name != "Log in" {
		t.Errorf("expected only %q to run, got %+v", "Log in", suite.Tests)
	}
}

func TestTestCommand_NoMatch(t *testing.T) {
	out, err := runApp(t,
		"--config", writeConfig(t, fastConfig),
		"test", "--mock", "--output", t.TempDir(), "--flatten", "--include-tags", "does-not-exist",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No tests match") {
		t.Errorf("expected no-match notice, got:\n%s", out)
	}
}

func TestTestCommand_SessionFailureExitsNonZero(t *testing.T) {
	outDir := t.TempDir()
	out, err := runApp(t,
		"--config", writeConfig(t, fastConfig),
		"--appium-url", "http://127.0.0.1:1",
		"test", "--output", outDir, "--flatten", "--run", "^Log in$",
	)

	var exitErr cli.ExitCoder
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v\n%s", err, out)
	}

	suite, err := report.ReadJSON(filepath.Join(outDir, report.JSONFile))
	if err != nil {
		t.Fatal(err)
	}
	if suite.ErroredTests != 1 {
		t.Errorf("expected 1 errored test, got %d", suite.ErroredTests)
	}
	if len(suite.Tests[0].Errors) == 0 || !strings.Contains(suite.Tests[0].Errors[0], "driver setup failed") {
		t.Errorf("expected driver setup error, got %v", suite.Tests[0].Errors)
	}
}

func TestTestCommand_FlattenWithoutOutput(t *testing.T) {
	_, err := runApp(t, "--config", writeConfig(t, fastConfig), "test", "--mock", "--flatten")
	if err == nil || !strings.Contains(err.Error(), "--flatten") {
		t.Errorf("expected --flatten error, got %v", err)
	}
}

func TestInvalidPlatform(t *testing.T) {
	_, err := runApp(t, "--platform", "windows", "list")
	if err == nil {
		t.Fatal("expected error for unsupported platform")
	}
}

func TestListCommand(t *testing.T) {
	out, err := runApp(t, "list", "--include-tags", "smoke")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Navigate to login") {
		t.Errorf("expected smoke test listed, got:\n%s", out)
	}
	if strings.Contains(out, "Log in with short password") {
		t.Errorf("non-smoke test should be filtered out:\n%s", out)
	}
}

func TestPagesCommand(t *testing.T) {
	out, err := runApp(t, "--platform", "ios", "pages")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"iOS:", "common.LoginPage", "*ios.LoginPage", "common.BottomNavigation"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "android.") {
		t.Errorf("android entries should not be listed without --all:\n%s", out)
	}

	out, err = runApp(t, "pages", "--all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Android:") || !strings.Contains(out, "iOS:") {
		t.Errorf("expected both platforms with --all:\n%s", out)
	}
}

func TestCapsCommand(t *testing.T) {
	out, err := runApp(t, "--platform", "ios", "caps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"platformName": "iOS"`, `"appium:bundleId"`, `"appium:automationName": "XCUITest"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestReportCommand(t *testing.T) {
	outDir := t.TempDir()
	if _, err := runApp(t,
		"--config", writeConfig(t, fastConfig),
		"test", "--mock", "--output", outDir, "--flatten",
	); err != nil {
		t.Fatal(err)
	}
	junitPath := filepath.Join(outDir, report.JUnitFile)
	if err := os.Remove(junitPath); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "report", "--html=false", "--allure=false", outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(junitPath); err != nil {
		t.Errorf("expected junit.xml to be regenerated: %v", err)
	}
	if !strings.Contains(out, report.JUnitFile) {
		t.Errorf("expected written paths in output:\n%s", out)
	}
}

func TestReportCommand_MissingDir(t *testing.T) {
	if _, err := runApp(t, "report"); err == nil {
		t.Error("expected error without report dir")
	}
	if _, err := runApp(t, "report", t.TempDir()); err == nil {
		t.Error("expected error when report.json is missing")
	}
}

func TestTestCommand_VerboseKeepsLogFile(t *testing.T) {
	outDir := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "run.log")

	var out, errOut bytes.Buffer
	app := NewApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run([]string{"pom-runner", "--no-ansi", "--verbose", "--log-file", logPath,
		"--config", writeConfig(t, fastConfig),
		"test", "--mock", "--output", outDir, "--flatten", "--workers", "1", "--run", "^Log in$"})
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "running 1 of") {
		t.Errorf("log file missing runner output:\n%s", data)
	}
	if !strings.Contains(errOut.String(), "running 1 of") {
		t.Errorf("verbose output missing runner output:\n%s", errOut.String())
	}
}
