package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pom-runner/pkg/config"
	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/driver/appium"
	"github.com/devicelab-dev/pom-runner/pkg/executor"
	"github.com/devicelab-dev/pom-runner/pkg/logger"
	"github.com/devicelab-dev/pom-runner/pkg/pages"
	"github.com/devicelab-dev/pom-runner/pkg/pages/demoapp"
	"github.com/devicelab-dev/pom-runner/pkg/pom"
	"github.com/devicelab-dev/pom-runner/pkg/report"
	"github.com/devicelab-dev/pom-runner/pkg/suites"
)

var filterFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "run",
		Usage: "Only run tests whose name matches this regular expression",
	},
	&cli.StringSliceFlag{
		Name:  "include-tags",
		Usage: "Only run tests with these tags (comma-separated)",
	},
	&cli.StringSliceFlag{
		Name:  "exclude-tags",
		Usage: "Skip tests with these tags (comma-separated)",
	},
}

var testCommand = &cli.Command{
	Name:  "test",
	Usage: "Run the test suites",
	Description: `Runs every selected test on the chosen platform. Each test gets its own
Appium session, opened on the worker that runs it and always quit afterwards.

Reports (report.json, junit.xml, report.html, allure-results/) are written
to ./reports/<timestamp>/ unless --output is given.`,
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of parallel sessions (overrides config.yaml)",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output directory for reports",
		},
		&cli.BoolFlag{
			Name:  "flatten",
			Usage: "Write reports directly to --output without a timestamp subfolder",
		},
		&cli.BoolFlag{
			Name:  "mock",
			Usage: "Run against the built-in demo app simulation instead of Appium",
		},
		&cli.BoolFlag{
			Name:  "source-on-failure",
			Usage: "Also capture the page source when a test fails",
		},
	}, filterFlags...),
	Action: runTest,
}

// RunConfig holds everything a test run needs once flags are resolved.
type RunConfig struct {
	Platform  core.Platform
	Config    *config.Config
	Filter    executor.Filter
	OutputDir string
	Mock      bool
	Verbose   bool
	Artifacts core.ArtifactConfig
	Out       io.Writer
}

func runTest(c *cli.Context) error {
	platform, err := platformFromContext(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	filter, err := filterFromContext(c)
	if err != nil {
		return err
	}

	output := c.String("output")
	if output == "" {
		output = cfg.OutputDir
	}
	outputDir, err := resolveOutputDir(output, c.Bool("flatten"))
	if err != nil {
		return err
	}

	artifacts := cfg.Artifacts
	if c.Bool("source-on-failure") {
		artifacts.Source = true
	}

	rc := &RunConfig{
		Platform:  platform,
		Config:    cfg,
		Filter:    filter,
		OutputDir: outputDir,
		Mock:      c.Bool("mock"),
		Verbose:   c.Bool("verbose"),
		Artifacts: artifacts,
		Out:       c.App.Writer,
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	defer setupLogging(c, filepath.Join(outputDir, "pom-runner.log"))()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := executeTests(ctx, rc)
	if err != nil {
		return err
	}
	if len(result.Failures()) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func filterFromContext(c *cli.Context) (executor.Filter, error) {
	return executor.NewFilter(
		c.String("run"),
		c.StringSlice("include-tags"),
		c.StringSlice("exclude-tags"),
	)
}

// resolveOutputDir determines the output directory based on flags.
// - No --output: <home>/reports/<timestamp>/
// - --output given: <output>/<timestamp>/
// - --output + --flatten: <output>/ (error if --output not given)
func resolveOutputDir(output string, flatten bool) (string, error) {
	if flatten && output == "" {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}

	baseDir := output
	if baseDir == "" {
		baseDir = config.GetReportsDir()
	}

	if flatten {
		return filepath.Clean(baseDir), nil
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(baseDir, timestamp), nil
}

// sessionFactory picks the driver backend for the run.
func sessionFactory(rc *RunConfig) executor.SessionFactory {
	if rc.Mock {
		return demoapp.NewSession
	}
	return func(p core.Platform) (core.Driver, error) {
		return appium.NewSession(p, rc.Config)
	}
}

// executeTests runs the suites and writes reports. The returned result
// may contain failures; err is only set when the run could not happen.
func executeTests(ctx context.Context, rc *RunConfig) (*core.SuiteResult, error) {
	registry := pages.Registry()
	if err := registry.CheckParity(); err != nil {
		logger.Warn("page registry: %v", err)
	}

	tests := suites.All()
	selected := rc.Filter.Select(tests)
	if len(selected) == 0 {
		fmt.Fprintln(rc.Out, "No tests match the given filters")
	}

	backend := "Appium at " + rc.Config.AppiumURL
	if rc.Mock {
		backend = "demo app simulation"
	}
	fmt.Fprintf(rc.Out, "Running %d test(s) on %s (%s), %d worker(s)\n\n",
		len(selected), rc.Platform.DisplayName(), backend, rc.Config.Workers)
	logger.Info("Run starting: platform=%s workers=%d output=%s", rc.Platform, rc.Config.Workers, rc.OutputDir)

	console := report.NewConsole(rc.Out, len(selected), rc.Verbose)
	runner := executor.New(sessionFactory(rc), executor.RunnerConfig{
		SuiteName: "pom-runner",
		RunID:     report.NewRunID(),
		Platform:  rc.Platform,
		Workers:   rc.Config.Workers,
		OutputDir: rc.OutputDir,
		Artifacts: rc.Artifacts,
		Registry:  registry,
		PageOptions: pom.Options{
			WaitTimeout:  rc.Config.WaitTimeout,
			PollInterval: rc.Config.PollInterval,
		},
		Filter: rc.Filter,
		OnTestStart: func(worker int, tc executor.Test) {
			console.TestStarted(worker, tc.Name)
		},
		OnTestEnd: console.TestFinished,
	})

	result, err := runner.Run(ctx, tests)
	if err != nil {
		return nil, err
	}

	console.PrintSummary(result)

	written, err := report.Write(rc.OutputDir, result, report.AllFormats())
	if err != nil {
		logger.Error("Failed to write reports: %v", err)
		fmt.Fprintf(rc.Out, "Warning: failed to write reports: %v\n", err)
	}
	if len(written) > 0 {
		fmt.Fprintln(rc.Out, "\nReports:")
		for _, p := range written {
			fmt.Fprintf(rc.Out, "  %s\n", p)
		}
	}
	logger.Info("Run finished: %d passed, %d failed, %d errored, %d skipped",
		result.PassedTests, result.FailedTests, result.ErroredTests, result.SkippedTests)
	return result, nil
}
