// Package cli provides the command-line interface for pom-runner.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pom-runner/pkg/config"
	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/logger"
	"github.com/devicelab-dev/pom-runner/pkg/report"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Platform to run on (android, ios)",
		Value:   "android",
		EnvVars: []string{"POM_PLATFORM"},
	},
	&cli.StringFlag{
		Name:    "appium-url",
		Usage:   "Appium server URL (overrides config.yaml)",
		EnvVars: []string{"APPIUM_URL"},
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config.yaml (default: ./config.yaml if present)",
		EnvVars: []string{"POM_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging to stderr",
		EnvVars: []string{"POM_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write the debug log to this file",
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "pom-runner",
		Usage:   "Page-object UI tests for Android and iOS over Appium",
		Version: Version,
		Description: `pom-runner runs page-object tests against the native demo app through an
Appium server. Each worker opens its own session; page objects are
resolved per platform from a shared registry.

Examples:
  pom-runner test
  pom-runner --platform ios test --workers 2
  pom-runner test --run 'Log in' --include-tags smoke
  pom-runner test --mock
  pom-runner --platform ios caps`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				report.SetColorEnabled(false)
			}
			return nil
		},
		Commands: []*cli.Command{
			testCommand,
			listCommand,
			pagesCommand,
			capsCommand,
			reportCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// platformFromContext parses the global --platform flag.
func platformFromContext(c *cli.Context) (core.Platform, error) {
	return core.ParsePlatform(c.String("platform"))
}

// loadConfig loads the workspace config and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err == nil {
			cfg, err = config.LoadFromDir(wd)
		}
	}
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("failed to load config").WithCause(err)
	}

	if url := c.String("appium-url"); url != "" {
		cfg.AppiumURL = url
	}
	return cfg, nil
}

// setupLogging routes the global logger according to --verbose and
// --log-file. The returned func closes the log file.
func setupLogging(c *cli.Context, defaultPath string) func() {
	logPath := c.String("log-file")
	if logPath == "" {
		logPath = defaultPath
	}
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
			if err := logger.Init(logPath); err != nil {
				fmt.Fprintf(c.App.ErrWriter, "Warning: failed to initialize logger: %v\n", err)
			}
		}
	}
	if c.Bool("verbose") {
		logger.SetOutput(io.MultiWriter(logger.GetWriter(), c.App.ErrWriter))
		_ = logger.SetLevel("debug")
	}
	return logger.Close
}
