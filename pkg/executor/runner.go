package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/logger"
	"github.com/devicelab-dev/pom-runner/pkg/pom"
)

// SessionFactory opens a new driver session for platform. It is called
// once per test, on the worker goroutine that runs it.
type SessionFactory func(p core.Platform) (core.Driver, error)

// RunnerConfig configures the test runner.
type RunnerConfig struct {
	SuiteName string
	RunID     string
	Platform  core.Platform
	Workers   int    // Concurrent sessions (<= 1 = sequential)
	OutputDir string // Artifact directory; empty disables capture

	Artifacts   core.ArtifactConfig
	Registry    *pom.Registry
	PageOptions pom.Options
	Filter      Filter

	// Live progress callbacks; may be called from several workers at once
	OnTestStart func(worker int, tc Test)
	OnTestEnd   func(result core.TestResult)
}

// Runner runs tests on a pool of workers, each test in its own session.
type Runner struct {
	config  RunnerConfig
	factory SessionFactory
}

// New creates a new Runner.
func New(factory SessionFactory, cfg RunnerConfig) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{config: cfg, factory: factory}
}

// Run executes the tests selected by the filter and returns the suite
// result. Per-test failures are reported in the result, not as an error.
func (r *Runner) Run(ctx context.Context, tests []Test) (*core.SuiteResult, error) {
	if !r.config.Platform.Valid() {
		return nil, core.ErrUnsupportedPlatform.WithMessagef("unsupported platform: %q", r.config.Platform)
	}
	if r.factory == nil {
		return nil, core.ErrInvalidConfig.WithMessage("no session factory configured")
	}
	if r.config.Registry == nil {
		return nil, core.ErrInvalidConfig.WithMessage("no page registry configured")
	}

	selected := r.config.Filter.Select(tests)
	logger.Info("running %d of %d tests on %s with %d worker(s)",
		len(selected), len(tests), r.config.Platform, r.config.Workers)

	suite := &core.SuiteResult{
		Name:      r.config.SuiteName,
		RunID:     r.config.RunID,
		Platform:  r.config.Platform,
		StartTime: time.Now(),
	}
	suite.Tests = r.runQueue(ctx, selected)
	suite.Duration = time.Since(suite.StartTime)
	suite.ComputeSummary()
	return suite, nil
}

// executeTest runs one test through setup, body and teardown. index is
// the test's position in the selected list.
func (r *Runner) executeTest(ctx context.Context, worker, index int, tc Test) (result core.TestResult) {
	platform := r.config.Platform
	result = core.TestResult{
		Name:        tc.Name,
		Description: tc.Description,
		Tags:        tc.Tags,
		Platform:    platform,
		Worker:      worker,
		StartTime:   time.Now(),
		Status:      core.StatusRunning,
	}
	log := logger.WithFields(logrus.Fields{"test": tc.Name, "worker": worker, "platform": platform.String()})

	if r.config.OnTestStart != nil {
		r.config.OnTestStart(worker, tc)
	}
	defer func() {
		result.Duration = time.Since(result.StartTime)
		if r.config.OnTestEnd != nil {
			r.config.OnTestEnd(result)
		}
	}()

	if !tc.RunsOn(platform) {
		result.Status = core.StatusSkipped
		result.SkipReason = fmt.Sprintf("not supported on %s", platform.DisplayName())
		return result
	}
	if err := ctx.Err(); err != nil {
		result.Status = core.StatusSkipped
		result.SkipReason = "run cancelled"
		return result
	}
	if tc.Run == nil {
		result.Status = core.StatusErrored
		result.Category = core.ErrCategoryConfig
		result.Errors = []string{"test has no Run function"}
		return result
	}

	// Setup
	driver, err := r.factory(platform)
	if err != nil {
		log.Errorf("driver setup failed: %v", err)
		result.Status = core.StatusErrored
		result.Category = core.CategoryOf(err)
		if result.Category == core.ErrCategoryNone {
			result.Category = core.ErrCategoryConnection
		}
		result.Errors = []string{fmt.Sprintf("driver setup failed: %v", err)}
		return result
	}
	if sd, ok := driver.(core.SessionDescriber); ok {
		info := sd.SessionInfo()
		result.Session = &info
	}
	pages := pom.NewManager(driver, platform, r.config.Registry, r.config.PageOptions)
	log.Debugf("session %s started", driver.SessionID())

	// Teardown always runs, even if the body panicked
	defer func() {
		pages.Reset()
		if err := driver.Quit(); err != nil {
			log.Warnf("quit session: %v", err)
		}
	}()

	t := newT(ctx, tc.Name, driver, pages, log)
	t.run(tc.Run)

	t.mu.Lock()
	result.Errors = append(result.Errors, t.errors...)
	result.Logs = t.logs
	result.SkipReason = t.skipReason
	result.Category = t.category
	t.mu.Unlock()
	result.Status = t.status()
	if result.Status.IsSuccess() {
		result.Category = core.ErrCategoryNone
	}

	result.Attachments = r.captureArtifacts(driver, index, tc, result.Status, log)
	return result
}
