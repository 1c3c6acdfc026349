package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/driver/mock"
	"github.com/devicelab-dev/pom-runner/pkg/page"
	"github.com/devicelab-dev/pom-runner/pkg/pom"
)

type titlePage interface {
	Title() (string, error)
}

var titleLocator = core.ByAccessibilityID("title")

type mockTitlePage struct{ *page.Base }

func (p *mockTitlePage) Title() (string, error) { return p.GetText(titleLocator) }

func testRegistry() *pom.Registry {
	r := pom.NewRegistry()
	for _, p := range core.Platforms() {
		pom.MustRegister[titlePage](r, p, func(b *page.Base) *mockTitlePage { return &mockTitlePage{Base: b} })
	}
	r.Seal()
	return r
}

// sessionRecorder hands out mock drivers and remembers them.
type sessionRecorder struct {
	mu      sync.Mutex
	drivers []*mock.Driver
	err     error
}

func (s *sessionRecorder) factory(p core.Platform) (core.Driver, error) {
	if s.err != nil {
		return nil, s.err
	}
	d := mock.New(mock.Config{Platform: p})
	d.Add(titleLocator, &mock.Element{Text: "Home"})
	s.mu.Lock()
	s.drivers = append(s.drivers, d)
	s.mu.Unlock()
	return d, nil
}

func testConfig() RunnerConfig {
	return RunnerConfig{
		SuiteName:   "test",
		Platform:    core.PlatformAndroid,
		Registry:    testRegistry(),
		PageOptions: pom.Options{WaitTimeout: 50 * time.Millisecond, PollInterval: 5 * time.Millisecond},
		Artifacts:   core.DefaultArtifactConfig(),
	}
}

func passingTest(name string) Test {
	return Test{Name: name, Run: func(t *T) {
		title, err := Page[titlePage](t).Title()
		t.Check(err)
		assert.Equal(t, "Home", title)
	}}
}

func TestRunner_Run_AllPassed(t *testing.T) {
	rec := &sessionRecorder{}
	r := New(rec.factory, testConfig())

	result, err := r.Run(context.Background(), []Test{passingTest("a"), passingTest("b")})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalTests)
	assert.Equal(t, 2, result.PassedTests)
	assert.True(t, result.Success())
	assert.Equal(t, core.PlatformAndroid, result.Platform)

	require.Len(t, rec.drivers, 2)
	for _, d := range rec.drivers {
		assert.Equal(t, 1, d.Quits(), "every session must be quit")
	}
	require.NotNil(t, result.Tests[0].Session)
	assert.Equal(t, "mock-session", result.Tests[0].Session.SessionID)
}

func TestRunner_Run_Failure(t *testing.T) {
	rec := &sessionRecorder{}
	r := New(rec.factory, testConfig())

	failing := Test{Name: "wrong title", Run: func(t *T) {
		title, err := Page[titlePage](t).Title()
		t.Check(err)
		assert.Equal(t, "Login", title)
	}}
	result, err := r.Run(context.Background(), []Test{failing, passingTest("ok")})
	require.NoError(t, err)

	assert.Equal(t, core.StatusFailed, result.Tests[0].Status)
	assert.Equal(t, core.ErrCategoryAssertion, result.Tests[0].Category)
	assert.Equal(t, core.StatusPassed, result.Tests[1].Status)
	assert.False(t, result.Success())
	assert.Equal(t, 1, result.FailedTests)
}

func TestRunner_Run_SetupFailure(t *testing.T) {
	rec := &sessionRecorder{err: core.ErrSessionFailed.WithCause(errors.New("connection refused"))}
	r := New(rec.factory, testConfig())

	ran := false
	result, err := r.Run(context.Background(), []Test{{Name: "x", Run: func(*T) { ran = true }}})
	require.NoError(t, err)

	assert.False(t, ran)
	tr := result.Tests[0]
	assert.Equal(t, core.StatusErrored, tr.Status)
	assert.Equal(t, core.ErrCategoryConnection, tr.Category)
	require.Len(t, tr.Errors, 1)
	assert.Contains(t, tr.Errors[0], "driver setup failed")
	assert.Equal(t, 1, result.ErroredTests)
}

func TestRunner_Run_QuitsAfterPanic(t *testing.T) {
	rec := &sessionRecorder{}
	r := New(rec.factory, testConfig())

	result, err := r.Run(context.Background(), []Test{{Name: "panics", Run: func(*T) { panic("boom") }}})
	require.NoError(t, err)

	assert.Equal(t, core.StatusErrored, result.Tests[0].Status)
	require.Len(t, rec.drivers, 1)
	assert.Equal(t, 1, rec.drivers[0].Quits())
}

func TestRunner_Run_PlatformSkip(t *testing.T) {
	rec := &sessionRecorder{}
	r := New(rec.factory, testConfig())

	iosOnly := passingTest("ios only")
	iosOnly.Platforms = []core.Platform{core.PlatformIOS}
	result, err := r.Run(context.Background(), []Test{iosOnly})
	require.NoError(t, err)

	assert.Equal(t, core.StatusSkipped, result.Tests[0].Status)
	assert.Equal(t, "not supported on Android", result.Tests[0].SkipReason)
	assert.Empty(t, rec.drivers, "skipped tests must not open a session")
	assert.False(t, result.Success())
}

func TestRunner_Run_Filter(t *testing.T) {
	cfg := testConfig()
	f, err := NewFilter("^keep", nil, nil)
	require.NoError(t, err)
	cfg.Filter = f

	result, err := New((&sessionRecorder{}).factory, cfg).Run(context.Background(),
		[]Test{passingTest("keep me"), passingTest("drop me")})
	require.NoError(t, err)

	require.Len(t, result.Tests, 1)
	assert.Equal(t, "keep me", result.Tests[0].Name)
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &sessionRecorder{}
	result, err := New(rec.factory, testConfig()).Run(ctx, []Test{passingTest("a")})
	require.NoError(t, err)

	assert.Equal(t, core.StatusSkipped, result.Tests[0].Status)
	assert.Equal(t, "run cancelled", result.Tests[0].SkipReason)
	assert.Empty(t, rec.drivers)
}

func TestRunner_Run_Parallel(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 3

	var mu sync.Mutex
	workers := map[int]bool{}
	var ended []string
	cfg.OnTestStart = func(worker int, _ Test) {
		mu.Lock()
		workers[worker] = true
		mu.Unlock()
	}
	cfg.OnTestEnd = func(r core.TestResult) {
		mu.Lock()
		ended = append(ended, r.Name)
		mu.Unlock()
	}

	var tests []Test
	for _, name := range []string{"t1", "t2", "t3", "t4", "t5", "t6"} {
		tc := passingTest(name)
		run := tc.Run
		tc.Run = func(t *T) {
			time.Sleep(10 * time.Millisecond)
			run(t)
		}
		tests = append(tests, tc)
	}

	rec := &sessionRecorder{}
	result, err := New(rec.factory, cfg).Run(context.Background(), tests)
	require.NoError(t, err)

	assert.Equal(t, 6, result.PassedTests)
	assert.Len(t, ended, 6)
	assert.Len(t, rec.drivers, 6)
	for i, tr := range result.Tests {
		assert.Equal(t, tests[i].Name, tr.Name, "results keep input order")
		assert.True(t, tr.Worker >= 1 && tr.Worker <= 3)
	}
	assert.LessOrEqual(t, len(workers), 3)
}

func TestRunner_Run_CapturesScreenshotOnFailure(t *testing.T) {
	cfg := testConfig()
	cfg.OutputDir = t.TempDir()

	failing := Test{Name: "Log in", Run: func(t *T) { t.Errorf("expected error message") }}
	result, err := New((&sessionRecorder{}).factory, cfg).Run(context.Background(), []Test{failing, passingTest("ok")})
	require.NoError(t, err)

	require.Len(t, result.Tests[0].Attachments, 1)
	att := result.Tests[0].Attachments[0]
	assert.Equal(t, core.AttachmentScreenshot, att.Name)
	assert.Equal(t, filepath.Join("artifacts", "001-Log_in-android-screenshot.png"), att.Path)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, att.Path))
	assert.NoError(t, err)

	assert.Empty(t, result.Tests[1].Attachments)
}

func TestRunner_Run_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Platform = "windows"
	_, err := New((&sessionRecorder{}).factory, cfg).Run(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedPlatform)

	_, err = New(nil, testConfig()).Run(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestArtifactBase(t *testing.T) {
	assert.Equal(t, "001-Log_in-ios", artifactBase(0, "Log in", core.PlatformIOS))
	assert.Equal(t, "012-test-android", artifactBase(11, "///", core.PlatformAndroid))
}

func TestRunner_Run_ArtifactsDoNotCollide(t *testing.T) {
	cfg := testConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Workers = 2

	fail := func(t *T) { t.Errorf("expected error message") }
	result, err := New((&sessionRecorder{}).factory, cfg).Run(context.Background(),
		[]Test{{Name: "Log in", Run: fail}, {Name: "Log/in", Run: fail}})
	require.NoError(t, err)

	require.Len(t, result.Tests[0].Attachments, 1)
	require.Len(t, result.Tests[1].Attachments, 1)
	assert.NotEqual(t, result.Tests[0].Attachments[0].Path, result.Tests[1].Attachments[0].Path)

	entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, "artifacts"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunner_Run_RecordsDuration(t *testing.T) {
	slow := Test{Name: "slow", Run: func(*T) { time.Sleep(20 * time.Millisecond) }}
	result, err := New((&sessionRecorder{}).factory, testConfig()).Run(context.Background(), []Test{slow})
	require.NoError(t, err)

	require.Len(t, result.Tests, 1)
	assert.GreaterOrEqual(t, result.Tests[0].Duration, 20*time.Millisecond)
}
