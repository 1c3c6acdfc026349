package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

var (
	passedColor  = color.New(color.FgGreen)
	failedColor  = color.New(color.FgRed)
	erroredColor = color.New(color.FgYellow)
	skippedColor = color.New(color.Faint, color.FgBlue)
	dimColor     = color.New(color.Faint)
	boldColor    = color.New(color.Bold)
)

// SetColorEnabled turns ANSI colors on or off for all console output.
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

// Console prints live test progress. It is safe for use by several
// workers at once.
type Console struct {
	w       io.Writer
	verbose bool

	mu       sync.Mutex
	total    int
	finished int
}

// NewConsole creates a Console writing to w. In verbose mode test logs
// are printed after each test.
func NewConsole(w io.Writer, total int, verbose bool) *Console {
	return &Console{w: w, total: total, verbose: verbose}
}

// TestStarted prints the test header.
func (c *Console) TestStarted(worker int, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = dimColor.Fprintf(c.w, "  [worker %d] %s\n", worker, name)
}

// TestFinished prints the outcome line and any errors.
func (c *Console) TestFinished(r core.TestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished++

	progress := fmt.Sprintf("[%d/%d]", c.finished, c.total)
	duration := formatDuration(r.Duration)

	switch r.Status {
	case core.StatusPassed:
		_, _ = passedColor.Fprintf(c.w, "%s PASS: %s", progress, r.Name)
	case core.StatusFailed:
		_, _ = failedColor.Fprintf(c.w, "%s FAIL: %s", progress, r.Name)
	case core.StatusErrored:
		_, _ = erroredColor.Fprintf(c.w, "%s ERROR: %s", progress, r.Name)
	case core.StatusSkipped:
		if r.SkipReason != "" {
			_, _ = skippedColor.Fprintf(c.w, "%s SKIP: %s (%s)", progress, r.Name, r.SkipReason)
		} else {
			_, _ = skippedColor.Fprintf(c.w, "%s SKIP: %s", progress, r.Name)
		}
	default:
		fmt.Fprintf(c.w, "%s %s: %s", progress, strings.ToUpper(r.Status.String()), r.Name)
	}
	_, _ = dimColor.Fprintf(c.w, " %s\n", duration)

	for _, e := range r.Errors {
		for _, line := range strings.Split(strings.TrimSpace(e), "\n") {
			_, _ = erroredColor.Fprintf(c.w, "    %s\n", line)
		}
	}
	if c.verbose {
		for _, l := range r.Logs {
			_, _ = dimColor.Fprintf(c.w, "    LOG %s\n", l)
		}
	}
}

// PrintSummary prints totals and the list of failed tests.
func (c *Console) PrintSummary(s *core.SuiteResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.w)
	_, _ = boldColor.Fprintf(c.w, "%s on %s: ", plural(s.TotalTests, "test"), s.Platform.DisplayName())
	_, _ = passedColor.Fprintf(c.w, "%d passed", s.PassedTests)
	fmt.Fprint(c.w, ", ")
	_, _ = failedColor.Fprintf(c.w, "%d failed", s.FailedTests)
	fmt.Fprint(c.w, ", ")
	_, _ = erroredColor.Fprintf(c.w, "%d errored", s.ErroredTests)
	fmt.Fprint(c.w, ", ")
	_, _ = skippedColor.Fprintf(c.w, "%d skipped", s.SkippedTests)
	_, _ = dimColor.Fprintf(c.w, " (%s)\n", formatDuration(s.Duration))

	if s.Success() {
		_, _ = passedColor.Fprintln(c.w, "All tests passed")
		return
	}
	failures := s.Failures()
	if len(failures) == 0 {
		_, _ = skippedColor.Fprintln(c.w, "No tests ran")
		return
	}
	_, _ = failedColor.Fprintf(c.w, "FAILED TESTS (%d):\n", len(failures))
	for _, f := range failures {
		_, _ = failedColor.Fprintf(c.w, "  * %s [%s]\n", f.Name, f.Category)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
