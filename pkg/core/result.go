package core

import (
	"time"
)

// TestResult captures the complete outcome of executing a single test
type TestResult struct {
	// Identity
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Execution context
	Platform Platform     `json:"platform"`
	Worker   int          `json:"worker"`
	Session  *SessionInfo `json:"session,omitempty"`

	// Status
	Status   TestStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Output
	Errors     []string `json:"errors,omitempty"`
	SkipReason string   `json:"skipReason,omitempty"`
	Logs       []string `json:"logs,omitempty"`

	// Debug Artifacts
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Failed reports whether the test failed or errored.
func (r *TestResult) Failed() bool {
	return r.Status == StatusFailed || r.Status == StatusErrored
}

// SuiteResult captures the complete outcome of executing multiple tests
type SuiteResult struct {
	// Identity
	Name     string   `json:"name"`
	RunID    string   `json:"runId"`
	Platform Platform `json:"platform"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"` // Wall clock, not the sum of test durations

	// Results
	Tests []TestResult `json:"tests"`

	// Summary
	TotalTests   int `json:"totalTests"`
	PassedTests  int `json:"passedTests"`
	FailedTests  int `json:"failedTests"`
	ErroredTests int `json:"erroredTests"`
	SkippedTests int `json:"skippedTests"`
}

// ComputeSummary calculates test counts from the Tests slice
func (s *SuiteResult) ComputeSummary() {
	s.TotalTests = len(s.Tests)
	s.PassedTests = 0
	s.FailedTests = 0
	s.ErroredTests = 0
	s.SkippedTests = 0

	for _, t := range s.Tests {
		switch t.Status {
		case StatusPassed:
			s.PassedTests++
		case StatusFailed:
			s.FailedTests++
		case StatusErrored:
			s.ErroredTests++
		case StatusSkipped:
			s.SkippedTests++
		}
	}
}

// Success returns true if no test failed or errored and at least one ran.
func (s *SuiteResult) Success() bool {
	ran := false
	for _, t := range s.Tests {
		if !t.Status.IsSuccess() {
			return false
		}
		if t.Status == StatusPassed {
			ran = true
		}
	}
	return ran
}

// Failures returns the tests that failed or errored, in run order.
func (s *SuiteResult) Failures() []TestResult {
	var out []TestResult
	for _, t := range s.Tests {
		if t.Failed() {
			out = append(out, t)
		}
	}
	return out
}
