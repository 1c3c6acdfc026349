package core

import "testing"

func TestSuiteResult_ComputeSummary(t *testing.T) {
	s := &SuiteResult{
		Tests: []TestResult{
			{Name: "a", Status: StatusPassed},
			{Name: "b", Status: StatusFailed},
			{Name: "c", Status: StatusErrored},
			{Name: "d", Status: StatusSkipped},
			{Name: "e", Status: StatusPassed},
		},
	}
	s.ComputeSummary()

	if s.TotalTests != 5 {
		t.Errorf("TotalTests = %d, want 5", s.TotalTests)
	}
	if s.PassedTests != 2 {
		t.Errorf("PassedTests = %d, want 2", s.PassedTests)
	}
	if s.FailedTests != 1 {
		t.Errorf("FailedTests = %d, want 1", s.FailedTests)
	}
	if s.ErroredTests != 1 {
		t.Errorf("ErroredTests = %d, want 1", s.ErroredTests)
	}
	if s.SkippedTests != 1 {
		t.Errorf("SkippedTests = %d, want 1", s.SkippedTests)
	}
	if got := len(s.Failures()); got != 2 {
		t.Errorf("len(Failures()) = %d, want 2", got)
	}
}

func TestSuiteResult_Success(t *testing.T) {
	tests := []struct {
		name     string
		statuses []TestStatus
		want     bool
	}{
		{"empty", nil, false},
		{"all passed", []TestStatus{StatusPassed, StatusPassed}, true},
		{"passed and skipped", []TestStatus{StatusPassed, StatusSkipped}, true},
		{"only skipped", []TestStatus{StatusSkipped}, false},
		{"one failed", []TestStatus{StatusPassed, StatusFailed}, false},
		{"one errored", []TestStatus{StatusErrored, StatusPassed}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SuiteResult{}
			for _, st := range tt.statuses {
				s.Tests = append(s.Tests, TestResult{Status: st})
			}
			if got := s.Success(); got != tt.want {
				t.Errorf("Success() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArtifactConfig_ShouldCapture(t *testing.T) {
	cfg := DefaultArtifactConfig()
	if !cfg.ShouldCapture(StatusFailed) || !cfg.ShouldCapture(StatusErrored) {
		t.Error("default config should capture on failure")
	}
	if cfg.ShouldCapture(StatusPassed) {
		t.Error("default config should not capture on success")
	}
	if cfg.ShouldCapture(StatusSkipped) {
		t.Error("skipped tests never capture")
	}
}
