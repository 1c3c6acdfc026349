package core

import "testing"

func TestTestStatus_String(t *testing.T) {
	tests := []struct {
		status   TestStatus
		expected string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusFailed, "failed"},
		{StatusErrored, "errored"},
		{StatusSkipped, "skipped"},
		{TestStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("TestStatus(%d).String() = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestTestStatus_IsTerminal(t *testing.T) {
	terminalStatuses := []TestStatus{StatusPassed, StatusFailed, StatusErrored, StatusSkipped}
	nonTerminalStatuses := []TestStatus{StatusPending, StatusRunning}

	for _, s := range terminalStatuses {
		if !s.IsTerminal() {
			t.Errorf("TestStatus(%s).IsTerminal() = false, want true", s)
		}
	}

	for _, s := range nonTerminalStatuses {
		if s.IsTerminal() {
			t.Errorf("TestStatus(%s).IsTerminal() = true, want false", s)
		}
	}
}

func TestTestStatus_IsSuccess(t *testing.T) {
	successStatuses := []TestStatus{StatusPassed, StatusSkipped}
	failureStatuses := []TestStatus{StatusPending, StatusRunning, StatusFailed, StatusErrored}

	for _, s := range successStatuses {
		if !s.IsSuccess() {
			t.Errorf("TestStatus(%s).IsSuccess() = false, want true", s)
		}
	}

	for _, s := range failureStatuses {
		if s.IsSuccess() {
			t.Errorf("TestStatus(%s).IsSuccess() = true, want false", s)
		}
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryAssertion, "assertion"},
		{ErrCategoryTimeout, "timeout"},
		{ErrCategoryConnection, "connection"},
		{ErrCategoryApp, "app"},
		{ErrCategoryConfig, "config"},
		{ErrCategoryPage, "page"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}

func TestTestStatus_TextRoundTrip(t *testing.T) {
	for s := StatusPending; s <= StatusSkipped; s++ {
		text, _ := s.MarshalText()
		var got TestStatus
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if got != s {
			t.Errorf("round trip %v = %v", s, got)
		}
	}
	var s TestStatus
	if err := s.UnmarshalText([]byte("exploded")); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestErrorCategory_UnmarshalText(t *testing.T) {
	var c ErrorCategory
	if err := c.UnmarshalText([]byte("connection")); err != nil || c != ErrCategoryConnection {
		t.Errorf("UnmarshalText(connection) = %v, %v", c, err)
	}
	if err := c.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown category")
	}
}
