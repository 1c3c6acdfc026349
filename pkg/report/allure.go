package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/logger"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Attachments   []AllureAttachment  `json:"attachments"`
}

// AllureAttachment represents a file attachment.
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

// GenerateAllure writes Allure result files into <reportDir>/allure-results/.
// Attachments are copied next to the results since Allure expects a flat
// directory.
func GenerateAllure(reportDir string, suite *core.SuiteResult) error {
	allureDir := filepath.Join(reportDir, AllureDir)
	if err := os.MkdirAll(allureDir, 0o755); err != nil {
		return fmt.Errorf("create allure-results dir: %w", err)
	}

	for i := range suite.Tests {
		result := buildAllureResult(i, &suite.Tests[i], suite)

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal allure result for %s: %w", result.Name, err)
		}

		resultPath := filepath.Join(allureDir, result.UUID+"-result.json")
		if err := os.WriteFile(resultPath, data, 0o644); err != nil {
			return fmt.Errorf("write allure result %s: %w", result.Name, err)
		}
		copyAllureAttachments(reportDir, allureDir, suite.Tests[i].Attachments)
	}

	if err := writeAllureCategories(allureDir); err != nil {
		return err
	}
	return writeAllureEnvironment(allureDir, suite)
}

// buildAllureResult builds an AllureResult from the test at index. The
// uuid is derived from the run id and the test's position so regenerating
// a report overwrites the same result files.
func buildAllureResult(index int, t *core.TestResult, suite *core.SuiteResult) AllureResult {
	startMs := t.StartTime.UnixMilli()
	stopMs := startMs + t.Duration.Milliseconds()

	labels := []AllureLabel{
		{Name: "suite", Value: suite.Name},
		{Name: "parentSuite", Value: suite.Platform.DisplayName()},
		{Name: "framework", Value: runnerName},
		{Name: "thread", Value: fmt.Sprintf("worker-%d", t.Worker)},
		{Name: "severity", Value: "normal"},
	}
	if t.Session != nil && t.Session.DeviceName != "" {
		labels = append(labels, AllureLabel{Name: "host", Value: t.Session.DeviceName})
	}
	for _, tag := range t.Tags {
		labels = append(labels, AllureLabel{Name: "tag", Value: tag})
	}

	var details AllureStatusDetails
	switch {
	case len(t.Errors) > 0:
		details.Message = firstLine(t.Errors[0])
		details.Trace = strings.Join(t.Errors, "\n")
	case t.SkipReason != "":
		details.Message = t.SkipReason
	}

	attachments := make([]AllureAttachment, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		attachments = append(attachments, AllureAttachment{
			Name:   a.Name,
			Source: filepath.Base(a.Path),
			Type:   a.ContentType,
		})
	}

	historyID := fnv32aHash(t.Name + ":" + t.Platform.String())
	return AllureResult{
		UUID:          resultUUID(suite.RunID, index, t),
		HistoryID:     historyID,
		FullName:      fmt.Sprintf("%s.%s", t.Platform, t.Name),
		Name:          t.Name,
		Description:   t.Description,
		Status:        mapAllureStatus(t.Status),
		Stage:         "finished",
		Start:         startMs,
		Stop:          stopMs,
		Labels:        labels,
		StatusDetails: details,
		Attachments:   attachments,
	}
}

// copyAllureAttachments copies artifact files into allure-results/ flat.
func copyAllureAttachments(reportDir, allureDir string, attachments []core.Attachment) {
	for _, a := range attachments {
		if a.Path == "" {
			continue
		}
		src := filepath.Join(reportDir, a.Path)
		dst := filepath.Join(allureDir, filepath.Base(a.Path))
		copyFile(src, dst)
	}
}

// copyFile copies a single file from src to dst. Missing sources are
// ignored; the report still renders without them.
func copyFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		logger.Warn("failed to copy %s to %s: %v", src, dst, err)
	}
}

// mapAllureStatus maps a test status to Allure's vocabulary. Allure calls
// unexpected errors "broken".
func resultUUID(runID string, index int, t *core.TestResult) string {
	key := fmt.Sprintf("%s/%d/%s/%s", runID, index, t.Platform, t.Name)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func mapAllureStatus(s core.TestStatus) string {
	switch s {
	case core.StatusPassed:
		return "passed"
	case core.StatusFailed:
		return "failed"
	case core.StatusErrored:
		return "broken"
	case core.StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// writeAllureCategories writes categories.json for failure categorization.
func writeAllureCategories(allureDir string) error {
	categories := []AllureCategory{
		{Name: "Element Not Found", MatchedStatuses: []string{"failed", "broken"}, MessageRegex: "(?i).*element not found.*"},
		{Name: "Element Not Visible", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*not visible.*|.*not displayed.*"},
		{Name: "Element Not Clickable", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*not clickable.*"},
		{Name: "Timeout", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*timeout.*|.*timed out.*"},
		{Name: "Assertion Failed", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*not equal.*|.*should.*"},
		{Name: "Session Failed", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*driver setup failed.*|.*initialization failed.*"},
		{Name: "Page Object Error", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*page.*|.*implementation registered.*"},
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	path := filepath.Join(allureDir, "categories.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}
	return nil
}

// writeAllureEnvironment writes environment.properties with run metadata.
func writeAllureEnvironment(allureDir string, suite *core.SuiteResult) error {
	var b strings.Builder
	b.WriteString("framework=" + runnerName + "\n")
	b.WriteString(fmt.Sprintf("platform=%s\n", suite.Platform))
	if suite.RunID != "" {
		b.WriteString(fmt.Sprintf("run.id=%s\n", suite.RunID))
	}
	for _, t := range suite.Tests {
		if t.Session == nil {
			continue
		}
		if t.Session.DeviceName != "" {
			b.WriteString(fmt.Sprintf("device.name=%s\n", t.Session.DeviceName))
		}
		if t.Session.OSVersion != "" {
			b.WriteString(fmt.Sprintf("device.osVersion=%s\n", t.Session.OSVersion))
		}
		if t.Session.AppID != "" {
			b.WriteString(fmt.Sprintf("app.id=%s\n", t.Session.AppID))
		}
		break
	}

	path := filepath.Join(allureDir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}
