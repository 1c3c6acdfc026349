// Package report writes the outcome of a run in the formats CI systems
// and people read:
//   - report.json: the full core.SuiteResult (source for the other formats)
//   - junit.xml: JUnit XML for CI test tabs
//   - report.html: a self-contained HTML page
//   - allure-results/: Allure result files
//
// Console output while tests run is handled by Console.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

// File names inside the output directory.
const (
	JSONFile   = "report.json"
	JUnitFile  = "junit.xml"
	HTMLFile   = "report.html"
	AllureDir  = "allure-results"
	runnerName = "pom-runner"
)

// NewRunID returns a unique id for a run.
func NewRunID() string {
	return uuid.NewString()
}

// Formats selects which reports Write produces. report.json is always
// written.
type Formats struct {
	JUnit  bool
	HTML   bool
	Allure bool
}

// AllFormats enables every report format.
func AllFormats() Formats {
	return Formats{JUnit: true, HTML: true, Allure: true}
}

// Write writes the selected reports into outputDir and returns the paths
// written.
func Write(outputDir string, suite *core.SuiteResult, formats Formats) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	jsonPath := filepath.Join(outputDir, JSONFile)
	if err := WriteJSON(jsonPath, suite); err != nil {
		return nil, err
	}
	written := []string{jsonPath}

	if formats.JUnit {
		p := filepath.Join(outputDir, JUnitFile)
		if err := WriteJUnit(p, suite); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if formats.HTML {
		p := filepath.Join(outputDir, HTMLFile)
		if err := GenerateHTML(suite, HTMLConfig{OutputPath: p, ReportDir: outputDir, EmbedAssets: true}); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if formats.Allure {
		p := filepath.Join(outputDir, AllureDir)
		if err := GenerateAllure(outputDir, suite); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

// WriteJSON writes suite to path atomically.
func WriteJSON(path string, suite *core.SuiteResult) error {
	data, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return atomicWrite(path, data)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*core.SuiteResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var suite core.SuiteResult
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &suite, nil
}

// atomicWrite writes via a temp file and rename so readers never see a
// partial file.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
