package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// artifactBase returns a file name prefix for the test at index. The index
// keeps names apart when two test names sanitize to the same string.
func artifactBase(index int, name string, p core.Platform) string {
	clean := strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
	if clean == "" {
		clean = "test"
	}
	return fmt.Sprintf("%03d-%s-%s", index+1, clean, p)
}

// captureArtifacts writes the screenshot and/or page source for a finished
// test. Capture failures are logged, never fatal.
func (r *Runner) captureArtifacts(driver core.Driver, index int, tc Test, status core.TestStatus, log *logrus.Entry) []core.Attachment {
	cfg := r.config.Artifacts
	if r.config.OutputDir == "" || !cfg.ShouldCapture(status) {
		return nil
	}

	dir := filepath.Join(r.config.OutputDir, "artifacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warnf("create artifacts dir: %v", err)
		return nil
	}
	base := artifactBase(index, tc.Name, r.config.Platform)

	var attachments []core.Attachment
	if cfg.Screenshot {
		if data, err := driver.Screenshot(); err != nil {
			log.Warnf("screenshot: %v", err)
		} else if rel, err := writeArtifact(r.config.OutputDir, base+"-screenshot.png", data); err != nil {
			log.Warnf("write screenshot: %v", err)
		} else {
			attachments = append(attachments, core.NewScreenshotAttachment(rel, data))
		}
	}
	if cfg.Source {
		if src, err := driver.Source(); err != nil {
			log.Warnf("page source: %v", err)
		} else if rel, err := writeArtifact(r.config.OutputDir, base+"-source.xml", []byte(src)); err != nil {
			log.Warnf("write page source: %v", err)
		} else {
			attachments = append(attachments, core.NewSourceAttachment(rel, []byte(src)))
		}
	}
	return attachments
}

func writeArtifact(outputDir, name string, data []byte) (string, error) {
	rel := filepath.Join("artifacts", name)
	if err := os.WriteFile(filepath.Join(outputDir, rel), data, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}
