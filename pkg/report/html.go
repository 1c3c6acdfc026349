package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath  string // Path to write the HTML file
	EmbedAssets bool   // Embed screenshots as base64 (makes file larger but portable)
	Title       string // Report title (default: "Test Report")
	ReportDir   string // Directory attachment paths are relative to
}

// GenerateHTML renders suite as a single HTML page.
func GenerateHTML(suite *core.SuiteResult, cfg HTMLConfig) error {
	if cfg.Title == "" {
		cfg.Title = "Test Report"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(cfg.ReportDir, HTMLFile)
	}

	html, err := renderHTML(buildHTMLData(suite, cfg))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title         string
	GeneratedAt   string
	Suite         *core.SuiteResult
	Tests         []TestHTMLData
	TotalDuration string
	PassRate      float64
}

// TestHTMLData contains a test result formatted for HTML.
type TestHTMLData struct {
	core.TestResult
	StatusClass string
	DurationStr string
	DurationPct float64
	Screenshot  string // data URI or relative path
}

func buildHTMLData(suite *core.SuiteResult, cfg HTMLConfig) HTMLData {
	var maxDuration time.Duration
	for _, t := range suite.Tests {
		if t.Duration > maxDuration {
			maxDuration = t.Duration
		}
	}

	tests := make([]TestHTMLData, len(suite.Tests))
	for i, t := range suite.Tests {
		td := TestHTMLData{
			TestResult:  t,
			StatusClass: t.Status.String(),
			DurationStr: formatDuration(t.Duration),
		}
		if maxDuration > 0 {
			td.DurationPct = float64(t.Duration) / float64(maxDuration) * 100
		}
		for _, a := range t.Attachments {
			if a.Name != core.AttachmentScreenshot {
				continue
			}
			td.Screenshot = filepath.ToSlash(a.Path)
			if cfg.EmbedAssets {
				if embedded := loadAsBase64(filepath.Join(cfg.ReportDir, a.Path)); embedded != "" {
					td.Screenshot = embedded
				}
			}
		}
		tests[i] = td
	}

	var passRate float64
	if suite.TotalTests > 0 {
		passRate = float64(suite.PassedTests) / float64(suite.TotalTests) * 100
	}

	return HTMLData{
		Title:         cfg.Title,
		GeneratedAt:   time.Now().Format("2006-01-02 15:04:05"),
		Suite:         suite,
		Tests:         tests,
		TotalDuration: formatDuration(suite.Duration),
		PassRate:      passRate,
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func loadAsBase64(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := "image/png"
	if ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"join": strings.Join,
		// html/template rejects data: URIs in src unless marked safe
		"imgsrc": func(s string) template.URL { return template.URL(s) },
	}).Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-primary: #000000;
            --text-secondary: rgb(75, 85, 99);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --failed: #ef4444;
            --errored: #f97316;
            --skipped: #eab308;
            --accent: #06b6d4;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }
        .header {
            background: var(--bg-secondary);
            border-bottom: 1px solid var(--border-color);
            padding: 16px 24px;
        }
        .header h1 { font-size: 16px; font-weight: 500; }
        .header .sub { font-size: 12px; color: var(--text-secondary); }
        .platform-badge {
            display: inline-block;
            padding: 2px 10px;
            background: var(--accent);
            color: white;
            border-radius: 6px;
            font-size: 12px;
        }
        .summary { display: flex; gap: 24px; padding: 16px 24px; }
        .summary div { font-size: 13px; color: var(--text-secondary); }
        .summary b { display: block; font-size: 20px; color: var(--text-primary); }
        table { width: 100%; border-collapse: collapse; font-size: 13px; }
        th, td { text-align: left; padding: 8px 24px; border-bottom: 1px solid var(--border-color); vertical-align: top; }
        .status { font-weight: 600; text-transform: uppercase; font-size: 11px; }
        .passed { color: var(--passed); }
        .failed { color: var(--failed); }
        .errored { color: var(--errored); }
        .skipped { color: var(--skipped); }
        .bar { height: 4px; background: var(--accent); border-radius: 2px; }
        pre { white-space: pre-wrap; font-size: 12px; color: var(--failed); }
        img.shot { max-width: 180px; border: 1px solid var(--border-color); margin-top: 6px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}} <span class="platform-badge">{{.Suite.Platform.DisplayName}}</span></h1>
        <div class="sub">Run {{.Suite.RunID}} &middot; generated {{.GeneratedAt}}</div>
    </div>
    <div class="summary">
        <div><b>{{.Suite.TotalTests}}</b>Total</div>
        <div><b class="passed">{{.Suite.PassedTests}}</b>Passed</div>
        <div><b class="failed">{{.Suite.FailedTests}}</b>Failed</div>
        <div><b class="errored">{{.Suite.ErroredTests}}</b>Errored</div>
        <div><b class="skipped">{{.Suite.SkippedTests}}</b>Skipped</div>
        <div><b>{{printf "%.0f" .PassRate}}%</b>Pass rate</div>
        <div><b>{{.TotalDuration}}</b>Duration</div>
    </div>
    <table>
        <thead><tr><th>Status</th><th>Test</th><th>Worker</th><th>Duration</th></tr></thead>
        <tbody>
        {{range .Tests}}
        <tr>
            <td class="status {{.StatusClass}}">{{.Status}}</td>
            <td>
                <div>{{.Name}}</div>
                {{if .Description}}<div class="sub">{{.Description}}</div>{{end}}
                {{if .SkipReason}}<div class="skipped">{{.SkipReason}}</div>{{end}}
                {{if .Errors}}<pre>{{join .Errors "\n"}}</pre>{{end}}
                {{if .Screenshot}}<img class="shot" src="{{imgsrc .Screenshot}}" alt="screenshot">{{end}}
            </td>
            <td>{{.Worker}}</td>
            <td>{{.DurationStr}}<div class="bar" style="width: {{printf "%.0f" .DurationPct}}%"></div></td>
        </tr>
        {{end}}
        </tbody>
    </table>
</body>
</html>
`
