package report

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

// JUnit XML schema, see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Errors     int                `xml:"errors,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Timestamp  string             `xml:"timestamp,attr,omitempty"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
	Error       *jUnitXMLFailure     `xml:"error,omitempty"`
	SystemOut   string               `xml:"system-out,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// WriteJUnit writes suite as JUnit XML.
func WriteJUnit(path string, suite *core.SuiteResult) error {
	data, err := marshalJUnit(suite)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

func marshalJUnit(suite *core.SuiteResult) ([]byte, error) {
	name := suite.Name
	if name == "" {
		name = runnerName
	}
	ts := jUnitXMLTestSuite{
		Name:     fmt.Sprintf("%s (%s)", name, suite.Platform.DisplayName()),
		Tests:    len(suite.Tests),
		Failures: suite.FailedTests,
		Errors:   suite.ErroredTests,
		Skipped:  suite.SkippedTests,
		Time:     jUnitDurationString(suite.Duration),
		Properties: []jUnitXMLProperty{
			{Name: "platform", Value: suite.Platform.String()},
			{Name: "runId", Value: suite.RunID},
		},
	}
	if !suite.StartTime.IsZero() {
		ts.Timestamp = suite.StartTime.UTC().Format(time.RFC3339)
	}

	for _, t := range suite.Tests {
		tc := jUnitXMLTestCase{
			Classname: fmt.Sprintf("%s.%s", name, suite.Platform),
			Name:      t.Name,
			Time:      jUnitDurationString(t.Duration),
			SystemOut: strings.Join(t.Logs, "\n"),
		}
		switch t.Status {
		case core.StatusSkipped:
			tc.SkipMessage = &jUnitXMLSkipMessage{Message: t.SkipReason}
		case core.StatusFailed:
			tc.Failure = failureElement(t)
		case core.StatusErrored:
			tc.Error = failureElement(t)
		}
		ts.TestCases = append(ts.TestCases, tc)
	}

	doc := jUnitXMLDocument{Suites: []jUnitXMLTestSuite{ts}}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal junit: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	return append(data, '\n'), nil
}

func failureElement(t core.TestResult) *jUnitXMLFailure {
	msg := ""
	if len(t.Errors) > 0 {
		msg = firstLine(t.Errors[0])
	}
	return &jUnitXMLFailure{
		Message:  msg,
		Type:     t.Category.String(),
		Contents: strings.Join(t.Errors, "\n"),
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
