package cli

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pom-runner/pkg/report"
)

var reportCommand = &cli.Command{
	Name:      "report",
	Usage:     "Regenerate JUnit, HTML and Allure reports from report.json",
	ArgsUsage: "<report-dir>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "junit", Value: true, Usage: "Write junit.xml"},
		&cli.BoolFlag{Name: "html", Value: true, Usage: "Write report.html"},
		&cli.BoolFlag{Name: "allure", Value: true, Usage: "Write allure-results/"},
	},
	Action: runReport,
}

func runReport(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one report directory")
	}
	dir := c.Args().First()

	suite, err := report.ReadJSON(filepath.Join(dir, report.JSONFile))
	if err != nil {
		return err
	}

	written, err := report.Write(dir, suite, report.Formats{
		JUnit:  c.Bool("junit"),
		HTML:   c.Bool("html"),
		Allure: c.Bool("allure"),
	})
	for _, p := range written {
		fmt.Fprintln(c.App.Writer, p)
	}
	return err
}
