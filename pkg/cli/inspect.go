package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/driver/appium"
	"github.com/devicelab-dev/pom-runner/pkg/pages"
	"github.com/devicelab-dev/pom-runner/pkg/suites"
)

var listCommand = &cli.Command{
	Name:   "list",
	Usage:  "List the tests that would run",
	Flags:  filterFlags,
	Action: runList,
}

var pagesCommand = &cli.Command{
	Name:  "pages",
	Usage: "Print the page-object registry for the platform",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Print every platform",
		},
	},
	Action: runPages,
}

var capsCommand = &cli.Command{
	Name:   "caps",
	Usage:  "Print the session capabilities sent to Appium",
	Action: runCaps,
}

func runList(c *cli.Context) error {
	platform, err := platformFromContext(c)
	if err != nil {
		return err
	}
	filter, err := filterFromContext(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	selected := filter.Select(suites.All())
	for _, tc := range selected {
		line := tc.Name
		if len(tc.Tags) > 0 {
			line += " [" + strings.Join(tc.Tags, ", ") + "]"
		}
		if !tc.RunsOn(platform) {
			line += fmt.Sprintf(" (skipped on %s)", platform.DisplayName())
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d test(s)\n", len(selected))
	return nil
}

func runPages(c *cli.Context) error {
	platform, err := platformFromContext(c)
	if err != nil {
		return err
	}

	registry := pages.Registry()
	platforms := []core.Platform{platform}
	if c.Bool("all") {
		platforms = registry.Platforms()
	}

	w := c.App.Writer
	for _, p := range platforms {
		fmt.Fprintf(w, "%s:\n", p.DisplayName())
		for _, e := range registry.Entries(p) {
			fmt.Fprintf(w, "  %-40s -> %s\n", e.Contract, e.Impl)
		}
	}
	if err := registry.CheckParity(); err != nil {
		fmt.Fprintf(w, "\nWarning: %v\n", err)
	}
	return nil
}

func runCaps(c *cli.Context) error {
	platform, err := platformFromContext(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	caps, err := appium.CapabilitiesFor(platform, cfg)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(caps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal capabilities: %w", err)
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
