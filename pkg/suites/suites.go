// Package suites collects every test the runner knows about.
package suites

import (
	"github.com/devicelab-dev/pom-runner/pkg/executor"
	"github.com/devicelab-dev/pom-runner/pkg/suites/login"
)

// All returns every registered test in run order.
func All() []executor.Test {
	var all []executor.Test
	all = append(all, login.Tests()...)
	return all
}
