// Package pages wires the demo app's page contracts to their platform
// implementations.
package pages

import (
	"sync"

	"github.com/devicelab-dev/pom-runner/pkg/core"
	"github.com/devicelab-dev/pom-runner/pkg/pages/android"
	"github.com/devicelab-dev/pom-runner/pkg/pages/common"
	"github.com/devicelab-dev/pom-runner/pkg/pages/ios"
	"github.com/devicelab-dev/pom-runner/pkg/pom"
)

var (
	registryOnce sync.Once
	registry     *pom.Registry
)

// Registry returns the sealed page registry, building it on first use.
func Registry() *pom.Registry {
	registryOnce.Do(func() {
		registry = Build()
		registry.Seal()
	})
	return registry
}

// Build returns a fresh, unsealed registry with every page registered.
// Tests use it to add fakes; everything else should call Registry.
func Build() *pom.Registry {
	r := pom.NewRegistry()

	pom.MustRegister[common.LoginPage](r, core.PlatformAndroid, android.NewLoginPage)
	pom.MustRegister[common.BottomNavigation](r, core.PlatformAndroid, android.NewHomePage)

	pom.MustRegister[common.LoginPage](r, core.PlatformIOS, ios.NewLoginPage)
	pom.MustRegister[common.BottomNavigation](r, core.PlatformIOS, ios.NewHomePage)

	return r
}
