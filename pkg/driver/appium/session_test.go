package appium

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

func TestNewSession_RequestPayload(t *testing.T) {
	fake := &fakeAppium{}
	handler, requests := httphelpers.RecordingHandler(fake.handler())

	firstBody := make(chan []byte, 1)
	go func() {
		info := <-requests
		firstBody <- info.Body
		for range requests {
		}
	}()

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		cfg := testConfig(server.URL)
		cfg.Capabilities = map[string]interface{}{"appium:language": "en"}

		d, err := NewSession(core.PlatformIOS, cfg)
		require.NoError(t, err)
		defer d.Quit()

		body := json.RawMessage(<-firstBody)
		m.In(t).For("new session request").Assert(body,
			m.JSONProperty("capabilities").Should(m.AllOf(
				m.JSONProperty("alwaysMatch").Should(m.AllOf(
					m.JSONProperty("platformName").Should(m.Equal("iOS")),
					m.JSONProperty("appium:automationName").Should(m.Equal("XCUITest")),
					m.JSONProperty("appium:bundleId").Should(m.Equal("org.reactjs.native.example.wdiodemoapp")),
					m.JSONProperty("appium:wdaLaunchTimeout").Should(m.JSONEqual(120000)),
					m.JSONProperty("appium:newCommandTimeout").Should(m.JSONEqual(3600)),
					m.JSONProperty("appium:language").Should(m.Equal("en")),
				)),
				m.JSONProperty("firstMatch").Should(m.JSONStrEqual(`[{}]`)),
			)),
		)
	})
}

func TestNewSession_ServerErrorStatus(t *testing.T) {
	for _, status := range []int{400, 500, 503} {
		httphelpers.WithServer(httphelpers.HandlerWithStatus(status), func(server *httptest.Server) {
			_, err := NewSession(core.PlatformAndroid, testConfig(server.URL))
			require.Error(t, err, "status %d", status)
			assert.True(t, errors.Is(err, core.ErrSessionFailed), "status %d: %v", status, err)
		})
	}
}

func TestNewSession_BrokenConnection(t *testing.T) {
	httphelpers.WithServer(httphelpers.BrokenConnectionHandler(), func(server *httptest.Server) {
		_, err := NewSession(core.PlatformAndroid, testConfig(server.URL))
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrSessionFailed), "got %v", err)
		assert.Equal(t, core.ErrCategoryConnection, core.CategoryOf(err))
	})
}
