package checks_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/checks"
	"digital.vasic.crossbrowser/pkg/env"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
	"digital.vasic.crossbrowser/pkg/registry"
	"digital.vasic.crossbrowser/pkg/session"
	"digital.vasic.crossbrowser/pkg/site"
)

// TestLive_Chrome runs the login scenarios on the real grid. It
// needs CROSSBROWSER_LIVE=1 and real BrowserStack credentials.
func TestLive_Chrome(t *testing.T) {
	if testing.Short() || os.Getenv("CROSSBROWSER_LIVE") != "1" {
		t.Skip("set CROSSBROWSER_LIVE=1 to run against the grid")
	}
	cfg := grid.ConfigFromEnv(env.NewLoader())
	if !cfg.HasCredentials() {
		t.Skip("BROWSERSTACK_USERNAME / BROWSERSTACK_ACCESS_KEY not set")
	}

	life := session.NewLifecycle(grid.NewFactory(cfg), site.TargetURL)
	d, ok := matrix.Default().Get("chrome_win11")
	require.True(t, ok)

	reg := registry.NewRegistry()
	require.NoError(t, checks.RegisterAll(reg))

	for _, id := range []check.ID{"POS-01", "POS-03", "POS-05", "NEG-06", "NEG-03"} {
		t.Run(string(id), func(t *testing.T) {
			c, err := reg.Get(id)
			require.NoError(t, err)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
			defer cancel()

			inv := life.Run(ctx, d, func(ctx context.Context, s grid.Session, d matrix.Descriptor) error {
				return c.Run(ctx, s, d, assertion.NewAsserter(nil, d.Label))
			})
			assert.Equal(t, session.OutcomePassed, inv.Status(), inv.Message())
			assert.True(t, inv.Released)
		})
	}
}
