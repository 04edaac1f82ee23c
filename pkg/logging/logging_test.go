package logging

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pim.dev/x/pim/pkg/pimconfig"
)

func TestInitLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("debug level", func(t *testing.T) {
		t.Setenv(pimconfig.LogLevelEnvVar, "debug")
		var buf bytes.Buffer
		require.NoError(t, InitLoggingTo(&buf))

		slog.Debug("hello", "identity", "https://example.com/a")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "identity=https://example.com/a")
	})

	t.Run("default level hides debug", func(t *testing.T) {
		t.Setenv(pimconfig.LogLevelEnvVar, "")
		require.NoError(t, os.Unsetenv(pimconfig.LogLevelEnvVar))
		var buf bytes.Buffer
		require.NoError(t, InitLoggingTo(&buf))

		slog.Debug("hidden")
		slog.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Setenv(pimconfig.LogLevelEnvVar, "loud")
		assert.Error(t, InitLoggingTo(&bytes.Buffer{}))
	})
}
