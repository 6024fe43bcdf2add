package logger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/massmailer/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	log := logger.New(logger.Config{Level: "debug"})
	require.NotNil(t, log)
	require.True(t, log.Enabled(t.Context(), -4))
}

func TestNew_DefaultLevel(t *testing.T) {
	t.Parallel()

	log := logger.New(logger.Config{Level: "nonsense"})
	require.False(t, log.Enabled(t.Context(), -4)) // debug filtered
	require.True(t, log.Enabled(t.Context(), 0))   // info passes
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.NotNil(t, log)
	log.Info("discarded")
}

func TestNewWithSentry_EmptyDSN(t *testing.T) {
	t.Parallel()

	log := logger.NewWithSentry(logger.Config{Level: "info"}, logger.SentryConfig{})
	require.NotNil(t, log)
	require.False(t, log.Enabled(t.Context(), -4))
}
