package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitAndModuleLogger(t *testing.T) {
	require.NoError(t, Init("debug"))

	log := WithModule("filesystem")
	require.NotNil(t, log)
	log.Debug("module logger works")
}

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	require.NoError(t, Init("not-a-level"))
	require.NotNil(t, Logger())
}

func TestWithSessionAnnotates(t *testing.T) {
	require.NoError(t, Init("info"))

	log := WithSession("session", "abc-123")
	require.NotNil(t, log)
	log.Info("session logger works")
}
