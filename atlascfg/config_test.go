package atlascfg_test

import (
	"os"
	"testing"

	"github.com/pomagma/atlas/atlascfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			}
		})
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	unsetEnv(t, "POMAGMA_DEADLINE_SEC", "POMAGMA_LOG_FILE", "POMAGMA_LOG_LEVEL")

	cfg, err := atlascfg.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, atlascfg.DefaultDeadlineSec, cfg.DeadlineSec)
	assert.Equal(t, "", cfg.LogFile)
	assert.Equal(t, 2, cfg.LogLevel)
}

func TestFromEnv_ValidOverrides(t *testing.T) {
	t.Setenv("POMAGMA_DEADLINE_SEC", "120")
	t.Setenv("POMAGMA_LOG_FILE", "/tmp/atlas.log")
	t.Setenv("POMAGMA_LOG_LEVEL", "3")

	cfg, err := atlascfg.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.DeadlineSec)
	assert.Equal(t, "/tmp/atlas.log", cfg.LogFile)
	assert.Equal(t, 3, cfg.LogLevel)
}

func TestFromEnv_DeadlineOutOfRange(t *testing.T) {
	t.Setenv("POMAGMA_DEADLINE_SEC", "0")
	_, err := atlascfg.FromEnv()
	assert.ErrorIs(t, err, atlascfg.ErrDeadlineOutOfRange)

	t.Setenv("POMAGMA_DEADLINE_SEC", "604801")
	_, err = atlascfg.FromEnv()
	assert.ErrorIs(t, err, atlascfg.ErrDeadlineOutOfRange)
}

func TestFromEnv_DeadlineNotInteger(t *testing.T) {
	t.Setenv("POMAGMA_DEADLINE_SEC", "soon")
	_, err := atlascfg.FromEnv()
	assert.ErrorIs(t, err, atlascfg.ErrDeadlineNotInteger)
}

func TestFromEnv_LogLevelOutOfRange(t *testing.T) {
	unsetEnv(t, "POMAGMA_DEADLINE_SEC")
	t.Setenv("POMAGMA_LOG_LEVEL", "4")
	_, err := atlascfg.FromEnv()
	assert.ErrorIs(t, err, atlascfg.ErrLogLevelOutOfRange)
}
