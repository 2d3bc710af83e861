package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("OT_TEST_STR", "value")
	require.Equal(t, "value", getEnv("OT_TEST_STR", "fallback"))
	require.Equal(t, "fallback", getEnv("OT_TEST_STR_MISSING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("OT_TEST_INT", "15")
	require.Equal(t, 15, getEnvInt("OT_TEST_INT", 3))

	t.Setenv("OT_TEST_INT", "not a number")
	require.Equal(t, 3, getEnvInt("OT_TEST_INT", 3))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("OT_TEST_BOOL", "true")
	require.True(t, getEnvBool("OT_TEST_BOOL", false))

	t.Setenv("OT_TEST_BOOL", "0")
	require.False(t, getEnvBool("OT_TEST_BOOL", true))

	t.Setenv("OT_TEST_BOOL", "sideways")
	require.True(t, getEnvBool("OT_TEST_BOOL", true))
}
