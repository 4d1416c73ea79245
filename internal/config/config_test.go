package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":4000", cfg.Addr)
	require.Equal(t, "b", cfg.EvilMarker)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.False(t, cfg.Debug)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("EVIL_MARKER", "minion")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "minion", cfg.EvilMarker)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.True(t, cfg.Debug)
}
