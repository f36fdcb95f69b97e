package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadmapapp/go-auth-client/internal/config"
)

func TestNewLoadsEnvironment(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("HTTP_TIMEOUT", "3s")

	c, err := config.New()
	require.NoError(t, err)
	assert.Equal(t, "https://example.supabase.co", c.SupabaseURL)
	assert.Equal(t, "anon-key", c.SupabaseAnonKey)
	assert.Equal(t, 3*time.Second, c.HTTPTimeout)
	assert.Equal(t, "Roadmap Auth Client", c.AppName)
	assert.Equal(t, "info", c.LogLevel)
}

func TestNewRequiresProjectDetails(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	_, err := config.New()
	require.Error(t, err)

	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "")
	_, err = config.New()
	require.Error(t, err)
}
