package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("FYP_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "FYPIFY API", cfg.AppName)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "fypify", cfg.EventChannel)
	require.Equal(t, 15*24*time.Hour, cfg.MinDeadlineGap)
	require.Equal(t, 48*time.Hour, cfg.DeadlineWindow)
	require.Equal(t, 3, cfg.RequiredEvaluators)
	require.Equal(t, 5*time.Minute, cfg.ResultCacheTTL)
	require.False(t, cfg.SequentialGating)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("FYP_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("FYP_JWT_SECRET", "test-secret")
	t.Setenv("FYP_APP_PORT", "9090")
	t.Setenv("FYP_DEADLINE_MIN_GAP_DAYS", "20")
	t.Setenv("FYP_EVALUATION_REQUIRED_EVALUATORS", "2")
	t.Setenv("FYP_SUBMISSION_SEQUENTIAL_GATING", "true")
	t.Setenv("FYP_RESULT_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 20*24*time.Hour, cfg.MinDeadlineGap)
	require.Equal(t, 2, cfg.RequiredEvaluators)
	require.True(t, cfg.SequentialGating)
	require.Equal(t, 30*time.Second, cfg.ResultCacheTTL)
}

func TestHTTPAddressKeepsExplicitColon(t *testing.T) {
	cfg := Config{AppPort: ":7070"}
	require.Equal(t, ":7070", cfg.HTTPAddress())
}
