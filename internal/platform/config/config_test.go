package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridex/internal/listing"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "veridex.decisions", cfg.KafkaTopic)
	assert.Equal(t, 5*time.Second, cfg.AdapterTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.InDelta(t, 0.45, cfg.Scoring.AcceptThreshold, 1e-9)
	assert.InDelta(t, 0.70, cfg.Thresholds.ReviewBelow, 1e-9)
	assert.InDelta(t, 0.85, cfg.Thresholds.AutoPublishAt, 1e-9)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("VERIDEX_ADDR", ":9090")
	t.Setenv("VERIDEX_KAFKA_BROKERS", "broker-a:9092, broker-b:9092,")
	t.Setenv("VERIDEX_ADAPTER_TIMEOUT", "750ms")
	t.Setenv("VERIDEX_REGISTRY_URL", "http://registry.local")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 750*time.Millisecond, cfg.AdapterTimeout)
	assert.Equal(t, "http://registry.local", cfg.RegistryURL)
}

func TestFromEnv_BadTimeout(t *testing.T) {
	t.Setenv("VERIDEX_ADAPTER_TIMEOUT", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VERIDEX_ADAPTER_TIMEOUT")
}

func TestFromEnv_ScoringFile(t *testing.T) {
	path := writeScoringFile(t, `
[similarity]
accept_threshold = 0.60
match_threshold = 0.90

[blend]
name = 0.5
address = 0.3
phone = 0.2

[thresholds]
review_below = 0.65
auto_publish_at = 0.90
`)
	t.Setenv("VERIDEX_SCORING_CONFIG", path)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.InDelta(t, 0.60, cfg.Scoring.AcceptThreshold, 1e-9)
	assert.InDelta(t, 0.90, cfg.Scoring.MatchThreshold, 1e-9)
	// Fields absent from the file keep their defaults.
	assert.InDelta(t, 0.99, cfg.Scoring.SuggestionGate, 1e-9)
	assert.InDelta(t, 0.65, cfg.Thresholds.ReviewBelow, 1e-9)
	assert.InDelta(t, 0.90, cfg.Thresholds.AutoPublishAt, 1e-9)
	assert.InDelta(t, 0.5, cfg.Blend[listing.Field("name")], 1e-9)
	assert.InDelta(t, 0.2, cfg.Blend[listing.Field("phone")], 1e-9)
}

func TestFromEnv_ScoringFileBadBlendSum(t *testing.T) {
	path := writeScoringFile(t, `
[blend]
name = 0.9
phone = 0.9
`)
	t.Setenv("VERIDEX_SCORING_CONFIG", path)

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blend weights")
}

func TestFromEnv_ScoringFileMissing(t *testing.T) {
	t.Setenv("VERIDEX_SCORING_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := FromEnv()
	require.Error(t, err)
}

func writeScoringFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoring.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
