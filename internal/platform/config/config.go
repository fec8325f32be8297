// Package config builds runtime configuration from the environment, with an
// optional TOML file overriding the scoring weights and thresholds.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"veridex/internal/confidence"
	"veridex/internal/decision"
	"veridex/internal/listing"
	"veridex/internal/similarity"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	PostgresURL  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	// Source endpoints. Empty endpoints disable that adapter.
	RegistryURL      string
	LicenseURL       string
	GeocodeURL       string
	ListingSearchURL string
	WebSearchURL     string

	AdapterTimeout time.Duration

	Scoring    similarity.Config
	Blend      confidence.BlendWeights
	Thresholds decision.Thresholds
}

// FromEnv builds a Server config from environment variables so main stays
// lean. VERIDEX_SCORING_CONFIG, when set, points at a TOML file overriding
// the scoring defaults.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:             envOr("VERIDEX_ADDR", ":8080"),
		JWTSigningKey:    envOr("VERIDEX_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:      os.Getenv("VERIDEX_POSTGRES_URL"),
		RedisURL:         os.Getenv("VERIDEX_REDIS_URL"),
		KafkaTopic:       envOr("VERIDEX_KAFKA_TOPIC", "veridex.decisions"),
		RegistryURL:      os.Getenv("VERIDEX_REGISTRY_URL"),
		LicenseURL:       os.Getenv("VERIDEX_LICENSE_URL"),
		GeocodeURL:       os.Getenv("VERIDEX_GEOCODE_URL"),
		ListingSearchURL: os.Getenv("VERIDEX_LISTING_SEARCH_URL"),
		WebSearchURL:     os.Getenv("VERIDEX_WEB_SEARCH_URL"),
		AdapterTimeout:   5 * time.Second,
		Scoring:          similarity.DefaultConfig(),
		Blend:            confidence.DefaultBlendWeights(),
		Thresholds:       decision.DefaultThresholds(),
	}

	if brokers := os.Getenv("VERIDEX_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	if raw := os.Getenv("VERIDEX_ADAPTER_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("parse VERIDEX_ADAPTER_TIMEOUT: %w", err)
		}
		cfg.AdapterTimeout = d
	}

	if path := os.Getenv("VERIDEX_SCORING_CONFIG"); path != "" {
		if err := cfg.applyScoringFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// scoringFile is the TOML override layout.
type scoringFile struct {
	Similarity similarity.Config   `toml:"similarity"`
	Blend      map[string]float64  `toml:"blend"`
	Thresholds decision.Thresholds `toml:"thresholds"`
}

func (c *Server) applyScoringFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scoring config: %w", err)
	}

	// Defaults seed the file struct so partial overrides keep the rest.
	file := scoringFile{
		Similarity: c.Scoring,
		Thresholds: c.Thresholds,
	}
	if err := toml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse scoring config: %w", err)
	}

	c.Scoring = file.Similarity
	c.Thresholds = file.Thresholds
	if len(file.Blend) > 0 {
		blend := make(confidence.BlendWeights, len(file.Blend))
		var sum float64
		for field, weight := range file.Blend {
			blend[listing.Field(field)] = weight
			sum += weight
		}
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("blend weights in %s sum to %.3f, want 1.0", path, sum)
		}
		c.Blend = blend
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
