package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "development defaults pass",
			config: Config{Port: "8480", JWTSecret: "your-secret-key-change-in-production", Env: "development"},
		},
		{
			name:        "missing port",
			config:      Config{JWTSecret: "x", Env: "development"},
			expectError: true,
		},
		{
			name:        "missing jwt secret",
			config:      Config{Port: "8480", Env: "development"},
			expectError: true,
		},
		{
			name:        "production rejects default jwt secret",
			config:      Config{Port: "8480", JWTSecret: "your-secret-key-change-in-production", Env: "production"},
			expectError: true,
		},
		{
			name:        "production rejects short jwt secret",
			config:      Config{Port: "8480", JWTSecret: "short", Env: "production"},
			expectError: true,
		},
		{
			name:        "production rejects default db password",
			config:      Config{Port: "8480", JWTSecret: "secure-secret-at-least-32-chars-long", DBPassword: "password", Env: "prod"},
			expectError: true,
		},
		{
			name:   "production with strong settings passes",
			config: Config{Port: "8480", JWTSecret: "secure-secret-at-least-32-chars-long", DBPassword: "s3cure-db-pass", DBSSLMode: "require", Env: "production"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_WeeklyRankingOnByDefault(t *testing.T) {
	defer viper.Reset()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Contains(t, cfg.FeatureFlags, "weekly_ranking")
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	defer os.Unsetenv("PORT")
	defer os.Unsetenv("FEATURE_FLAGS")
	defer viper.Reset()

	os.Setenv("PORT", "9999")
	os.Setenv("FEATURE_FLAGS", "weekly_ranking")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "weekly_ranking", cfg.FeatureFlags)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "atelier", cfg.DBName)
}
