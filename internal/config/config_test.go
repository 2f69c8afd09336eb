package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strings-sorter/internal/localize"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, localize.DuplicatesPreserve, cfg.Duplicates)
	assert.Equal(t, []string{".strings"}, cfg.Extensions)
	assert.False(t, cfg.FailFast)
	assert.False(t, cfg.Check)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STRINGS_SORTER_WORKERS", "2")
	t.Setenv("STRINGS_SORTER_DUPLICATES", "reject")
	t.Setenv("STRINGS_SORTER_EXTENSIONS", "strings, .STRINGS,.loc")
	t.Setenv("STRINGS_SORTER_FAIL_FAST", "true")
	t.Setenv("STRINGS_SORTER_DATABASE_URL", "postgres://localhost/sorter")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, localize.DuplicatesReject, cfg.Duplicates)
	assert.Equal(t, []string{".strings", ".loc"}, cfg.Extensions)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, "postgres://localhost/sorter", cfg.DatabaseURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown duplicate policy", KeyDuplicates, "merge"},
		{"zero workers", KeyWorkers, 0},
		{"no extensions", KeyExtensions, []string{" , "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
