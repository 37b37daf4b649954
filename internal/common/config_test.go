package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())
	assert.GreaterOrEqual(t, config.Ingest.Concurrency, 1)
}

func TestLoadFromFilesMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scandex.toml")
	content := `
[server]
port = 9999

[ocr]
enabled = false
language = "deu"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port)
	assert.False(t, config.OCR.Enabled)
	assert.Equal(t, "deu", config.OCR.Language)
	// Untouched sections keep their defaults.
	assert.Equal(t, "./data/scandex.db", config.Storage.SQLite.Path)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/scandex.toml")
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SCANDEX_SERVER_PORT", "7070")
	t.Setenv("SCANDEX_OCR_LANGUAGE", "fra")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "fra", config.OCR.Language)
}

func TestMaxArtifactAgeDuration(t *testing.T) {
	cfg := ExportConfig{MaxArtifactAge: "30m"}
	assert.Equal(t, 30*time.Minute, cfg.MaxArtifactAgeDuration())

	cfg.MaxArtifactAge = "garbage"
	assert.Equal(t, 24*time.Hour, cfg.MaxArtifactAgeDuration())
}

func TestIngestInterval(t *testing.T) {
	cfg := IngestConfig{RateLimit: "500ms"}
	assert.Equal(t, 500*time.Millisecond, cfg.IngestInterval())

	cfg.RateLimit = ""
	assert.Equal(t, time.Duration(0), cfg.IngestInterval())
}
