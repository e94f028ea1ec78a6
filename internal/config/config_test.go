package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3600.0, c.BucketSeconds)
	assert.Equal(t, 10, c.TopFeatures)
	assert.True(t, c.Parallel)
	assert.Equal(t, "markdown", c.OutputFormat)
	assert.Equal(t, ":8080", c.ServerAddr)
	assert.Equal(t, 64, c.MaxUploadMB)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, Defaults(), c)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("top_features: 5\nbucket_seconds: 60\noutput_format: json\n"), 0o644))
	t.Setenv("FRAUDLENS_OUTPUT_FORMAT", "yaml")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 5, c.TopFeatures)
	assert.Equal(t, 60.0, c.BucketSeconds)
	assert.Equal(t, "yaml", c.OutputFormat)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("top_features", "3"))
	require.NoError(t, c.Set("parallel", "false"))
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".fraudlens", "config.yaml"))
	require.NoError(t, err)
	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, again.TopFeatures)
	assert.False(t, again.Parallel)
}

func TestSetValidation(t *testing.T) {
	c := &Global{}
	assert.NoError(t, c.Set("delimiter", "tab"))
	assert.Equal(t, "tab", c.Delimiter)
	assert.NoError(t, c.Set("output_format", "PDF"))
	assert.Equal(t, "pdf", c.OutputFormat)
	assert.NoError(t, c.Set("output_format", "md"))
	assert.Equal(t, "markdown", c.OutputFormat)
	err := c.Set("output_format", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "html")

	for key, val := range map[string]string{
		"top_features":   "0",
		"bucket_seconds": "-1",
		"delimiter":      "|",
		"output_format":  "docx",
		"log_level":      "loud",
		"nope":           "1",
	} {
		assert.Error(t, c.Set(key, val), "key %s", key)
	}
}

func TestParseSeparators(t *testing.T) {
	r, err := ParseDelimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)
	r, err = ParseDecimal("comma")
	require.NoError(t, err)
	assert.Equal(t, ',', r)
	r, err = ParseThousands("space")
	require.NoError(t, err)
	assert.Equal(t, ' ', r)
	_, err = ParseThousands("_")
	assert.Error(t, err)
}
