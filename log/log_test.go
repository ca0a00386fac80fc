package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampComesFirst(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf).With("run_id", "r1")
	logger.Info().Int("page", 3).Msg("Scraping page")

	line := buf.String()
	require.NotEmpty(t, line)
	assert.Regexp(t, `^\{"level":"info","run_id":"r1","time":`, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Scraping page", entry["message"])
	assert.EqualValues(t, 3, entry["page"])
}

func TestFileTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scraping.log")
	logger, err := New(Options{Level: "warn", Console: false, File: path})
	require.NoError(t, err)

	logger.Info().Msg("dropped by level")
	logger.Warn().Msg("kept")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "dropped by level")
	assert.Contains(t, string(content), `"message":"kept"`)
}

func TestBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
