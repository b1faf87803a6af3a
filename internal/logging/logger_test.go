package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewJSONWithComponent(t *testing.T) {
	var out bytes.Buffer
	l := WithComponent(New(Config{Level: "info", Format: "json", Output: &out}), "loader")

	l.Debug().Msg("hidden")
	l.Info().Int("chunks", 3).Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "loader", entry["component"])
	assert.Equal(t, "loaded", entry["message"])
	assert.InDelta(t, 3, entry["chunks"], 0)
	assert.Contains(t, entry, "time")
}

func TestNewConsole(t *testing.T) {
	var out bytes.Buffer
	l := New(Config{Level: "debug", Format: "console", Output: &out})
	l.Debug().Msg("chunk parsed")
	assert.Contains(t, out.String(), "chunk parsed")
	assert.Contains(t, out.String(), "DBG")
}
