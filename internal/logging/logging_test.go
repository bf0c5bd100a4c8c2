package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("production", "warn", &buf)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	l := Component(logger, "refresher")
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "refresher", entry["component"])
}

func TestSetupWithWriterDefaultsLevel(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.InfoLevel, SetupWithWriter("production", "", &buf).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, SetupWithWriter("production", "loud", &buf).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, SetupWithWriter("development", "info", &buf).GetLevel())
}
