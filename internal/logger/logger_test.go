package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, false)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Debug().Msg("hidden")
	logger.Info().Str("dir", "dist").Msg("Output directory")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Output directory", entry["message"])
	assert.Equal(t, "dist", entry["dir"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_Dev(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, true)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	log.Debug().Msg("from global")
	assert.Contains(t, buf.String(), "from global")
}
