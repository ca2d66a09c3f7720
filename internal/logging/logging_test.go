package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("feed", "birdeye").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"feed":"birdeye"`)
	assert.Contains(t, out, `"message":"shown"`)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "console", &buf)

	logger.Debug().Msg("tick")

	out := buf.String()
	assert.Contains(t, out, "tick")
	assert.NotContains(t, out, `"message"`)
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger := New("chatty", "json", &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New("info", "json", &buf), "orchestrator")
	logger.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"orchestrator"`)
}
