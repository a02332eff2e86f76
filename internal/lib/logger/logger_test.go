package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/lib/logger/sl"
)

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.EnvProd, &buf)

	log.Debug("hidden")
	log.Info("user registered", "op", "account.Register", sl.Err(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "user registered", line["msg"])
	assert.Equal(t, "account.Register", line["op"])
	assert.Equal(t, "boom", line["error"])
}

func TestLocalLoggerIsPretty(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	log := newLogger(config.EnvLocal, &buf).With("op", "test")

	log.Warn("careful", "n", 3)

	out := buf.String()
	assert.Contains(t, out, "WARN:")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, `"op": "test"`)
	assert.Contains(t, out, `"n": 3`)
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "", sl.Err(nil).Value.String())
}
