package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"dashseek/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "json", "warn")

	log.Infof("dropped %d", 1)
	log.Errorf("kept %s", "this")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "kept this", entry["msg"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "json", "chatty")

	log.Debugf("hidden")
	log.Infof("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_HCLogFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "hclog", "debug")

	log.Debugf("segment %d", 7)
	log.Warnf("slow")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG]")
	assert.Contains(t, out, "dashseek: segment 7")
	assert.Contains(t, out, "[WARN]")
}

func TestNop(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() {
		log.Debugf("a")
		log.Infof("b")
		log.Warnf("c")
		log.Errorf("d")
	})
}
