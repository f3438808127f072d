package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel logrus.Level
	}{
		{"debug", "debug", logrus.DebugLevel},
		{"upper case", "WARN", logrus.WarnLevel},
		{"unknown falls back to info", "chatty", logrus.InfoLevel},
		{"empty falls back to info", "", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewWithOutput(&bytes.Buffer{}, tt.level, "text")
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
		})
	}
}

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "info", "json")

	logger.WithFields(logrus.Fields{"athlete_id": "a1", "status": "GREEN"}).Info("reading processed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reading processed", entry["msg"])
	assert.Equal(t, "a1", entry["athlete_id"])
	assert.Equal(t, "GREEN", entry["status"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() { logger.Info("dropped") })
}
