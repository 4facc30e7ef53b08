package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core)).With("session", "abc")

	l.Warn("booking failed", "seat", 7)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "booking failed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["session"])
	assert.EqualValues(t, 7, fields["seat"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := New("verbose", "development", "console")
	require.NotNil(t, l)
	_ = l.Sync()
}
