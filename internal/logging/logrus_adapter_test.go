package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{name: "debug level with text format", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info level with json format", level: "info", format: "json", expectLevel: logrus.InfoLevel},
		{name: "upper-case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &out)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.Level())

			if tt.format == "json" {
				_, ok := adapter.entry.Logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.entry.Logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.entry.Logger)
}

func TestLogrusAdapter_LoggingMethods(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...Field)
		message string
	}{
		{name: "Debug", logFunc: func(l Logger, msg string, f ...Field) { l.Debug(msg, f...) }, message: "classified record"},
		{name: "Info", logFunc: func(l Logger, msg string, f ...Field) { l.Info(msg, f...) }, message: "reconciliation completed"},
		{name: "Warn", logFunc: func(l Logger, msg string, f ...Field) { l.Warn(msg, f...) }, message: "amount unparsable"},
		{name: "Error", logFunc: func(l Logger, msg string, f ...Field) { l.Error(msg, f...) }, message: "run aborted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferedAdapter(logrus.DebugLevel)
			tt.logFunc(logger, tt.message, F(FieldRole, "mpr"))

			output := buf.String()
			assert.Contains(t, output, tt.message)
			assert.Contains(t, output, "role=mpr")
		})
	}
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.
		WithField(FieldTransactionID, "TXN002").
		WithFields(F(FieldAnomalyType, "amount_mismatch")).
		WithError(errors.New("tolerance exceeded")).
		Error("anomaly recorded")

	output := buf.String()
	assert.Contains(t, output, "anomaly recorded")
	assert.Contains(t, output, "TXN002")
	assert.Contains(t, output, "amount_mismatch")
	assert.Contains(t, output, "tolerance exceeded")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConvertFields(t *testing.T) {
	logrusFields := convertFields([]Field{F("a", "x"), F("b", 42)})
	assert.Len(t, logrusFields, 2)
	assert.Equal(t, "x", logrusFields["a"])
	assert.Equal(t, 42, logrusFields["b"])
	assert.Len(t, convertFields(nil), 0)
}

func TestComponent(t *testing.T) {
	mock := NewMockLogger()
	Component(mock, "engine").Info("pass completed")

	entries := mock.GetEntriesByLevel("INFO")
	require.Len(t, entries, 1)
	v, ok := entries[0].FieldValue(FieldComponent)
	require.True(t, ok)
	assert.Equal(t, "engine", v)

	assert.Nil(t, Component(nil, "engine"))
}

func TestNewLogrusAdapter_JSONOutput(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogrusAdapterWithOutput("info", "JSON", &out)
	logger.Info("Reconciliation summary", F(FieldMatchRate, 66.67))

	assert.Contains(t, out.String(), `"msg":"Reconciliation summary"`)
	assert.Contains(t, out.String(), `"match_rate":66.67`)
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
