package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := Level(in); got != want {
			t.Fatalf("Level(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfig_Formats(t *testing.T) {
	jsonCfg := Config("warn", "json")
	if jsonCfg.Encoding != "json" || jsonCfg.EncoderConfig.TimeKey != "timestamp" {
		t.Fatalf("json config = %s / %s", jsonCfg.Encoding, jsonCfg.EncoderConfig.TimeKey)
	}
	if jsonCfg.Level.Level() != zapcore.WarnLevel {
		t.Fatalf("level = %v", jsonCfg.Level.Level())
	}

	console := Config("debug", "Console")
	if console.Encoding != "console" || console.Level.Level() != zapcore.DebugLevel {
		t.Fatalf("console config = %s at %v", console.Encoding, console.Level.Level())
	}
}

func TestNew_EnablesConfiguredLevel(t *testing.T) {
	logger, err := New("error", "json", "legaldocs-test")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be disabled at error level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error should be enabled")
	}
}
