package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name  string
		json  bool
		debug bool
		want  zapcore.Level
	}{
		{name: "console info", want: zapcore.InfoLevel},
		{name: "json debug", json: true, debug: true, want: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.json, tt.debug)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.want) {
				t.Fatalf("expected %s to be enabled", tt.want)
			}
			if tt.want == zapcore.InfoLevel && l.Core().Enabled(zapcore.DebugLevel) {
				t.Fatalf("debug must be disabled at info level")
			}
		})
	}
}
