package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for _, tc := range []struct {
		level  string
		format string
		want   zapcore.Level
	}{
		{"", "", zapcore.WarnLevel},
		{"debug", "console", zapcore.DebugLevel},
		{"INFO", "json", zapcore.InfoLevel},
		{" error ", "JSON", zapcore.ErrorLevel},
	} {
		log, err := New(tc.level, tc.format)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tc.level, tc.format, err)
		}
		if !log.Core().Enabled(tc.want) {
			t.Fatalf("level %q should enable %s", tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && log.Core().Enabled(tc.want-1) {
			t.Fatalf("level %q should not enable %s", tc.level, tc.want-1)
		}
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New("verbose", "console"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
