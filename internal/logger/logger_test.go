package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New(EnvProduction, "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn must be enabled")
	}

	if _, err := New("staging", ""); err == nil {
		t.Fatalf("expected unknown environment error")
	}
	if _, err := New(EnvDevelopment, "loud"); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if l, err := New(EnvTest, ""); err != nil || l.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("test environment must discard logs")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatalf("expected no-op logger")
	}
	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("expected stored logger")
	}
}
