package main

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"steam4all/internal/logger"
)

func TestExitCode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	if code := exitCode(log, nil); code != 0 {
		t.Errorf("exitCode(nil) = %d, want 0", code)
	}
	if logs.Len() != 0 {
		t.Errorf("clean shutdown logged %d entries", logs.Len())
	}

	if code := exitCode(log, errors.New("bind: address in use")); code != 1 {
		t.Errorf("exitCode(err) = %d, want 1", code)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("level = %v, want error so the process can flush before exiting", entries[0].Level)
	}
	if entries[0].ContextMap()["error"] != "bind: address in use" {
		t.Errorf("error field = %v", entries[0].ContextMap()["error"])
	}
}
