package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"steam4all/internal/logger"
	"steam4all/internal/player"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, logger.Nop(), 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	body := strings.TrimSpace(recorder.Body.String())
	if body != "Teapot" {
		t.Fatalf("expected body 'Teapot', got %q", body)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	recorder := httptest.NewRecorder()
	respondWithError(recorder, log, 500, "Internal server error", "", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].Message != "Internal server error" {
		t.Fatalf("expected log to use the user message, got %q", entries[0].Message)
	}
	if fmt.Sprint(entries[0].ContextMap()["error"]) != "boom" {
		t.Fatalf("expected log to include error, got %v", entries[0].ContextMap())
	}
}

func TestRespondWithErrorSkipsLogWithoutError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	respondWithError(httptest.NewRecorder(), logger.FromZap(zap.New(core)), 403, ErrInvalidCSRF, "", nil)

	if logs.Len() != 0 {
		t.Fatalf("expected no log entries, got %d", logs.Len())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: 9", player.ErrLessonOutOfRange), http.StatusBadRequest},
		{player.ErrEmptyQuestion, http.StatusBadRequest},
		{player.ErrCannotProceed, http.StatusConflict},
		{player.ErrAtFirstLesson, http.StatusConflict},
		{player.ErrNotCompleted, http.StatusConflict},
		{player.ErrCourseCompleted, http.StatusConflict},
		{player.ErrRunInFlight, http.StatusConflict},
		{player.ErrChatInFlight, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
