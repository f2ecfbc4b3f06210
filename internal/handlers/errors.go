package handlers

import (
	"errors"
	"net/http"

	"steam4all/internal/logger"
	"steam4all/internal/player"
)

func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Warn(logMsg, "status", status, "error", err)
	}

	http.Error(w, userMsg, status)
}

// statusFor maps player errors to HTTP statuses. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, player.ErrLessonOutOfRange), errors.Is(err, player.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, player.ErrCannotProceed),
		errors.Is(err, player.ErrAtFirstLesson),
		errors.Is(err, player.ErrNotCompleted),
		errors.Is(err, player.ErrCourseCompleted),
		errors.Is(err, player.ErrRunInFlight),
		errors.Is(err, player.ErrChatInFlight):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
