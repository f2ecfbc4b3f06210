package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"steam4all/internal/editor"
	"steam4all/internal/logger"
	"steam4all/internal/player"
	"steam4all/internal/service"
	"steam4all/internal/validation"
)

// CourseHandler serves the course player. Every action answers JSON when
// the request asks for it and otherwise redirects back to /course.
type CourseHandler struct {
	course      *service.CourseService
	highlighter editor.Highlighter
	middleware  *Middleware
	templates   *template.Template
	log         *logger.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(course *service.CourseService, highlighter editor.Highlighter, middleware *Middleware, templates *template.Template, log *logger.Logger) *CourseHandler {
	return &CourseHandler{
		course:      course,
		highlighter: highlighter,
		middleware:  middleware,
		templates:   templates,
		log:         log.With("handler", "CourseHandler"),
	}
}

// ShowCourse mounts the learner's player if needed and renders it, or the
// completion view once the course is finished.
func (h *CourseHandler) ShowCourse(w http.ResponseWriter, r *http.Request) {
	snap := h.course.Open(r.Context(), LearnerIDFromContext(r.Context()))

	if wantsJSON(r) {
		h.respond(w, r, snap, nil, nil)
		return
	}

	data := CourseViewData{
		PageData: PageData{
			Title:     snap.Lesson.Title + " - Steam4All",
			DarkMode:  darkMode(r),
			CSRFToken: h.middleware.CSRFToken(r),
			View:      "course",
		},
		Course:      h.course.Course(),
		Player:      snap,
		Highlighted: editor.Render(snap.Code, h.highlighter),
	}

	page := "course.tmpl"
	if snap.Completed {
		data.Title = "Course Completed - Steam4All"
		page = "completed.tmpl"
	}
	renderPage(w, h.log, h.templates, page, data)
}

// SelectLesson jumps to the lesson in the path
func (h *CourseHandler) SelectLesson(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidLesson, "", nil)
		return
	}
	closeSidebar := r.PostForm.Get("close_sidebar") != ""

	snap, err := h.course.SelectLesson(r.Context(), LearnerIDFromContext(r.Context()), index, closeSidebar)
	h.respond(w, r, snap, nil, err)
}

// Next advances to the following lesson or finishes the course
func (h *CourseHandler) Next(w http.ResponseWriter, r *http.Request) {
	snap, err := h.course.Next(r.Context(), LearnerIDFromContext(r.Context()))
	h.respond(w, r, snap, nil, err)
}

// Prev goes back one lesson
func (h *CourseHandler) Prev(w http.ResponseWriter, r *http.Request) {
	snap, err := h.course.Prev(r.Context(), LearnerIDFromContext(r.Context()))
	h.respond(w, r, snap, nil, err)
}

// Restart reopens the first lesson from the completion view
func (h *CourseHandler) Restart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.course.Restart(r.Context(), LearnerIDFromContext(r.Context()))
	h.respond(w, r, snap, nil, err)
}

// UpdateCode stores the editor buffer. With tab_at set, four spaces are
// inserted over [tab_at, tab_end) first and the new caret is returned.
func (h *CourseHandler) UpdateCode(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	learnerID := LearnerIDFromContext(r.Context())
	code := formCode(r)
	if err := validation.ValidateCode(code); err != nil {
		h.rejectInput(w, err)
		return
	}

	tabAt := r.PostForm.Get("tab_at")
	if tabAt == "" {
		snap := h.course.UpdateCode(r.Context(), learnerID, code)
		h.respond(w, r, snap, nil, nil)
		return
	}

	start, err := strconv.Atoi(tabAt)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}
	end := start
	if raw := r.PostForm.Get("tab_end"); raw != "" {
		if end, err = strconv.Atoi(raw); err != nil {
			respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidFormData, "", nil)
			return
		}
	}

	snap, caret := h.course.InsertTab(r.Context(), learnerID, code, start, end)
	h.respond(w, r, snap, &caret, nil)
}

// ResetCode restores the starter code of the current lesson
func (h *CourseHandler) ResetCode(w http.ResponseWriter, r *http.Request) {
	snap := h.course.ResetCode(r.Context(), LearnerIDFromContext(r.Context()))
	h.respond(w, r, snap, nil, nil)
}

// Run simulates the editor buffer. The remote call outlives a dropped
// connection so the result is there on the next page load.
func (h *CourseHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if err := h.syncCode(r); err != nil {
		h.rejectInput(w, err)
		return
	}

	snap, err := h.course.Run(context.WithoutCancel(r.Context()), LearnerIDFromContext(r.Context()))
	h.respond(w, r, snap, nil, err)
}

// Chat asks the tutor the question in the message field
func (h *CourseHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if err := h.syncCode(r); err != nil {
		h.rejectInput(w, err)
		return
	}

	question := r.PostForm.Get("message")
	if err := validation.ValidateQuestion(question); err != nil {
		h.rejectInput(w, err)
		return
	}

	snap, err := h.course.Ask(context.WithoutCancel(r.Context()), LearnerIDFromContext(r.Context()), question)
	h.respond(w, r, snap, nil, err)
}

// ToggleChat opens or closes the tutor panel
func (h *CourseHandler) ToggleChat(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if err := h.syncCode(r); err != nil {
		h.rejectInput(w, err)
		return
	}

	snap := h.course.ToggleChat(r.Context(), LearnerIDFromContext(r.Context()))
	h.respond(w, r, snap, nil, nil)
}

// ToggleSidebar opens or closes the lesson list
func (h *CourseHandler) ToggleSidebar(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if err := h.syncCode(r); err != nil {
		h.rejectInput(w, err)
		return
	}

	snap := h.course.ToggleSidebar(r.Context(), LearnerIDFromContext(r.Context()))
	h.respond(w, r, snap, nil, nil)
}

func (h *CourseHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidFormData, "failed to parse form", err)
		return false
	}
	return true
}

// syncCode stores the editor buffer submitted alongside another action.
// Pages without JavaScript only send the buffer with their forms.
func (h *CourseHandler) syncCode(r *http.Request) error {
	if _, ok := r.PostForm["code"]; !ok {
		return nil
	}
	code := formCode(r)
	if err := validation.ValidateCode(code); err != nil {
		return err
	}
	h.course.UpdateCode(r.Context(), LearnerIDFromContext(r.Context()), code)
	return nil
}

func (h *CourseHandler) rejectInput(w http.ResponseWriter, err error) {
	respondWithError(w, h.log, http.StatusBadRequest, err.Error(), "", nil)
}

// formCode returns the submitted buffer with browser CRLF line endings folded
func formCode(r *http.Request) string {
	return strings.ReplaceAll(r.PostForm.Get("code"), "\r\n", "\n")
}

func (h *CourseHandler) respond(w http.ResponseWriter, r *http.Request, snap player.Snapshot, caret *int, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, h.log, status, ErrInternalServerError, "course action failed", err)
		return
	}

	if wantsJSON(r) {
		resp := PlayerResponse{
			Player:      snap,
			Highlighted: editor.Render(snap.Code, h.highlighter),
			Caret:       caret,
		}
		if err != nil {
			resp.Error = err.Error()
		}
		writeJSON(w, h.log, status, resp)
		return
	}

	if errors.Is(err, player.ErrLessonOutOfRange) {
		respondWithError(w, h.log, status, ErrInvalidLesson, "", nil)
		return
	}
	if err != nil {
		h.log.Debug("course action rejected", "path", r.URL.Path, "error", err)
	}
	http.Redirect(w, r, "/course", http.StatusSeeOther)
}
