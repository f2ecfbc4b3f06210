package handlers

import (
	"html/template"
	"net/http"

	"steam4all/internal/logger"
	"steam4all/internal/models"
	"steam4all/internal/service"
)

// LandingHandler serves the home page
type LandingHandler struct {
	course     *service.CourseService
	middleware *Middleware
	templates  *template.Template
	log        *logger.Logger
}

// NewLandingHandler creates a new landing handler
func NewLandingHandler(course *service.CourseService, middleware *Middleware, templates *template.Template, log *logger.Logger) *LandingHandler {
	return &LandingHandler{
		course:     course,
		middleware: middleware,
		templates:  templates,
		log:        log,
	}
}

// Home shows the landing page. Coming back here leaves the course player,
// so the next visit to /course starts from the stored lesson.
func (h *LandingHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.course.Leave(LearnerIDFromContext(r.Context()))

	data := LandingViewData{
		PageData: PageData{
			Title:     "Steam4All - Coding for Everyone",
			DarkMode:  darkMode(r),
			CSRFToken: h.middleware.CSRFToken(r),
			View:      "landing",
		},
		Course:   h.course.Course(),
		Features: models.Features,
	}
	renderPage(w, h.log, h.templates, "landing.tmpl", data)
}
