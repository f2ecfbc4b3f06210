package handlers

import (
	"net/http"

	"steam4all/internal/logger"
)

// Routes collects the handlers the server exposes
type Routes struct {
	Middleware   *Middleware
	Landing      *LandingHandler
	Course       *CourseHandler
	Theme        *ThemeHandler
	Health       *HealthHandler
	HighlightCSS http.HandlerFunc
	StaticPath   string
}

// Handler builds the mux. Every page and action runs behind the learner
// middleware; state-changing routes also require a CSRF token.
func (rt Routes) Handler(log *logger.Logger) http.Handler {
	mw := rt.Middleware
	mux := http.NewServeMux()

	// Static files
	if rt.HighlightCSS != nil {
		mux.HandleFunc("GET /static/css/highlight.css", rt.HighlightCSS)
	}
	if rt.StaticPath != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(rt.StaticPath))))
	}

	if rt.Health != nil {
		mux.HandleFunc("GET /healthz", rt.Health.Health)
	}

	// Pages
	pages := http.NewServeMux()
	pages.HandleFunc("GET /{$}", rt.Landing.Home)
	pages.HandleFunc("GET /course", rt.Course.ShowCourse)
	pages.HandleFunc("POST /theme", mw.CSRFProtect(rt.Theme.Toggle))

	// Course player actions
	pages.HandleFunc("POST /course/lessons/{index}", mw.CSRFProtect(rt.Course.SelectLesson))
	pages.HandleFunc("POST /course/next", mw.CSRFProtect(rt.Course.Next))
	pages.HandleFunc("POST /course/prev", mw.CSRFProtect(rt.Course.Prev))
	pages.HandleFunc("POST /course/restart", mw.CSRFProtect(rt.Course.Restart))
	pages.HandleFunc("POST /course/code", mw.CSRFProtect(rt.Course.UpdateCode))
	pages.HandleFunc("POST /course/code/reset", mw.CSRFProtect(rt.Course.ResetCode))
	pages.HandleFunc("POST /course/run", mw.CSRFProtect(mw.RateLimit(rt.Course.Run)))
	pages.HandleFunc("POST /course/chat", mw.CSRFProtect(mw.RateLimit(rt.Course.Chat)))
	pages.HandleFunc("POST /course/chat/toggle", mw.CSRFProtect(rt.Course.ToggleChat))
	pages.HandleFunc("POST /course/sidebar/toggle", mw.CSRFProtect(rt.Course.ToggleSidebar))

	mux.Handle("/", mw.Learner(pages))

	return Logging(log)(mux)
}
