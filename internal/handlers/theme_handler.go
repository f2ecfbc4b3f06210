package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"steam4all/internal/logger"
	"steam4all/internal/security"
)

const themeCookieTTL = 365 * 24 * time.Hour

// ThemeHandler flips the dark-mode preference
type ThemeHandler struct {
	log *logger.Logger
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(log *logger.Logger) *ThemeHandler {
	return &ThemeHandler{log: log}
}

// Toggle stores the opposite of the current theme and sends the browser
// back to the page it came from.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	dark := !darkMode(r)
	value := "light"
	if dark {
		value = "dark"
	}
	http.SetCookie(w, security.CreateSessionCookie(r, security.ThemeCookie, value, time.Now().Add(themeCookieTTL)))

	if wantsJSON(r) {
		writeJSON(w, h.log, http.StatusOK, map[string]bool{"darkMode": dark})
		return
	}
	http.Redirect(w, r, localReferer(r), http.StatusSeeOther)
}

// localReferer returns the path of the referring page on this site, or "/"
func localReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
