package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"

	"steam4all/internal/editor"
	"steam4all/internal/logger"
	"steam4all/internal/markup"
	"steam4all/internal/security"
)

// TemplateFuncs returns the helpers the page templates rely on
func TemplateFuncs(highlighter editor.Highlighter, md *markup.Renderer) template.FuncMap {
	return template.FuncMap{
		"highlight": func(source string) template.HTML {
			return editor.Render(source, highlighter)
		},
		"markdown":    md.Render,
		"featureIcon": FeatureIcon,
		"add": func(a, b int) int {
			return a + b
		},
		"percent": func(p float64) string {
			return strconv.FormatFloat(p, 'f', 0, 64)
		},
	}
}

// LoadTemplates parses base.tmpl, the pages and the shared components
func LoadTemplates(templatesPath string, funcs template.FuncMap) (*template.Template, error) {
	files := []string{filepath.Join(templatesPath, "base.tmpl")}

	patterns := []string{
		filepath.Join(templatesPath, "pages/*.tmpl"),
		filepath.Join(templatesPath, "components/*.tmpl"),
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// darkMode reads the theme preference cookie
func darkMode(r *http.Request) bool {
	cookie, err := r.Cookie(security.ThemeCookie)
	return err == nil && cookie.Value == "dark"
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response", "error", err)
	}
}

func renderPage(w http.ResponseWriter, log *logger.Logger, templates *template.Template, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template", "template", name, "error", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
