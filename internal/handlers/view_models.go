package handlers

import (
	"html/template"

	"steam4all/internal/models"
	"steam4all/internal/player"
)

// PageData is shared by every full page
type PageData struct {
	Title     string
	DarkMode  bool
	CSRFToken string
	// View is "landing" or "course"; the navbar highlights it
	View string
}

type LandingViewData struct {
	PageData
	Course   *models.Course
	Features []models.Feature
}

type CourseViewData struct {
	PageData
	Course *models.Course
	Player player.Snapshot
	// Highlighted is the rendered layer under the editor textarea
	Highlighted template.HTML
}

// PlayerResponse is the JSON body returned by every player action
type PlayerResponse struct {
	Player      player.Snapshot `json:"player"`
	Highlighted template.HTML   `json:"highlighted"`
	Caret       *int            `json:"caret,omitempty"`
	Error       string          `json:"error,omitempty"`
}
