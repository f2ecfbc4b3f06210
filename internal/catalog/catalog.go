// Package catalog loads the read-only course definition served by the player.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"steam4all/internal/models"
)

//go:embed python101.yaml
var defaultCourseYAML []byte

// ErrNoLessons is returned for a course definition without lessons
var ErrNoLessons = errors.New("course has no lessons")

// Default returns the course compiled into the binary.
func Default() (*models.Course, error) {
	return Parse(defaultCourseYAML)
}

// Load reads a course from path, or returns the embedded course when path is empty.
func Load(path string) (*models.Course, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course %s: %w", path, err)
	}
	course, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return course, nil
}

// Parse decodes and validates a YAML course definition.
func Parse(data []byte) (*models.Course, error) {
	var course models.Course
	if err := yaml.Unmarshal(data, &course); err != nil {
		return nil, fmt.Errorf("parse course: %w", err)
	}
	applyDefaults(&course)
	if err := Validate(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

func applyDefaults(course *models.Course) {
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}
	for i := range course.Lessons {
		l := &course.Lessons[i]
		l.ID = strings.TrimSpace(l.ID)
		if l.ID == "" {
			l.ID = fmt.Sprintf("step-%d", i+1)
		}
		l.Instruction = strings.TrimSpace(l.Instruction)
	}
}

// Validate checks the invariants the player relies on: at least one lesson,
// unique lesson ids and a title on every lesson.
func Validate(course *models.Course) error {
	if course.Title == "" {
		return errors.New("course title is required")
	}
	if !course.Level.Valid() {
		return fmt.Errorf("course %s: unknown level %q", course.ID, course.Level)
	}
	if len(course.Lessons) == 0 {
		return ErrNoLessons
	}
	seen := make(map[string]int, len(course.Lessons))
	for i, lesson := range course.Lessons {
		if prev, ok := seen[lesson.ID]; ok {
			return fmt.Errorf("lesson %d: duplicate id %q (also lesson %d)", i+1, lesson.ID, prev+1)
		}
		seen[lesson.ID] = i
		if strings.TrimSpace(lesson.Title) == "" {
			return fmt.Errorf("lesson %s: title is required", lesson.ID)
		}
	}
	return nil
}
