package models

import "strings"

// Level is the difficulty tier a course is aimed at
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether l is one of the known levels
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Lesson is one step of a course. Lessons are defined at build time and never mutated.
type Lesson struct {
	ID                    string `yaml:"id" json:"id"`
	Title                 string `yaml:"title" json:"title"`
	Description           string `yaml:"description,omitempty" json:"description,omitempty"`
	Instruction           string `yaml:"instruction" json:"instruction"`
	InitialCode           string `yaml:"initial_code" json:"initialCode"`
	ExpectedOutputKeyword string `yaml:"expected_output_keyword,omitempty" json:"expectedOutputKeyword,omitempty"`
}

// HasSuccessCriterion reports whether the lesson gates forward navigation on run output
func (l Lesson) HasSuccessCriterion() bool {
	return l.ExpectedOutputKeyword != ""
}

// SatisfiedBy reports whether a run result completes the lesson's task: no
// error flag and the expected keyword appears in the output (case-sensitive).
// Lessons without a keyword are never satisfied.
func (l Lesson) SatisfiedBy(r ExecutionResult) bool {
	return !r.IsError && l.HasSuccessCriterion() && strings.Contains(r.Output, l.ExpectedOutputKeyword)
}

// Course is an ordered, immutable sequence of lessons plus metadata
type Course struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Level       Level    `yaml:"level" json:"level"`
	Duration    string   `yaml:"duration" json:"duration"`
	Lessons     []Lesson `yaml:"lessons" json:"lessons"`
}

// LessonCount returns the number of lessons in the course
func (c *Course) LessonCount() int {
	return len(c.Lessons)
}

// LastIndex returns the index of the final lesson
func (c *Course) LastIndex() int {
	return len(c.Lessons) - 1
}
