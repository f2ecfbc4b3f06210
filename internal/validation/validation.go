// Package validation checks learner input before it reaches the player.
package validation

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MaxCodeBytes bounds the editor buffer
	MaxCodeBytes = 64 << 10
	// MaxQuestionRunes bounds a tutor question
	MaxQuestionRunes = 2000
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateCode checks the editor buffer. Empty code is allowed.
func ValidateCode(code string) error {
	if len(code) > MaxCodeBytes {
		return ValidationError{Field: "code", Message: fmt.Sprintf("code must be at most %d KB", MaxCodeBytes>>10)}
	}
	if !utf8.ValidString(code) {
		return ValidationError{Field: "code", Message: "code must be valid UTF-8 text"}
	}
	return nil
}

// ValidateQuestion checks a tutor question's size and encoding. Blank
// questions are left to the player, which refuses them.
func ValidateQuestion(question string) error {
	if !utf8.ValidString(question) {
		return ValidationError{Field: "message", Message: "message must be valid UTF-8 text"}
	}
	if utf8.RuneCountInString(question) > MaxQuestionRunes {
		return ValidationError{Field: "message", Message: fmt.Sprintf("message must be at most %d characters", MaxQuestionRunes)}
	}
	return nil
}
