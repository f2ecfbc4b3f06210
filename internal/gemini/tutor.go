package gemini

import (
	"context"
	"strings"

	"steam4all/internal/logger"
)

const (
	// TutorOfflineReply is the model turn appended when the tutor cannot be reached
	TutorOfflineReply = "Sorry, I'm having trouble connecting to the network right now."
	// TutorEmptyReply is used when the model answers with no text
	TutorEmptyReply = "I couldn't generate a hint right now. Try again!"
)

// Tutor answers learner questions about their code
type Tutor struct {
	gen Generator
	log *logger.Logger
}

func NewTutor(gen Generator, log *logger.Logger) *Tutor {
	return &Tutor{gen: gen, log: log}
}

// TutorPrompt builds the prompt for a question about source
func TutorPrompt(source, question string) string {
	var b strings.Builder
	b.WriteString("\nYou are a supportive, encouraging coding tutor for a beginner student.\n")
	b.WriteString("The student is working on this Python code:\n\n```python\n")
	b.WriteString(source)
	b.WriteString("\n```\n\n")
	b.WriteString(`The student asks: "` + question + "\"\n\n")
	b.WriteString("Provide a short, clear, and encouraging explanation.\n")
	b.WriteString("Avoid giving the direct answer immediately; guide them to the solution.\n")
	b.WriteString("Keep it under 3 sentences if possible.\n")
	return b.String()
}

// Explain always returns something to show in the chat.
func (t *Tutor) Explain(ctx context.Context, source, question string) string {
	text, err := t.gen.Generate(ctx, TutorPrompt(source, question))
	if err != nil {
		t.log.Warn("gemini tutor failed", "error", err)
		return TutorOfflineReply
	}
	if strings.TrimSpace(text) == "" {
		return TutorEmptyReply
	}
	return text
}
