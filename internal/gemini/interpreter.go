package gemini

import (
	"context"
	"strings"

	"steam4all/internal/logger"
	"steam4all/internal/models"
)

// ConnectionErrorOutput is shown in the console when the model cannot be reached
const ConnectionErrorOutput = "Error: Unable to connect to the AI execution engine. Please check your API key or internet connection."

const interpreterPrompt = `
You are a Python interpreter.
Execute the following Python code and return ONLY the textual output that would appear in the console.

Rules:
1. If the code runs successfully, return the output.
2. If there is a syntax error or runtime error, return the error message exactly as Python would.
3. Do not add markdown formatting (like ` + "```" + `) to the output. Return raw text.
4. Do not include phrases like "Here is the output". Just the output.

Code to execute:
`

// Interpreter simulates running Python by asking the model to role-play
// the interpreter. Nothing is executed locally.
type Interpreter struct {
	gen Generator
	log *logger.Logger
}

func NewInterpreter(gen Generator, log *logger.Logger) *Interpreter {
	return &Interpreter{gen: gen, log: log}
}

// InterpreterPrompt builds the prompt sent for source
func InterpreterPrompt(source string) string {
	return interpreterPrompt + source + "\n"
}

// Execute never fails. Python errors described by the model come back as
// ordinary output with IsError false; only a transport failure sets it.
func (i *Interpreter) Execute(ctx context.Context, source string) models.ExecutionResult {
	text, err := i.gen.Generate(ctx, InterpreterPrompt(source))
	if err != nil {
		i.log.Error("gemini execution failed", "error", err)
		return models.ExecutionResult{Output: ConnectionErrorOutput, IsError: true}
	}
	return models.ExecutionResult{Output: strings.TrimSpace(text)}
}
