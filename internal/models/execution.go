package models

// ExecutionResult is the outcome of one simulated run
type ExecutionResult struct {
	Output  string `json:"output"`
	IsError bool   `json:"isError"`
}
