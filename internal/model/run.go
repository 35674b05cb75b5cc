package model

import "time"

// RunStatus is the final outcome stored with a RunRecord.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one entry of the local run history.
//
// Only submissions that resolved AND were still the latest submission when
// they resolved get recorded — a superseded run never reached the screen, so
// it never reaches the history either.
//
// Input and Output hold the presenter's rendered text, not the raw JSON:
// history is for reading back what the operator saw.
type RunRecord struct {
	ID            string    `json:"id"`
	AlgorithmID   int       `json:"algorithmId"`
	AlgorithmName string    `json:"algorithmName"`
	RawInput      string    `json:"rawInput"`
	Status        RunStatus `json:"status"`
	Input         string    `json:"input"`
	Output        string    `json:"output"`
	ExecutionTime string    `json:"executionTime"`
	Error         string    `json:"error"`
	CreatedAt     time.Time `json:"createdAt"`
}
