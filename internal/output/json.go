package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the envelope for err.
func NewErrorResponse(err error) ErrorResponse {
	e := clierr.As(err)
	return ErrorResponse{Error: e.Message, Code: string(e.Code), Details: e.Details}
}

// JSONError writes a structured error to the given writer as JSON.
func JSONError(w io.Writer, err error) {
	_ = JSON(w, NewErrorResponse(err)) // best-effort; if writer fails, nothing we can do
}

// BatchResult represents the outcome of a single operation within a batch.
type BatchResult struct {
	ID    int    `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// TaskList is the JSON shape of a task listing. Query fields are set only
// for quadrant, status and search listings.
type TaskList struct {
	Quadrant string       `json:"quadrant,omitempty"`
	Status   string       `json:"status,omitempty"`
	Query    string       `json:"query,omitempty"`
	Count    int          `json:"count"`
	Tasks    []*task.Task `json:"tasks"`
}

// NewTaskList wraps tasks, encoding an empty result as [] rather than null.
func NewTaskList(tasks []*task.Task) TaskList {
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return TaskList{Count: len(tasks), Tasks: tasks}
}
