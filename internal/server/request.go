package server

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/date"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// optional distinguishes an absent JSON field from an explicit null.
type optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only called for fields present in the body.
func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type createRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsImportant *bool   `json:"is_important"`
	DeadlineAt  *string `json:"deadline_at"`
}

func (r createRequest) toInput(now time.Time) (board.CreateInput, error) {
	in := board.CreateInput{Title: r.Title, IsImportant: r.IsImportant}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if r.DeadlineAt != nil {
		d, err := parseDeadline(*r.DeadlineAt, now)
		if err != nil {
			return board.CreateInput{}, err
		}
		in.DeadlineAt = &d
	}
	return in, nil
}

// updateRequest mirrors the mutable task fields. Derived fields such as
// is_urgent and quadrant are not listed, so a body carrying them has no effect.
type updateRequest struct {
	Title       optional[string] `json:"title"`
	Description optional[string] `json:"description"`
	IsImportant optional[bool]   `json:"is_important"`
	DeadlineAt  optional[string] `json:"deadline_at"`
	Completed   optional[bool]   `json:"completed"`
}

func (r updateRequest) toPatch(now time.Time) (board.Patch, error) {
	var p board.Patch
	if r.Title.Set {
		if r.Title.Null {
			return p, notNullable("title")
		}
		p.Title = &r.Title.Value
	}
	if r.Description.Set {
		if r.Description.Null {
			p.ClearDescription = true
		} else {
			p.Description = &r.Description.Value
		}
	}
	if r.IsImportant.Set {
		if r.IsImportant.Null {
			return p, notNullable("is_important")
		}
		p.IsImportant = &r.IsImportant.Value
	}
	if r.DeadlineAt.Set {
		if r.DeadlineAt.Null {
			p.ClearDeadline = true
		} else {
			d, err := parseDeadline(r.DeadlineAt.Value, now)
			if err != nil {
				return p, err
			}
			p.DeadlineAt = &d
		}
	}
	if r.Completed.Set {
		if r.Completed.Null {
			return p, notNullable("completed")
		}
		p.Completed = &r.Completed.Value
	}
	return p, nil
}

func parseDeadline(s string, now time.Time) (time.Time, error) {
	d, err := date.Parse(s, now)
	if err != nil {
		return time.Time{}, task.ValidateDate("deadline_at", s, err)
	}
	return d, nil
}

func notNullable(field string) error {
	return clierr.Newf(clierr.InvalidInput, "%s cannot be null", field).
		WithDetails(map[string]any{"field": field})
}

func badBody(err error) error {
	return clierr.Newf(clierr.InvalidInput, "invalid request body: %v", err)
}
