package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
)

// JSONPrinter prints task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// listItem represents a task in the list output (subset of fields).
type listItem struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	ProgressPercent int       `json:"progress_percent"`
	ErrorCount      int       `json:"error_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// statusOutput represents the full task status output.
type statusOutput struct {
	ID                 string     `json:"id,omitempty"`
	Status             string     `json:"status,omitempty"`
	StatusText         string     `json:"status_text"`
	Color              string     `json:"color"`
	ProgressPercent    int        `json:"progress_percent"`
	TotalUnits         int        `json:"total_units"`
	CompletedUnits     int        `json:"completed_units"`
	ErrorCount         int        `json:"error_count"`
	EstimatedRemaining string     `json:"estimated_remaining,omitempty"`
	Actions            []string   `json:"actions"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintList prints tasks in JSON format with a subset of fields.
func (j *JSONPrinter) PrintList(tasks []model.TaskSnapshot) error {
	items := make([]listItem, len(tasks))
	for i, t := range tasks {
		items[i] = listItem{
			ID:              t.ID,
			Status:          string(t.Status),
			ProgressPercent: t.ProgressPercent,
			ErrorCount:      t.ErrorCount,
			CreatedAt:       t.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintStatus prints the detailed task status in JSON format.
func (j *JSONPrinter) PrintStatus(view monitor.View) error {
	output := statusOutput{
		StatusText:         view.StatusText(),
		Color:              string(view.Color()),
		ProgressPercent:    view.ProgressPercent(),
		EstimatedRemaining: view.EstimatedTimeRemaining().String(),
		Actions:            actions(view),
	}

	if s := view.Snapshot(); s != nil {
		output.ID = s.ID
		output.Status = string(s.Status)
		output.TotalUnits = s.TotalUnits
		output.CompletedUnits = s.CompletedUnits
		output.ErrorCount = s.ErrorCount

		createdAt := s.CreatedAt.UTC()
		output.CreatedAt = &createdAt
		if s.CompletedAt != nil {
			utcTime := s.CompletedAt.UTC()
			output.CompletedAt = &utcTime
		}
	}

	return j.encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// actions returns the commands allowed in the view.
func actions(view monitor.View) []string {
	actions := []string{}
	if view.CanStart() {
		actions = append(actions, string(monitor.CommandStart))
	}
	if view.CanStop() {
		actions = append(actions, string(monitor.CommandStop))
	}
	if view.CanRestart() {
		actions = append(actions, string(monitor.CommandRestart))
	}
	return actions
}
