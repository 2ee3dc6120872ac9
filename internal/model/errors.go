// Package model has the domain types shared by the task server and the task monitor.
package model

import "errors"

var (
	// ErrNotFound is returned when a task is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a task already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a task or its data is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrInvalidState is returned when an operation is not possible in the current task state.
	ErrInvalidState = errors.New("invalid state")
)
