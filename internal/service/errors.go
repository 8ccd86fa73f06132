package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound     = errors.New("task not found")
	ErrAmbiguous    = errors.New("task id prefix matches more than one task")
	ErrNotCompleted = errors.New("occurrence is not completed")
)

// ValidationError lists every problem found in a task input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
