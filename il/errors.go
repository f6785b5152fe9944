package il

import (
	"errors"
	"fmt"
)

// ErrPatternNotFound reports that a structural pattern was not located in a
// routine body. For a required patch it means the routine changed shape.
var ErrPatternNotFound = errors.New("il: pattern not located")

type PatternError struct {
	Body    string
	Pattern string
	From    int
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("il: %s: pattern %q not located after instruction %d", e.Body, e.Pattern, e.From)
}

func (e *PatternError) Unwrap() error {
	return ErrPatternNotFound
}
