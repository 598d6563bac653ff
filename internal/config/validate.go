package config

import (
	"fmt"
	"strings"
)

// Problem is one validation finding tied to a config field.
type Problem struct {
	Field   string
	Message string
}

// ValidationResult collects errors (config unusable, defaults applied
// wholesale) and warnings (single fields replaced with defaults).
type ValidationResult struct {
	Errors   []Problem
	Warnings []Problem
}

// AddError records a fatal problem.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, Problem{Field: field, Message: message})
}

// AddWarning records a recoverable problem.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, Problem{Field: field, Message: message})
}

// HasErrors reports whether any fatal problem was recorded.
func (r *ValidationResult) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// HasWarnings reports whether any recoverable problem was recorded.
func (r *ValidationResult) HasWarnings() bool {
	return r != nil && len(r.Warnings) > 0
}

// FormatErrors renders the error list for display.
func (r *ValidationResult) FormatErrors() string {
	return formatProblems(r.Errors)
}

// FormatWarnings renders the warning list for display.
func (r *ValidationResult) FormatWarnings() string {
	return formatProblems(r.Warnings)
}

func formatProblems(problems []Problem) string {
	var b strings.Builder
	for _, p := range problems {
		fmt.Fprintf(&b, "  %s: %s\n", p.Field, p.Message)
	}
	return b.String()
}
