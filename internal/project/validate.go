package project

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalid is returned by stores when a project fails validation
var ErrInvalid = errors.New("project is invalid")

// Errors holds validation messages keyed by field name
type Errors map[string][]string

// Add records a message against a field
func (e *Errors) Add(field, message string) {
	if *e == nil {
		*e = make(Errors)
	}
	(*e)[field] = append((*e)[field], message)
}

// Any reports whether there is at least one message
func (e Errors) Any() bool {
	return len(e) > 0
}

// On returns the messages recorded for a field
func (e Errors) On(field string) []string {
	return e[field]
}

// Full returns "field message" strings sorted by field
func (e Errors) Full() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		for _, msg := range e[f] {
			out = append(out, f+" "+msg)
		}
	}
	return out
}

// Validate checks the task's fields and replaces its Errors
func (t *Task) Validate() bool {
	t.Errors = nil
	if strings.TrimSpace(t.Title) == "" {
		t.Errors.Add("title", "can't be blank")
	}
	if t.Size <= 0 {
		t.Errors.Add("size", "must be greater than 0")
	}
	if t.Order <= 0 {
		t.Errors.Add("order", "must be greater than 0")
	}
	return !t.Errors.Any()
}

// Validate checks the project and every task, replacing all Errors. It
// returns true when nothing is wrong.
func (p *Project) Validate() bool {
	p.Errors = nil
	if strings.TrimSpace(p.Name) == "" {
		p.Errors.Add("name", "can't be blank")
	}

	seen := make(map[int]bool, len(p.Tasks))
	for i, t := range p.Tasks {
		if !t.Validate() {
			p.Errors.Add("tasks", fmt.Sprintf("task %d is invalid: %s", i+1, strings.Join(t.Errors.Full(), ", ")))
		}
		if t.Order > 0 && seen[t.Order] {
			p.Errors.Add("tasks", fmt.Sprintf("order %d is used more than once", t.Order))
		}
		seen[t.Order] = true
	}
	return !p.Errors.Any()
}

// ValidationError wraps ErrInvalid with the offending project's messages
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(e.Errors.Full(), "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}
