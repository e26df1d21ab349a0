package db

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/pdxmph/gatherer/internal/project"
)

// ErrNotFound is returned when a project or task does not exist
var ErrNotFound = errors.New("not found")

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*project.Project, error) {
	var p project.Project
	var due sql.NullTime
	if err := s.Scan(&p.ID, &p.Name, &due); err != nil {
		return nil, err
	}
	p.DueDate = timePtr(due)
	p.Name = cleanName(p.Name)
	return &p, nil
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// cleanName puts a stored name on one line and trims it
func cleanName(name string) string {
	return strings.TrimSpace(newlines.Replace(name))
}

func scanTask(s scanner) (*project.Task, error) {
	var t project.Task
	var completed sql.NullTime
	if err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Size, &t.Order, &completed); err != nil {
		return nil, err
	}
	t.CompletedAt = timePtr(completed)
	return &t, nil
}

// NewNullTime creates a sql.NullTime from an optional time
func NewNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
