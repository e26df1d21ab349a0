package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdxmph/gatherer/internal/project"
)

// maxOrderAttempts bounds AddTask retries when two writers race for an order
const maxOrderAttempts = 3

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	logger *log.Logger
}

// Open creates a new database connection
func Open(dbPath string) (*DB, error) {
	// Check if DB exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'gatherer init' to create it", dbPath)
	}

	// Immediate transactions serialize writers so order assignment sees a stable max
	dsn := dbPath + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn, logger: log.Default()}

	// Run any pending migrations
	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// SetLogger replaces the logger used for store events
func (db *DB) SetLogger(logger *log.Logger) {
	db.logger = logger
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

const projectColumns = `id, name, due_date`
const taskColumns = `id, project_id, title, size, task_order, completed_at`

// ListProjects returns all projects ordered by name, each with its tasks in order
func (db *DB) ListProjects() ([]*project.Project, error) {
	rows, err := db.conn.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project
	byID := make(map[int64]*project.Project)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := db.conn.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY project_id, task_order`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		t, err := scanTask(taskRows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		if p, ok := byID[t.ProjectID]; ok {
			p.Tasks = append(p.Tasks, t)
		}
	}

	return projects, taskRows.Err()
}

// GetProject retrieves a single project and its tasks by ID
func (db *DB) GetProject(id int64) (*project.Project, error) {
	p, err := scanProject(db.conn.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY task_order`, id)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		p.Tasks = append(p.Tasks, t)
	}

	return p, rows.Err()
}

// SaveProject validates a new project and inserts it with all of its tasks
// in one transaction. An invalid project is returned as a
// *project.ValidationError and nothing is written. IDs are only assigned
// once the transaction commits.
func (db *DB) SaveProject(p *project.Project) error {
	if p.ID != 0 {
		return fmt.Errorf("project %d is already saved", p.ID)
	}
	if !p.Validate() {
		return &project.ValidationError{Errors: p.Errors}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO projects (name, due_date, created_at, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		p.Name, NewNullTime(p.DueDate),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	projectID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting project ID: %w", err)
	}

	taskIDs := make([]int64, len(p.Tasks))
	for i, t := range p.Tasks {
		result, err := tx.Exec(
			`INSERT INTO tasks (project_id, title, size, task_order, completed_at) VALUES (?, ?, ?, ?, ?)`,
			projectID, t.Title, t.Size, t.Order, NewNullTime(t.CompletedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting task %q: %w", t.Title, err)
		}
		if taskIDs[i], err = result.LastInsertId(); err != nil {
			return fmt.Errorf("getting task ID: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing project: %w", err)
	}

	p.ID = projectID
	for i, t := range p.Tasks {
		t.ID = taskIDs[i]
		t.ProjectID = projectID
	}
	db.logger.Debug("Saved project", "id", p.ID, "tasks", len(p.Tasks))
	return nil
}

// AddTask appends a task to an existing project at the next free order
func (db *DB) AddTask(projectID int64, title string, size int) (*project.Task, error) {
	t := &project.Task{ProjectID: projectID, Title: strings.TrimSpace(title), Size: size, Order: 1}
	if !t.Validate() {
		return nil, &project.ValidationError{Errors: t.Errors}
	}

	for attempt := 1; ; attempt++ {
		err := db.insertNextTask(t)
		if err == nil {
			return t, nil
		}
		if !isUniqueViolation(err) || attempt >= maxOrderAttempts {
			return nil, err
		}
		db.logger.Warn("Task order conflict, retrying", "project", projectID, "attempt", attempt)
	}
}

func (db *DB) insertNextTask(t *project.Task) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM projects WHERE id = ?`, t.ProjectID).Scan(&exists); err != nil {
		return fmt.Errorf("checking project: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("project %d: %w", t.ProjectID, ErrNotFound)
	}

	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(task_order), 0) + 1 FROM tasks WHERE project_id = ?`, t.ProjectID,
	).Scan(&t.Order); err != nil {
		return fmt.Errorf("finding next task order: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO tasks (project_id, title, size, task_order) VALUES (?, ?, ?, ?)`,
		t.ProjectID, t.Title, t.Size, t.Order,
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting task ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing task: %w", err)
	}
	t.ID = id
	return nil
}

// CompleteTask marks a task as completed. A task that is already complete
// keeps its original timestamp.
func (db *DB) CompleteTask(taskID int64, at time.Time) error {
	result, err := db.conn.Exec(
		`UPDATE tasks SET completed_at = ? WHERE id = ? AND completed_at IS NULL`,
		at.UTC(), taskID,
	)
	if err != nil {
		return fmt.Errorf("completing task: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	return db.taskExists(taskID)
}

// ReopenTask clears a task's completion timestamp
func (db *DB) ReopenTask(taskID int64) error {
	result, err := db.conn.Exec(`UPDATE tasks SET completed_at = NULL WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("reopening task: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return nil
}

func (db *DB) taskExists(taskID int64) error {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM tasks WHERE id = ?`, taskID).Scan(&count); err != nil {
		return fmt.Errorf("checking task: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return nil
}

// SetDueDate updates or clears a project's due date
func (db *DB) SetDueDate(projectID int64, due *time.Time) error {
	result, err := db.conn.Exec(`UPDATE projects SET due_date = ? WHERE id = ?`, NewNullTime(due), projectID)
	if err != nil {
		return fmt.Errorf("updating due date: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}
	return nil
}

// DeleteProject permanently deletes a project and all of its tasks
func (db *DB) DeleteProject(projectID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete tasks first; the cascade covers databases opened without foreign keys
	if _, err := tx.Exec(`DELETE FROM tasks WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}

	return tx.Commit()
}
