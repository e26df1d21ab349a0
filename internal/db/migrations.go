package db

import (
	"fmt"
)

// columnMigration adds a column to databases created before it existed
type columnMigration struct {
	table  string
	column string
	ddl    string
}

var migrations = []columnMigration{
	{
		table:  "projects",
		column: "due_date",
		ddl:    `ALTER TABLE projects ADD COLUMN due_date DATETIME`,
	},
	{
		table:  "tasks",
		column: "title",
		ddl:    `ALTER TABLE tasks ADD COLUMN title TEXT NOT NULL DEFAULT ''`,
	},
	{
		table:  "tasks",
		column: "completed_at",
		ddl:    `ALTER TABLE tasks ADD COLUMN completed_at DATETIME`,
	},
}

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	for _, m := range migrations {
		if err := db.runColumnMigration(m); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) runColumnMigration(m columnMigration) error {
	// Check if the column exists
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		m.table, m.column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for %s.%s: %w", m.table, m.column, err)
	}
	if count > 0 {
		return nil
	}

	db.logger.Info("Running migration", "table", m.table, "column", m.column)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(m.ddl)
	if err != nil && err.Error() != "duplicate column name: "+m.column {
		return fmt.Errorf("adding %s.%s: %w", m.table, m.column, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}

	db.logger.Info("Migration completed", "table", m.table, "column", m.column)
	return nil
}
