package tabular

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLiteSink mirrors the output into a database table, one TEXT column
// per header entry. Begin drops and recreates the table so every run is
// a complete snapshot. The sink does not own the handle, callers close
// the database themselves.
type SQLiteSink struct {
	db     *sql.DB
	table  string
	insert *sql.Stmt
	width  int
}

func NewSQLiteSink(db *sql.DB, table string) *SQLiteSink {
	return &SQLiteSink{db: db, table: table}
}

func (s *SQLiteSink) Begin(ctx context.Context, header Header) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(s.table)))
	if err != nil {
		return fmt.Errorf("drop table %s: %w", s.table, err)
	}

	columns := make([]string, len(header))
	placeholders := make([]string, len(header))
	for i, name := range header {
		columns[i] = quoteIdent(name) + " TEXT"
		placeholders[i] = "?"
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE %s (%s)",
		quoteIdent(s.table),
		strings.Join(columns, ", "),
	))
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	insert, err := s.db.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s VALUES (%s)",
		quoteIdent(s.table),
		strings.Join(placeholders, ", "),
	))
	if err != nil {
		return err
	}
	s.insert = insert
	s.width = len(header)
	return nil
}

func (s *SQLiteSink) Write(ctx context.Context, row Row) error {
	if s.insert == nil {
		return errors.New("sqlite sink has not been started")
	}
	err := checkWidth(row, s.width)
	if err != nil {
		return err
	}

	args := make([]any, len(row))
	for i, cell := range row {
		args[i] = cell
	}
	_, err = s.insert.ExecContext(ctx, args...)
	return err
}

func (s *SQLiteSink) Close(ctx context.Context) error {
	if s.insert == nil {
		return nil
	}
	return s.insert.Close()
}

// column names come straight from flattened payload keys, so they are
// quoted rather than trusted
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
