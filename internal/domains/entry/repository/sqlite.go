package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookshelf-backend/internal/domains/entry/model"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteRepository stores dates as YYYY-MM-DD text so the driver never
// guesses at time conversions.
type sqliteRepository struct {
	db    *sql.DB
	table string // already quoted
}

func NewSQLiteRepository(db *sql.DB, table string) Repository {
	return &sqliteRepository{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

func (r *sqliteRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			title      TEXT PRIMARY KEY NOT NULL,
			author     TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT,
			rating     TEXT,
			notes      TEXT
		)`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table, err)
	}
	return nil
}

func (r *sqliteRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE title = ?)`, r.table)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check title: %w", err)
	}
	return exists, nil
}

func (r *sqliteRepository) GetByTitle(ctx context.Context, title string) (*model.Entry, error) {
	return r.getByTitle(ctx, r.db, title)
}

func (r *sqliteRepository) ListTitles(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT title FROM %s`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	defer rows.Close()

	titles := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return titles, nil
}

func (r *sqliteRepository) List(ctx context.Context) ([]model.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, entryColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

func (r *sqliteRepository) Create(ctx context.Context, e *model.Entry) (*model.Entry, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?)`, r.table, entryColumns)

	_, err := r.db.ExecContext(ctx, query, sqliteArgs(e)...)
	if err != nil {
		if isSQLiteConstraint(err) {
			return nil, model.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return r.GetByTitle(ctx, e.Title)
}

func (r *sqliteRepository) Update(ctx context.Context, title string, fn UpdateFunc) (*model.Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	e, err := r.getByTitle(ctx, tx, title)
	if err != nil {
		return nil, err
	}

	if err := fn(e); err != nil {
		return nil, err
	}
	e.Title = title

	query := fmt.Sprintf(`
		UPDATE %s
		SET author = ?, start_date = ?, end_date = ?, rating = ?, notes = ?
		WHERE title = ?`, r.table)

	args := sqliteArgs(e)
	if _, err := tx.ExecContext(ctx, query, append(args[1:], title)...); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return e, nil
}

func (r *sqliteRepository) Delete(ctx context.Context, title string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE title = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, title)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}

func (r *sqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================
// HELPERS
// ============================================

// querier is *sql.DB or *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *sqliteRepository) getByTitle(ctx context.Context, q querier, title string) (*model.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE title = ?`, entryColumns, r.table)

	e, err := scanSQLiteEntry(q.QueryRowContext(ctx, query, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// sqliteArgs follows entryColumns order.
func sqliteArgs(e *model.Entry) []any {
	var end sql.NullString
	if e.EndDate != nil {
		end = sql.NullString{String: model.FormatDate(*e.EndDate), Valid: true}
	}
	return []any{
		e.Title,
		e.Author,
		model.FormatDate(e.StartDate),
		end,
		nullString(e.Rating),
		nullString(e.Notes),
	}
}

func scanSQLiteEntry(row rowScanner) (*model.Entry, error) {
	var (
		e             model.Entry
		start         string
		end           sql.NullString
		rating, notes sql.NullString
	)
	if err := row.Scan(&e.Title, &e.Author, &start, &end, &rating, &notes); err != nil {
		return nil, err
	}

	startDate, err := model.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("stored start_date %q: %w", start, err)
	}
	e.StartDate = startDate

	if end.Valid {
		endDate, err := model.ParseDate(end.String)
		if err != nil {
			return nil, fmt.Errorf("stored end_date %q: %w", end.String, err)
		}
		e.EndDate = &endDate
	}
	if rating.Valid {
		e.Rating = &rating.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	return &e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isSQLiteConstraint(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended result codes disabled on this connection
		return true
	}
	return false
}
