package repository

import (
	"context"
	"errors"
	"fmt"

	"bookshelf-backend/internal/domains/entry/model"
	pkgdb "bookshelf-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// postgresRepository - raw SQL on pgxpool
type postgresRepository struct {
	pool  *pgxpool.Pool
	table string // already quoted
}

// NewPostgresRepository - constructor, table is quoted here
func NewPostgresRepository(pool *pgxpool.Pool, table string) Repository {
	return &postgresRepository{
		pool:  pool,
		table: pq.QuoteIdentifier(table),
	}
}

const entryColumns = "title, author, start_date, end_date, rating, notes"

func (r *postgresRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			title      TEXT PRIMARY KEY,
			author     TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date   DATE,
			rating     TEXT,
			notes      TEXT
		)`, r.table)

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table, err)
	}
	return nil
}

func (r *postgresRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE title = $1)`, r.table)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check title: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) GetByTitle(ctx context.Context, title string) (*model.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE title = $1`, entryColumns, r.table)

	e, err := scanPostgresEntry(r.pool.QueryRow(ctx, query, title))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

func (r *postgresRepository) ListTitles(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT title FROM %s`, r.table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}

	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan titles: %w", err)
	}
	return titles, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, entryColumns, r.table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanPostgresEntry(rows)
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

func (r *postgresRepository) Create(ctx context.Context, e *model.Entry) (*model.Entry, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, r.table, entryColumns, entryColumns)

	created, err := scanPostgresEntry(r.pool.QueryRow(ctx, query,
		e.Title, e.Author, e.StartDate, e.EndDate, e.Rating, e.Notes,
	))
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, model.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return created, nil
}

func (r *postgresRepository) Update(ctx context.Context, title string, fn UpdateFunc) (*model.Entry, error) {
	selectQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE title = $1 FOR UPDATE`, entryColumns, r.table)
	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET author = $2, start_date = $3, end_date = $4, rating = $5, notes = $6
		WHERE title = $1`, r.table)

	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Entry, error) {
		e, err := scanPostgresEntry(tx.QueryRow(ctx, selectQuery, title))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEntryNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock entry: %w", err)
		}

		if err := fn(e); err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx, updateQuery,
			title, e.Author, e.StartDate, e.EndDate, e.Rating, e.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to update entry: %w", err)
		}

		e.Title = title
		return e, nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, title string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE title = $1`, r.table)

	tag, err := r.pool.Exec(ctx, query, title)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// ============================================
// HELPERS
// ============================================

func scanPostgresEntry(row rowScanner) (*model.Entry, error) {
	var e model.Entry
	if err := row.Scan(&e.Title, &e.Author, &e.StartDate, &e.EndDate, &e.Rating, &e.Notes); err != nil {
		return nil, err
	}
	e.StartDate = model.NormalizeDate(e.StartDate)
	if e.EndDate != nil {
		end := model.NormalizeDate(*e.EndDate)
		e.EndDate = &end
	}
	return &e, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
