package repository

import (
	"context"

	"bookshelf-backend/internal/domains/entry/model"
)

// UpdateFunc mutates the locked entry inside the update transaction.
type UpdateFunc func(e *model.Entry) error

// Repository is the Entry Store: one table keyed by title.
type Repository interface {
	// EnsureSchema creates the table when it does not exist yet.
	EnsureSchema(ctx context.Context) error

	// ExistsByTitle is an exact-match check.
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// GetByTitle returns model.ErrEntryNotFound when the exact title is absent.
	GetByTitle(ctx context.Context, title string) (*model.Entry, error)

	// ListTitles returns every stored title in store order.
	ListTitles(ctx context.Context) ([]string, error)

	// List returns every entry in store order.
	List(ctx context.Context) ([]model.Entry, error)

	// Create inserts the entry; a primary key violation is model.ErrDuplicateEntry.
	Create(ctx context.Context, e *model.Entry) (*model.Entry, error)

	// Update loads the exact title, applies fn and writes the result
	// in one transaction. Returns the stored entry.
	Update(ctx context.Context, title string, fn UpdateFunc) (*model.Entry, error)

	// Delete removes the exact title; model.ErrEntryNotFound if nothing was deleted.
	Delete(ctx context.Context, title string) error

	Ping(ctx context.Context) error
}

// rowScanner is satisfied by pgx.Row, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
