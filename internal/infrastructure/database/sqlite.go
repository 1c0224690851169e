package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB wraps a database/sql handle opened on modernc.org/sqlite.
// Used for single-file deployments and as the test backend.
type SQLiteDB struct {
	DB   *sql.DB
	Path string
}

// connPragmas are per-connection settings. They go in the DSN so the
// driver applies them to every connection the pool opens.
var connPragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
}

// sqliteDSN appends connPragmas to path as modernc _pragma parameters.
func sqliteDSN(path string) string {
	params := make([]string, 0, len(connPragmas))
	for _, p := range connPragmas {
		params = append(params, "_pragma="+url.QueryEscape(p))
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// OpenSQLite opens (or creates) the SQLite database at path.
// path may be ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// In-memory databases live per connection: keep exactly one, forever.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
	}

	sdb := &SQLiteDB{DB: db, Path: path}
	if err := sdb.Ping(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return sdb, nil
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("sqlite database is not open")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteDB) Close() error {
	if s.DB == nil {
		return nil
	}
	err := s.DB.Close()
	s.DB = nil
	return err
}
