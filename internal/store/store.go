package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/db"
	"github.com/elstrm2/NutritionTracker/internal/service"
)

// timeLayout is fixed-width so that string comparison orders instants on every backend.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLStore implements service.Store on database/sql for SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

var _ service.Store = (*SQLStore)(nil)

func New(sqldb *sql.DB, dialect string) (*SQLStore, error) {
	switch dialect {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return &SQLStore{db: sqldb, dialect: dialect}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// q rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) q(query string) string {
	if s.dialect != db.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
