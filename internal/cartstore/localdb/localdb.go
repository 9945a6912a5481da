// Package localdb is the client's durable slot: a small SQLite file holding
// the serialized cart and the opaque bearer token under fixed keys, so the
// cart survives restarts without a server round-trip.
package localdb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"domcart/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	keyCart      = "cart"
	keyAuthToken = "auth_token"
)

// Store implements cartstore.LocalStore and cartstore.TokenSource on one
// SQLite file.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite file at path, creating it if needed, and
// applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to local db: %w", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing local db: %w", err)
	}
	return nil
}

// LoadCart returns the persisted cart, or nil when none was ever saved.
func (s *Store) LoadCart(ctx context.Context) ([]domain.CartItem, error) {
	raw, err := s.get(ctx, keyCart)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding persisted cart: %w", err)
	}
	return items, nil
}

// SaveCart replaces the persisted cart wholesale.
func (s *Store) SaveCart(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	return s.set(ctx, keyCart, string(raw))
}

// Token returns the stored bearer token, "" when absent. The token is opaque
// here; its lifecycle belongs to the auth collaborator.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.get(ctx, keyAuthToken)
}

// SetToken stores the bearer token after a login.
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAuthToken, token)
}

// ClearToken drops the stored token on logout.
func (s *Store) ClearToken(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_state WHERE key = ?`, keyAuthToken)
	if err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM local_state WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO local_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}
