package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"domcart/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresStore persists carts in a cart_items table keyed by
// (user_id, domain_name); position preserves insertion order across a
// replace.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies pending schema migrations. It takes a database/sql handle
// because goose does not speak pgx natively; cmd/server opens one through
// the pgx stdlib driver just for this.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectPostgres)); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT domain_name, price::text, currency, registration_period
		FROM cart_items
		WHERE user_id = $1
		ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying cart: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			item     domain.CartItem
			rawPrice string
		)
		if err := rows.Scan(&item.DomainName, &rawPrice, &item.Currency, &item.RegistrationPeriod); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, fmt.Errorf("price %q is not a decimal: %w", rawPrice, err)
		}
		item.Price = price
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cart rows: %w", err)
	}
	if items == nil {
		return nil, ErrCartNotFound
	}
	return items, nil
}

func (s *PostgresStore) ReplaceCart(ctx context.Context, userID string, items []domain.CartItem) error {
	if userID == "" {
		return fmt.Errorf("userID is empty")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clearing old cart: %w", err)
	}

	for position, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO cart_items (user_id, domain_name, price, currency, registration_period, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, domain_name) DO UPDATE SET
				price = excluded.price,
				currency = excluded.currency,
				registration_period = excluded.registration_period,
				position = excluded.position,
				updated_at = now()`,
			userID, item.DomainName, item.Price.String(), item.Currency, item.RegistrationPeriod, position)
		if err != nil {
			return fmt.Errorf("inserting cart item %s: %w", item.DomainName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing replace tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCart(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID is empty")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}
	return nil
}
