package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	models "github.com/blee0617/nd035-c4-Security-and-DevOps/model"
)

// ListItems returns the whole catalog in id order.
func (s *PostgresStore) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, price, description FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *PostgresStore) FindItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var it models.Item
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, price, description FROM items WHERE id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.Price, &it.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &it, nil
}

// FindItemsByName returns every item with exactly this name. An empty result
// is not an error here.
func (s *PostgresStore) FindItemsByName(ctx context.Context, name string) ([]models.Item, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, price, description FROM items WHERE name = $1 ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("query items by name: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}
