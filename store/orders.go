package store

import (
	"context"
	"fmt"

	models "github.com/blee0617/nd035-c4-Security-and-DevOps/model"
)

// CreateOrder inserts the order header and a copy of every item, setting
// o.ID and o.CreatedAt.
func (s *PostgresStore) CreateOrder(ctx context.Context, o *models.UserOrder) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx,
		`INSERT INTO user_orders (user_id, total) VALUES ($1, $2) RETURNING id, created_at`,
		o.UserID, o.Total,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if len(o.Items) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO order_items (order_id, item_id, name, price, description) VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range o.Items {
			if _, err := stmt.ExecContext(ctx, o.ID, it.ID, it.Name, it.Price, it.Description); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ListOrdersByUserID returns the user's orders oldest first, each with its
// item snapshot.
func (s *PostgresStore) ListOrdersByUserID(ctx context.Context, userID int64) ([]models.UserOrder, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, total, created_at FROM user_orders WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.UserOrder{}
	index := map[int64]int{}
	for rows.Next() {
		o := models.UserOrder{Items: []models.Item{}}
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.DB.QueryContext(ctx, `
		SELECT oi.order_id, oi.item_id, oi.name, oi.price, oi.description
		FROM order_items oi
		JOIN user_orders o ON o.id = oi.order_id
		WHERE o.user_id = $1
		ORDER BY oi.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		var it models.Item
		if err := itemRows.Scan(&orderID, &it.ID, &it.Name, &it.Price, &it.Description); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
