package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	models "github.com/blee0617/nd035-c4-Security-and-DevOps/model"
)

// unique_violation
const pqUniqueViolation = "23505"

// PostgresStore is a Store backed by Postgres.
type PostgresStore struct {
	DB *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

const selectUser = `
	SELECT u.id, u.username, u.password, c.id, c.total
	FROM users u
	JOIN carts c ON c.user_id = u.id
	`

func (s *PostgresStore) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findUser(ctx, selectUser+`WHERE u.id = $1`, id)
}

func (s *PostgresStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, selectUser+`WHERE u.username = $1`, username)
}

func (s *PostgresStore) findUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u := &models.User{Cart: &models.Cart{}}
	err := s.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Password, &u.Cart.ID, &u.Cart.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Cart.UserID = u.ID

	items, err := s.cartItems(ctx, u.Cart.ID)
	if err != nil {
		return nil, err
	}
	u.Cart.Items = items
	return u, nil
}

func (s *PostgresStore) cartItems(ctx context.Context, cartID int64) ([]models.Item, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT i.id, i.name, i.price, i.description
		FROM cart_items ci
		JOIN items i ON i.id = ci.item_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// no-op once committed
	defer func() { _ = tx.Rollback() }()

	var userID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id`,
		u.Username, u.Password,
	).Scan(&userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}

	cart := models.NewCart(userID)
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO carts (user_id, total) VALUES ($1, $2) RETURNING id`,
		userID, cart.Total,
	).Scan(&cart.ID); err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	u.ID = userID
	u.Cart = cart
	return nil
}

// SaveCart rewrites the cart's item rows in list order and stores the total,
// all in one transaction.
func (s *PostgresStore) SaveCart(ctx context.Context, c *models.Cart) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE carts SET total = $1 WHERE id = $2`, c.Total, c.ID)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if ra, _ := res.RowsAffected(); ra == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	if len(c.Items) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO cart_items (cart_id, item_id) VALUES ($1, $2)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range c.Items {
			if _, err := stmt.ExecContext(ctx, c.ID, it.ID); err != nil {
				return fmt.Errorf("insert cart item: %w", err)
			}
		}
	}

	return tx.Commit()
}

func scanItems(rows *sql.Rows) ([]models.Item, error) {
	out := []models.Item{}
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Description); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
