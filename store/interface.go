package store

import (
	"context"
	"errors"

	models "github.com/blee0617/nd035-c4-Security-and-DevOps/model"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserStore persists users together with their cart.
type UserStore interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// CreateUser inserts the user and an empty cart, setting u.ID and u.Cart.
	CreateUser(ctx context.Context, u *models.User) error
}

// ItemStore is the read-only catalog.
type ItemStore interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	FindItemByID(ctx context.Context, id int64) (*models.Item, error)
	FindItemsByName(ctx context.Context, name string) ([]models.Item, error)
}

type CartStore interface {
	// SaveCart replaces the stored item list and total of c.
	SaveCart(ctx context.Context, c *models.Cart) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.UserOrder) error
	ListOrdersByUserID(ctx context.Context, userID int64) ([]models.UserOrder, error)
}

type Store interface {
	UserStore
	ItemStore
	CartStore
	OrderStore

	Close() error
}
