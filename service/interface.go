package service

import (
	"context"

	models "github.com/blee0617/nd035-c4-Security-and-DevOps/model"
)

type ServiceInterface interface {
	RegisterUser(ctx context.Context, username, password, confirmPassword string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)

	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	FindItemsByName(ctx context.Context, name string) ([]models.Item, error)

	AddToCart(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error)

	SubmitOrder(ctx context.Context, username string) (*models.UserOrder, error)
	OrderHistory(ctx context.Context, username string) ([]models.UserOrder, error)
}
