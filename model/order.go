package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserOrder is an immutable snapshot of a user's cart taken at submission time.
type UserOrder struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Username  string          `json:"username"`
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewOrderFromCart copies the cart's items so that later cart changes do not
// leak into the order.
func NewOrderFromCart(u *User, c *Cart) *UserOrder {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return &UserOrder{
		UserID:   u.ID,
		Username: u.Username,
		Items:    items,
		Total:    c.Total,
	}
}
