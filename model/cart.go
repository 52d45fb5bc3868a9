package models

import "github.com/shopspring/decimal"

// Cart is an ordered list of items; an item appears once per unit.
// Total is kept equal to the sum of the item prices.
type Cart struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Items  []Item          `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// NewCart returns an empty cart for the given user.
func NewCart(userID int64) *Cart {
	return &Cart{UserID: userID, Items: []Item{}, Total: decimal.Zero}
}

// AddItem appends qty copies of item and bumps the total by price*qty.
func (c *Cart) AddItem(item Item, qty int) {
	if qty <= 0 {
		return
	}
	if c.Items == nil {
		c.Items = make([]Item, 0, qty)
	}
	for i := 0; i < qty; i++ {
		c.Items = append(c.Items, item)
	}
	c.Total = c.Total.Add(item.Price.Mul(decimal.NewFromInt(int64(qty))))
}

// RemoveItem drops up to qty occurrences of the item with the given id and
// returns how many were actually removed. Units that are not in the cart are
// ignored; the total never goes below zero.
func (c *Cart) RemoveItem(item Item, qty int) int {
	if qty <= 0 {
		return 0
	}
	kept := make([]Item, 0, len(c.Items))
	removed := 0
	for _, it := range c.Items {
		if it.ID == item.ID && removed < qty {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
	c.Total = c.Total.Sub(item.Price.Mul(decimal.NewFromInt(int64(removed))))
	if c.Total.IsNegative() {
		c.Total = decimal.Zero
	}
	return removed
}
