package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_PriceEncodesAsNumber(t *testing.T) {
	it := Item{ID: 1, Name: "Round Widget", Price: decimal.RequireFromString("2.99"), Description: "A widget that is round"}

	b, err := json.Marshal(it)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Round Widget","price":2.99,"description":"A widget that is round"}`, string(b))

	var back Item
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Price.Equal(it.Price), "price = %s", back.Price)
}

func TestCart_TotalEncodesAsNumber(t *testing.T) {
	c := NewCart(1)
	c.AddItem(lego(), 2)

	b, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "20", string(raw["total"]))
}
