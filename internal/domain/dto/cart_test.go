package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCart_Normalize_TwoVendorGroups(t *testing.T) {
	c := Cart{
		Groups: []VendorGroup{
			{VendorID: "v1", Items: []CartItem{{ID: "a", Quantity: 1, UnitPrice: price("89.99")}}},
			{VendorID: "v2", Items: []CartItem{{ID: "b", Quantity: 1, UnitPrice: price("49.99")}}},
		},
	}

	got := c.Normalize()

	assert.True(t, got.Total.Equal(price("139.98")), "total=%s", got.Total)
	assert.Equal(t, "139.98", got.Total.StringFixed(2))
	assert.Equal(t, int64(2), got.TotalItems)
}

func TestCart_Normalize_Invariants(t *testing.T) {
	c := Cart{
		Groups: []VendorGroup{
			{VendorID: "v1", Subtotal: price("1"), Items: []CartItem{
				{ID: "a", Quantity: 3, UnitPrice: price("10.10")},
				{ID: "b", Quantity: 2, UnitPrice: price("0.35")},
			}},
			{VendorID: "v2", Items: []CartItem{{ID: "c", Quantity: 4, UnitPrice: price("2.50")}}},
		},
		TotalItems: 99,
	}

	got := c.Normalize()

	var qty int64
	total := decimal.Zero
	for _, g := range got.Groups {
		sub := decimal.Zero
		for _, it := range g.Items {
			qty += it.Quantity
			sub = sub.Add(it.Subtotal)
		}
		assert.True(t, g.Subtotal.Equal(sub), "group %s subtotal=%s want %s", g.VendorID, g.Subtotal, sub)
		total = total.Add(g.Subtotal)
	}
	assert.Equal(t, qty, got.TotalItems)
	assert.True(t, got.Total.Equal(total))
	assert.Equal(t, "41.00", got.Total.StringFixed(2))
}

func TestCart_Normalize_DropsEmptyGroups(t *testing.T) {
	c := Cart{
		Groups: []VendorGroup{
			{VendorID: "v1", Items: []CartItem{}},
			{VendorID: "v2", Items: []CartItem{{ID: "c", Quantity: 1, UnitPrice: price("5")}}},
		},
	}

	got := c.Normalize()

	require.Len(t, got.Groups, 1)
	assert.Equal(t, "v2", got.Groups[0].VendorID)
	assert.False(t, got.IsEmpty())
	assert.True(t, Cart{}.Normalize().IsEmpty())
}

func TestCart_JSON_MoneyAsNumber(t *testing.T) {
	c := Cart{Total: price("139.98")}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"total":139.98`)

	var back Cart
	require.NoError(t, json.Unmarshal([]byte(`{"total":139.98,"groups":[]}`), &back))
	assert.True(t, back.Total.Equal(price("139.98")))
}
