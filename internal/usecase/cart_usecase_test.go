package usecase

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddGroupsByVendor(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	uc := NewCartUsecase(s.Carts(), s.Products(), &seqIDs{})

	_, err := uc.AddToCart(ctx, "u-1", dto.AddCartItemRequest{ProductID: "p-shoes", Quantity: 1, VariationID: "v-42"})
	require.NoError(t, err)
	cart, err := uc.AddToCart(ctx, "u-1", dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Groups, 2)
	assert.Equal(t, vendorA, cart.Groups[0].VendorID)
	assert.Equal(t, "Alpha Outfitters", cart.Groups[0].VendorName)
	assert.Equal(t, vendorB, cart.Groups[1].VendorID)
	assert.True(t, money("139.98").Equal(cart.Total), cart.Total.String())
	assert.Equal(t, int64(2), cart.TotalItems)

	shoes := cart.Groups[0].Items[0]
	require.NotNil(t, shoes.Variation)
	assert.Equal(t, "42", shoes.Variation.Attributes["size"])
	assert.Equal(t, "Trail Shoes", shoes.ProductName)
}

func TestCart_AddMergesSameLine(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	uc := NewCartUsecase(s.Carts(), s.Products(), &seqIDs{})

	_, err := uc.AddToCart(ctx, "u-1", dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 1})
	require.NoError(t, err)
	cart, err := uc.AddToCart(ctx, "u-1", dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Groups, 1)
	require.Len(t, cart.Groups[0].Items, 1)
	assert.Equal(t, int64(3), cart.Groups[0].Items[0].Quantity)
	assert.True(t, money("149.97").Equal(cart.Total))
}

func TestCart_AddValidation(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	uc := NewCartUsecase(s.Carts(), s.Products(), &seqIDs{})

	tests := []struct {
		name   string
		userID string
		in     dto.AddCartItemRequest
		status int
	}{
		{"no user", "", dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 1}, http.StatusUnauthorized},
		{"no product", "u-1", dto.AddCartItemRequest{Quantity: 1}, http.StatusBadRequest},
		{"zero quantity", "u-1", dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 0}, http.StatusBadRequest},
		{"unknown product", "u-1", dto.AddCartItemRequest{ProductID: "p-none", Quantity: 1}, http.StatusBadRequest},
		{"inactive product", "u-1", dto.AddCartItemRequest{ProductID: "p-hidden", Quantity: 1}, http.StatusBadRequest},
		{"unknown variation", "u-1", dto.AddCartItemRequest{ProductID: "p-shoes", Quantity: 1, VariationID: "v-99"}, http.StatusBadRequest},
		{"over stock", "u-1", dto.AddCartItemRequest{ProductID: "p-shoes", Quantity: 6}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.AddToCart(ctx, tt.userID, tt.in)
			assertHTTPStatus(t, err, tt.status)
		})
	}
}

func TestCart_UpdateDeleteClear(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	uc := NewCartUsecase(s.Carts(), s.Products(), &seqIDs{})

	cart, err := uc.AddToCart(ctx, "u-1", dto.AddCartItemRequest{ProductID: "p-cap", Quantity: 1})
	require.NoError(t, err)
	itemID := cart.Groups[0].Items[0].ID

	cart, err = uc.UpdateCartItem(ctx, "u-1", itemID, dto.UpdateCartItemRequest{Quantity: 4})
	require.NoError(t, err)
	assert.True(t, money("199.96").Equal(cart.Total))

	_, err = uc.UpdateCartItem(ctx, "u-1", itemID, dto.UpdateCartItemRequest{Quantity: 11})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	// 他人の明細は404
	_, err = uc.UpdateCartItem(ctx, "u-2", itemID, dto.UpdateCartItemRequest{Quantity: 1})
	assertHTTPStatus(t, err, http.StatusNotFound)
	_, err = uc.DeleteCartItem(ctx, "u-2", itemID)
	assertHTTPStatus(t, err, http.StatusNotFound)

	cart, err = uc.DeleteCartItem(ctx, "u-1", itemID)
	require.NoError(t, err)
	assert.Empty(t, cart.Groups)
	assert.True(t, cart.Total.IsZero())

	_, err = uc.AddToCart(ctx, "u-1", dto.AddCartItemRequest{ProductID: "p-shoes", Quantity: 2})
	require.NoError(t, err)
	cart, err = uc.ClearCart(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, int64(0), cart.TotalItems)
}
