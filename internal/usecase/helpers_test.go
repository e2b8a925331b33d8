package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/memory"
	"storefront/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// 連番ID
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := AsHTTPError(err)
	if assert.True(t, ok, "expected HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status, he.Message)
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testLog = logger.Discard()

const (
	vendorA = "vendor-a"
	vendorB = "vendor-b"
)

// 2出品者の商品を入れたストア
func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	products := []model.Product{
		{ID: "p-shoes", VendorID: vendorA, VendorName: "Alpha Outfitters", Name: "Trail Shoes", Price: money("89.99"), Stock: 5, IsActive: true,
			Variations: []model.Variation{{ID: "v-42", Attributes: map[string]string{"size": "42"}}}},
		{ID: "p-cap", VendorID: vendorB, VendorName: "Beta Goods", Name: "Cap", Price: money("49.99"), Stock: 10, IsActive: true},
		{ID: "p-hidden", VendorID: vendorB, VendorName: "Beta Goods", Name: "Hidden", Price: money("1.00"), Stock: 10, IsActive: false},
	}
	for _, p := range products {
		_, err := s.Products().Create(ctx, p)
		require.NoError(t, err)
	}
	return s
}

