// Package cart はサーバーのカートを手元に写して持つ。
// 書き込みのあとは必ず取り直し、ローカルで計算した状態は確定扱いしない。
package cart

import (
	"context"
	"errors"
	"maps"
	"net/url"
	"strings"
	"sync"

	"storefront/internal/client/api"
	"storefront/internal/domain/dto"

	"github.com/sirupsen/logrus"
)

const PathCart = "/cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductRequired = errors.New("product is required")
	ErrItemRequired    = errors.New("cart item is required")
)

type Store struct {
	api api.Doer
	log *logrus.Logger

	mu       sync.RWMutex
	cart     dto.Cart
	loaded   bool
	inflight int
	// Resetのたびに進める。古い取得結果を捨てるため。
	gen uint64
}

func New(c api.Doer, log *logrus.Logger) *Store {
	return &Store{api: c, log: log}
}

// Get はサーバーのカートを取り直して保持する
func (s *Store) Get(ctx context.Context) (dto.Cart, error) {
	defer s.begin()()
	return s.fetch(ctx)
}

func (s *Store) AddItem(ctx context.Context, productID string, quantity int64, variationID string) (dto.Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return dto.Cart{}, ErrProductRequired
	}
	if quantity < 1 {
		return dto.Cart{}, ErrInvalidQuantity
	}

	body := dto.AddCartItemRequest{ProductID: productID, Quantity: quantity, VariationID: variationID}
	return s.mutate(ctx, api.Post(PathCart, body))
}

func (s *Store) UpdateItem(ctx context.Context, itemID string, quantity int64) (dto.Cart, error) {
	if itemID == "" {
		return dto.Cart{}, ErrItemRequired
	}
	if quantity < 1 {
		return dto.Cart{}, ErrInvalidQuantity
	}
	return s.mutate(ctx, api.Put(itemPath(itemID), dto.UpdateCartItemRequest{Quantity: quantity}))
}

func (s *Store) RemoveItem(ctx context.Context, itemID string) (dto.Cart, error) {
	if itemID == "" {
		return dto.Cart{}, ErrItemRequired
	}
	return s.mutate(ctx, api.Delete(itemPath(itemID)))
}

func (s *Store) Clear(ctx context.Context) (dto.Cart, error) {
	return s.mutate(ctx, api.Delete(PathCart))
}

// Snapshot は保持中のカートのコピー
func (s *Store) Snapshot() dto.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.cart)
}

// Loaded は一度でも取得に成功したか
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Loading は呼び出しが1つでも実行中か
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Reset はログアウト時に状態を捨てる。実行中の取得結果も反映しない。
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = dto.Cart{}
	s.loaded = false
	s.gen++
}

// mutate は書き込み1回、成功したら取り直し1回
func (s *Store) mutate(ctx context.Context, req api.Request) (dto.Cart, error) {
	defer s.begin()()

	if err := s.api.Do(ctx, req, nil); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"method": req.Method,
			"path":   req.Path,
		}).Warn("cart write failed")
		return dto.Cart{}, err
	}
	return s.fetch(ctx)
}

func (s *Store) fetch(ctx context.Context) (dto.Cart, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	var c dto.Cart
	if err := s.api.Do(ctx, api.Get(PathCart), &c); err != nil {
		return dto.Cart{}, err
	}
	c = c.Normalize()

	s.mu.Lock()
	// 後から解決したものが勝つ
	if gen == s.gen {
		s.cart = c
		s.loaded = true
	}
	s.mu.Unlock()

	return clone(c), nil
}

func (s *Store) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

func itemPath(itemID string) string {
	return PathCart + "/items/" + url.PathEscape(itemID)
}

func clone(c dto.Cart) dto.Cart {
	out := c
	out.Groups = make([]dto.VendorGroup, len(c.Groups))
	for i, g := range c.Groups {
		g.Items = append([]dto.CartItem(nil), g.Items...)
		for j, it := range g.Items {
			if it.Variation != nil {
				v := *it.Variation
				v.Attributes = maps.Clone(it.Variation.Attributes)
				g.Items[j].Variation = &v
			}
		}
		out.Groups[i] = g
	}
	return out
}
