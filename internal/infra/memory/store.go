// Package memory はrepositoryのインメモリ実装。
// DATABASE_URLがないとき（ローカル開発・テスト）に使う。
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type data struct {
	users         map[string]model.User
	refreshTokens map[string]model.RefreshToken
	products      map[string]model.Product
	cartItems     map[string]model.CartItem
	wishlists     map[string]model.Wishlist // Itemsは持たない
	wishlistItems map[string]model.WishlistItem
	orders        map[string]model.Order // Itemsまで持つ
	settings      *model.StoreSettings
	auditLogs     []model.AuditLog
	auditSeq      int64
}

func newData() *data {
	return &data{
		users:         map[string]model.User{},
		refreshTokens: map[string]model.RefreshToken{},
		products:      map[string]model.Product{},
		cartItems:     map[string]model.CartItem{},
		wishlists:     map[string]model.Wishlist{},
		wishlistItems: map[string]model.WishlistItem{},
		orders:        map[string]model.Order{},
	}
}

// clone はロールバック用のスナップショット
func (d *data) clone() *data {
	out := &data{
		users:         cloneMap(d.users),
		refreshTokens: cloneMap(d.refreshTokens),
		products:      make(map[string]model.Product, len(d.products)),
		cartItems:     cloneMap(d.cartItems),
		wishlists:     cloneMap(d.wishlists),
		wishlistItems: cloneMap(d.wishlistItems),
		orders:        make(map[string]model.Order, len(d.orders)),
		auditLogs:     append([]model.AuditLog(nil), d.auditLogs...),
		auditSeq:      d.auditSeq,
	}
	for k, p := range d.products {
		p.Variations = append([]model.Variation(nil), p.Variations...)
		out.products[k] = p
	}
	for k, o := range d.orders {
		o.Items = append([]model.OrderItem(nil), o.Items...)
		out.orders[k] = o
	}
	if d.settings != nil {
		s := *d.settings
		out.settings = &s
	}
	return out
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	d    *data
	now  func() time.Time
}

func New() *Store {
	return &Store{d: newData(), now: time.Now}
}

func (s *Store) Users() repo.UserRepository                 { return &userRepo{s: s} }
func (s *Store) RefreshTokens() repo.RefreshTokenRepository { return &refreshTokenRepo{s: s} }
func (s *Store) Products() repo.ProductRepository           { return &productRepo{s: s} }
func (s *Store) Inventory() repo.InventoryRepository        { return &inventoryRepo{s: s} }
func (s *Store) Carts() repo.CartRepository                 { return &cartRepo{s: s} }
func (s *Store) Wishlists() repo.WishlistRepository         { return &wishlistRepo{s: s} }
func (s *Store) Orders() repo.OrderRepository               { return &orderRepo{s: s} }
func (s *Store) Settings() repo.SettingsRepository          { return &settingsRepo{s: s} }
func (s *Store) AuditLogs() repo.AuditLogRepository         { return &auditLogRepo{s: s} }

// WithinTx はfnがエラーを返したらスナップショットに戻す。
// トランザクションは直列。Tx外の書き込みも巻き戻るのは開発用として許容。
func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.d.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.d = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) stamp(t *time.Time) {
	if t.IsZero() {
		*t = s.now()
	}
}

// 作成日時→IDの順に並べる
func sortByCreated[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return id(items[i]) < id(items[j])
	})
}
