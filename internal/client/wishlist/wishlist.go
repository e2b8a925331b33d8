// Package wishlist はウィッシュリストの所属状態を楽観的に更新して持つ。
// 失敗したら巻き戻さず、キャッシュを捨ててサーバーから取り直す。
package wishlist

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"storefront/internal/client/api"
	"storefront/internal/domain/dto"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	PathWishlists = "/wishlists"
	DefaultName   = "My Wishlist"

	// サーバー確定前の仮ID
	tempIDPrefix = "tmp-"
)

var (
	ErrProductRequired = errors.New("product is required")
	// ErrReset はToggleの途中でResetされた
	ErrReset = errors.New("wishlist store was reset")
)

type Status int

const (
	// StatusOK はサーバーが書き込みを確定した
	StatusOK Status = iota
	// StatusStale は書き込みも取り直しも失敗した。次の読み込みで取り直す。
	StatusStale
	// StatusError は書き込みが失敗し、サーバーの状態に戻した
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStale:
		return "stale"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Result はToggleの結果。InWishlistはStatusに応じた信頼度の所属状態。
type Result struct {
	Status     Status
	InWishlist bool
	Err        error
}

type Store struct {
	api api.Doer
	log *logrus.Logger
	now func() time.Time

	mu    sync.RWMutex
	lists []dto.Wishlist
	valid bool
	gen   uint64
}

func New(c api.Doer, log *logrus.Logger) *Store {
	return &Store{api: c, log: log, now: time.Now}
}

// Load はサーバーから全ウィッシュリストを取り直す
func (s *Store) Load(ctx context.Context) ([]dto.Wishlist, error) {
	return s.load(ctx, s.generation())
}

// load はgenが変わっていなければキャッシュに反映する
func (s *Store) load(ctx context.Context, gen uint64) ([]dto.Wishlist, error) {
	var lists []dto.Wishlist
	if err := s.api.Do(ctx, api.Get(PathWishlists), &lists); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen == s.gen {
		s.lists = lists
		s.valid = true
	}
	s.mu.Unlock()

	return cloneLists(lists), nil
}

// Lists はキャッシュのコピー
func (s *Store) Lists() []dto.Wishlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLists(s.lists)
}

// Contains はどれかのウィッシュリストに商品が入っているか
func (s *Store) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.lists {
		if w.Has(productID) {
			return true
		}
	}
	return false
}

// Valid はキャッシュをサーバーの状態として扱ってよいか
func (s *Store) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valid
}

func (s *Store) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

// Reset はログアウト時に状態を捨てる
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = nil
	s.valid = false
	s.gen++
}

// Toggle は入っていれば全リストから外し、なければ既定リストに入れる
func (s *Store) Toggle(ctx context.Context, product dto.Product) Result {
	if product.ID == "" {
		return Result{Status: StatusError, Err: ErrProductRequired}
	}

	// 途中でResetされたら以降の結果はキャッシュに書かない
	gen := s.generation()

	if !s.Valid() {
		if _, err := s.load(ctx, gen); err != nil {
			return Result{Status: StatusStale, InWishlist: s.Contains(product.ID), Err: err}
		}
		if s.generation() != gen {
			return Result{Status: StatusStale, Err: ErrReset}
		}
	}

	if holders := s.holders(product.ID); len(holders) > 0 {
		return s.remove(ctx, gen, product.ID, holders)
	}
	return s.add(ctx, gen, product)
}

func (s *Store) remove(ctx context.Context, gen uint64, productID string, holders []string) Result {
	s.mu.Lock()
	if gen == s.gen {
		for i := range s.lists {
			s.lists[i].Items = withoutProduct(s.lists[i].Items, productID)
		}
	}
	s.mu.Unlock()

	for _, id := range holders {
		var updated dto.Wishlist
		if err := s.api.Do(ctx, api.Delete(productPath(id, productID)), &updated); err != nil {
			return s.resync(ctx, gen, productID, err)
		}
		if !s.replace(gen, updated) {
			return Result{Status: StatusStale, Err: ErrReset}
		}
	}
	return Result{Status: StatusOK, InWishlist: false}
}

func (s *Store) add(ctx context.Context, gen uint64, product dto.Product) Result {
	target, err := s.defaultList(ctx, gen)
	if err != nil {
		return s.resync(ctx, gen, product.ID, err)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return Result{Status: StatusStale, Err: ErrReset}
	}
	for i := range s.lists {
		if s.lists[i].ID == target {
			s.lists[i].Items = append(s.lists[i].Items, dto.WishlistItem{
				ID:          tempIDPrefix + uuid.NewString(),
				ProductID:   product.ID,
				ProductName: product.Name,
				AddedAt:     s.now(),
			})
		}
	}
	s.mu.Unlock()

	var updated dto.Wishlist
	if err := s.api.Do(ctx, api.Post(productPath(target, product.ID), nil), &updated); err != nil {
		return s.resync(ctx, gen, product.ID, err)
	}
	if !s.replace(gen, updated) {
		return Result{Status: StatusStale, Err: ErrReset}
	}
	return Result{Status: StatusOK, InWishlist: true}
}

// defaultList は最初のリストのID。なければ作る。
func (s *Store) defaultList(ctx context.Context, gen uint64) (string, error) {
	s.mu.RLock()
	if len(s.lists) > 0 {
		id := s.lists[0].ID
		s.mu.RUnlock()
		return id, nil
	}
	s.mu.RUnlock()

	var created dto.Wishlist
	if err := s.api.Do(ctx, api.Post(PathWishlists, dto.CreateWishlistRequest{Name: DefaultName}), &created); err != nil {
		return "", err
	}
	s.replace(gen, created)
	s.log.WithField("wishlist_id", created.ID).Info("default wishlist created")
	return created.ID, nil
}

// resync は楽観更新を捨ててサーバーの状態を取り直す
func (s *Store) resync(ctx context.Context, gen uint64, productID string, cause error) Result {
	s.log.WithError(cause).WithField("product_id", productID).Warn("wishlist write failed")
	if s.generation() != gen {
		return Result{Status: StatusStale, Err: cause}
	}
	s.Invalidate()

	if _, err := s.load(ctx, gen); err != nil {
		s.log.WithError(err).Warn("wishlist resync failed")
		return Result{Status: StatusStale, InWishlist: s.Contains(productID), Err: cause}
	}
	if s.generation() != gen {
		return Result{Status: StatusStale, Err: cause}
	}
	return Result{Status: StatusError, InWishlist: s.Contains(productID), Err: cause}
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Store) holders(productID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, w := range s.lists {
		if w.Has(productID) {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// replace はサーバーが返したリストで丸ごと置き換える。Reset済みならfalse。
func (s *Store) replace(gen uint64, w dto.Wishlist) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	if w.ID == "" {
		return true
	}
	for i := range s.lists {
		if s.lists[i].ID == w.ID {
			s.lists[i] = w
			return true
		}
	}
	s.lists = append(s.lists, w)
	return true
}

func productPath(wishlistID, productID string) string {
	return PathWishlists + "/" + url.PathEscape(wishlistID) + "/products/" + url.PathEscape(productID)
}

func withoutProduct(items []dto.WishlistItem, productID string) []dto.WishlistItem {
	out := make([]dto.WishlistItem, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

func cloneLists(lists []dto.Wishlist) []dto.Wishlist {
	out := make([]dto.Wishlist, len(lists))
	for i, w := range lists {
		w.Items = append([]dto.WishlistItem(nil), w.Items...)
		out[i] = w
	}
	return out
}
