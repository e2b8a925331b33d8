package memory

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type wishlistRepo struct{ s *Store }

func (r *wishlistRepo) ListByUserID(ctx context.Context, userID string) ([]model.Wishlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	lists := []model.Wishlist{}
	for _, w := range r.s.d.wishlists {
		if w.UserID == userID {
			lists = append(lists, r.withItems(w))
		}
	}
	sortByCreated(lists,
		func(w model.Wishlist) time.Time { return w.CreatedAt },
		func(w model.Wishlist) string { return w.ID })
	return lists, nil
}

func (r *wishlistRepo) FindByID(ctx context.Context, wishlistID string) (model.Wishlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.d.wishlists[wishlistID]
	if !ok {
		return model.Wishlist{}, repo.ErrNotFound
	}
	return r.withItems(w), nil
}

func (r *wishlistRepo) Create(ctx context.Context, w model.Wishlist) (model.Wishlist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.wishlists[w.ID]; ok {
		return model.Wishlist{}, repo.ErrConflict
	}
	r.s.stamp(&w.CreatedAt)
	w.Items = nil
	r.s.d.wishlists[w.ID] = w
	return r.withItems(w), nil
}

func (r *wishlistRepo) AddItem(ctx context.Context, item model.WishlistItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.wishlists[item.WishlistID]; !ok {
		return repo.ErrNotFound
	}
	for _, it := range r.s.d.wishlistItems {
		if it.WishlistID == item.WishlistID && it.ProductID == item.ProductID {
			return repo.ErrConflict
		}
	}
	r.s.stamp(&item.CreatedAt)
	r.s.d.wishlistItems[item.ID] = item
	return nil
}

func (r *wishlistRepo) RemoveItem(ctx context.Context, wishlistID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, it := range r.s.d.wishlistItems {
		if it.WishlistID == wishlistID && it.ProductID == productID {
			delete(r.s.d.wishlistItems, id)
			return nil
		}
	}
	return repo.ErrNotFound
}

// mu保持中に呼ぶ
func (r *wishlistRepo) withItems(w model.Wishlist) model.Wishlist {
	w.Items = []model.WishlistItem{}
	for _, it := range r.s.d.wishlistItems {
		if it.WishlistID == w.ID {
			w.Items = append(w.Items, it)
		}
	}
	sortByCreated(w.Items,
		func(it model.WishlistItem) time.Time { return it.CreatedAt },
		func(it model.WishlistItem) string { return it.ID })
	return w
}
