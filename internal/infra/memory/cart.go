package memory

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type cartRepo struct{ s *Store }

func (r *cartRepo) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []model.CartItem{}
	for _, it := range r.s.d.cartItems {
		if it.UserID == userID {
			items = append(items, it)
		}
	}
	sortByCreated(items,
		func(it model.CartItem) time.Time { return it.CreatedAt },
		func(it model.CartItem) string { return it.ID })
	return items, nil
}

func (r *cartRepo) FindItem(ctx context.Context, itemID string) (model.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.d.cartItems[itemID]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r *cartRepo) Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, it := range r.s.d.cartItems {
		if it.UserID == item.UserID && it.ProductID == item.ProductID && it.VariationID == item.VariationID {
			it.Quantity += item.Quantity
			it.UpdatedAt = r.s.now()
			r.s.d.cartItems[id] = it
			return it, nil
		}
	}

	r.s.stamp(&item.CreatedAt)
	r.s.stamp(&item.UpdatedAt)
	r.s.d.cartItems[item.ID] = item
	return item, nil
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, itemID string, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.d.cartItems[itemID]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	it.UpdatedAt = r.s.now()
	r.s.d.cartItems[itemID] = it
	return nil
}

func (r *cartRepo) DeleteItem(ctx context.Context, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.cartItems[itemID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.d.cartItems, itemID)
	return nil
}

func (r *cartRepo) ClearByUserID(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, it := range r.s.d.cartItems {
		if it.UserID == userID {
			delete(r.s.d.cartItems, id)
		}
	}
	return nil
}
