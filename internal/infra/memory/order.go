package memory

import (
	"context"
	"sort"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type orderRepo struct{ s *Store }

func (r *orderRepo) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.d.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r *orderRepo) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r *orderRepo) ListByVendorID(ctx context.Context, vendorID string) ([]model.Order, error) {
	return r.filter(func(o model.Order) bool { return o.HasVendor(vendorID) }), nil
}

func (r *orderRepo) Create(ctx context.Context, order model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.orders[order.ID]; ok {
		return repo.ErrConflict
	}
	for _, o := range r.s.d.orders {
		if o.UserID == order.UserID && o.IdempotencyKey == order.IdempotencyKey {
			return repo.ErrConflict
		}
	}

	r.s.stamp(&order.CreatedAt)
	r.s.stamp(&order.UpdatedAt)
	order.Items = append([]model.OrderItem(nil), order.Items...)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		r.s.stamp(&order.Items[i].CreatedAt)
	}
	r.s.d.orders[order.ID] = order
	return nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.d.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = r.s.now()
	r.s.d.orders[orderID] = o
	return nil
}

func (r *orderRepo) FindByIdempotencyKey(ctx context.Context, userID string, key string) (model.Order, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.d.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return copyOrder(o), true, nil
		}
	}
	return model.Order{}, false, nil
}

func (r *orderRepo) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	hits := r.filter(func(o model.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if f.UserID != "" && o.UserID != f.UserID {
			return false
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && o.CreatedAt.After(*f.To) {
			return false
		}
		return true
	})

	total := int64(len(hits))
	start := (f.Page - 1) * f.Limit
	if start >= len(hits) {
		return []model.Order{}, total, nil
	}
	end := min(start+f.Limit, len(hits))
	return hits[start:end], total, nil
}

// 新しい順
func (r *orderRepo) filter(keep func(model.Order) bool) []model.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.Order{}
	for _, o := range r.s.d.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func copyOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}
