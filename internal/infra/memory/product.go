package memory

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type productRepo struct{ s *Store }

func (r *productRepo) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(q.Q)
	var hits []model.Product
	for _, p := range r.s.d.products {
		if !p.IsActive || p.DeletedAt.Valid {
			continue
		}
		if q.VendorID != "" && p.VendorID != q.VendorID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		hits = append(hits, p)
	}
	sortByCreated(hits,
		func(p model.Product) time.Time { return p.CreatedAt },
		func(p model.Product) string { return p.ID })

	total := int64(len(hits))
	start := (q.Page - 1) * q.Limit
	if start >= len(hits) {
		return []model.Product{}, total, nil
	}
	end := min(start+q.Limit, len(hits))
	return hits[start:end], total, nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.d.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.d.products[p.ID]; ok {
		return model.Product{}, repo.ErrConflict
	}
	r.s.stamp(&p.CreatedAt)
	r.s.stamp(&p.UpdatedAt)
	r.s.d.products[p.ID] = p
	return p, nil
}

type inventoryRepo struct{ s *Store }

// 在庫が足りるときだけ減らす
func (r *inventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.d.products[productID]
	if !ok {
		return false, repo.ErrNotFound
	}
	if p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.UpdatedAt = r.s.now()
	r.s.d.products[productID] = p
	return true, nil
}

func (r *inventoryRepo) IncreaseStock(ctx context.Context, productID string, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.d.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock += qty
	p.UpdatedAt = r.s.now()
	r.s.d.products[productID] = p
	return nil
}
