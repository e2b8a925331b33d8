// Package seed は開発用のデモデータを入れる。
// 既にあるユーザー・商品はそのまま使うので何度呼んでもよい。
package seed

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
)

// デモユーザー共通のパスワード
const DemoPassword = "password123"

type Fixtures struct {
	Customer model.User
	VendorA  model.User
	VendorB  model.User
	Admin    model.User

	Shoes model.Product // VendorA、サイズ違いあり
	Cap   model.Product // VendorB
}

type Seeder struct {
	users    repo.UserRepository
	products repo.ProductRepository
	hasher   usecase.PasswordHasher
	idGen    usecase.IDGenerator
}

func New(users repo.UserRepository, products repo.ProductRepository, hasher usecase.PasswordHasher, idGen usecase.IDGenerator) *Seeder {
	return &Seeder{users: users, products: products, hasher: hasher, idGen: idGen}
}

func (s *Seeder) Run(ctx context.Context) (Fixtures, error) {
	var f Fixtures
	var err error

	users := []struct {
		dst   *model.User
		email string
		name  string
		role  model.Role
	}{
		{&f.Customer, "customer@example.com", "Casey Customer", model.RoleCustomer},
		{&f.VendorA, "alpha@example.com", "Alpha Outfitters", model.RoleVendor},
		{&f.VendorB, "beta@example.com", "Beta Goods", model.RoleVendor},
		{&f.Admin, "admin@example.com", "Store Admin", model.RoleAdmin},
	}
	for _, u := range users {
		if *u.dst, err = s.user(ctx, u.email, u.name, u.role); err != nil {
			return Fixtures{}, err
		}
	}

	f.Shoes, err = s.product(ctx, model.Product{
		VendorID:    f.VendorA.ID,
		VendorName:  f.VendorA.Name,
		Name:        "Trail Running Shoes",
		Description: "Lightweight shoes for mixed terrain.",
		Price:       decimal.RequireFromString("89.99"),
		Stock:       25,
		Variations: []model.Variation{
			{ID: "size-41", Attributes: map[string]string{"size": "41"}},
			{ID: "size-42", Attributes: map[string]string{"size": "42"}},
			{ID: "size-43", Attributes: map[string]string{"size": "43"}},
		},
	})
	if err != nil {
		return Fixtures{}, err
	}

	f.Cap, err = s.product(ctx, model.Product{
		VendorID:    f.VendorB.ID,
		VendorName:  f.VendorB.Name,
		Name:        "Canvas Cap",
		Description: "Washed cotton cap.",
		Price:       decimal.RequireFromString("49.99"),
		Stock:       40,
	})
	if err != nil {
		return Fixtures{}, err
	}

	return f, nil
}

func (s *Seeder) user(ctx context.Context, email, name string, role model.Role) (model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return *existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.User{}, fmt.Errorf("find user %s: %w", email, err)
	}

	hash, err := s.hasher.Hash(DemoPassword)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           s.idGen.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("create user %s: %w", email, err)
	}
	return *u, nil
}

// 同じ出品者・同じ名前の商品があれば作らない
func (s *Seeder) product(ctx context.Context, p model.Product) (model.Product, error) {
	hits, _, err := s.products.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 100, Q: p.Name, VendorID: p.VendorID})
	if err != nil {
		return model.Product{}, fmt.Errorf("list products: %w", err)
	}
	for _, h := range hits {
		if h.Name == p.Name {
			return h, nil
		}
	}

	p.ID = s.idGen.NewID()
	p.IsActive = true
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product %s: %w", p.Name, err)
	}
	return created, nil
}
