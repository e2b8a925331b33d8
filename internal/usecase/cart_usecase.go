package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 明細はユーザーごとに持ち、返すときに出品者ごとにまとめます。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	idGen       IDGenerator
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	idGen IDGenerator,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		idGen:       idGen,
	}
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (dto.Cart, error) {
	if userID == "" {
		return dto.Cart{}, errUnauthorized()
	}
	return u.buildCart(ctx, userID)
}

// AddToCart はカートに追加（同一商品・同一バリエーションは数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in dto.AddCartItemRequest) (dto.Cart, error) {
	if userID == "" {
		return dto.Cart{}, errUnauthorized()
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if err != nil {
		return dto.Cart{}, errDB()
	}
	if !p.IsActive {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	variationID := strings.TrimSpace(in.VariationID)
	if variationID != "" {
		if _, ok := p.FindVariation(variationID); !ok {
			return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid variation_id")
		}
	}

	// 同じ商品の既存数量（バリエーション違いも在庫は共通）
	items, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return dto.Cart{}, errDB()
	}
	var existingQty int64
	for _, it := range items {
		if it.ProductID == productID {
			existingQty += it.Quantity
		}
	}
	if existingQty+in.Quantity > p.Stock {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	// unit_price_snapshot は「追加時点の価格」
	_, err = u.cartRepo.Upsert(ctx, model.CartItem{
		ID:                u.idGen.NewID(),
		UserID:            userID,
		ProductID:         productID,
		VariationID:       variationID,
		Quantity:          in.Quantity,
		UnitPriceSnapshot: p.Price,
	})
	if err != nil {
		return dto.Cart{}, errDB()
	}

	return u.buildCart(ctx, userID)
}

// 数量変更（所有チェック＋在庫チェック）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID string, cartItemID string, in dto.UpdateCartItemRequest) (dto.Cart, error) {
	if userID == "" {
		return dto.Cart{}, errUnauthorized()
	}
	if in.Quantity < 1 {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	item, err := u.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return dto.Cart{}, err
	}

	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return dto.Cart{}, errDB()
	}
	if !p.IsActive {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	// 他バリエーションの数量も足して在庫と比べる
	items, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return dto.Cart{}, errDB()
	}
	total := in.Quantity
	for _, it := range items {
		if it.ProductID == item.ProductID && it.ID != item.ID {
			total += it.Quantity
		}
	}
	if total > p.Stock {
		return dto.Cart{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dto.Cart{}, errNotFound()
		}
		return dto.Cart{}, errDB()
	}

	return u.buildCart(ctx, userID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID string, cartItemID string) (dto.Cart, error) {
	if userID == "" {
		return dto.Cart{}, errUnauthorized()
	}

	if _, err := u.ownedItem(ctx, userID, cartItemID); err != nil {
		return dto.Cart{}, err
	}

	if err := u.cartRepo.DeleteItem(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dto.Cart{}, errNotFound()
		}
		return dto.Cart{}, errDB()
	}

	return u.buildCart(ctx, userID)
}

// ClearCart はカートを空にする。空でも成功。
func (u *CartUsecase) ClearCart(ctx context.Context, userID string) (dto.Cart, error) {
	if userID == "" {
		return dto.Cart{}, errUnauthorized()
	}
	if err := u.cartRepo.ClearByUserID(ctx, userID); err != nil {
		return dto.Cart{}, errDB()
	}
	return u.buildCart(ctx, userID)
}

// 他人の明細は「存在しない扱い」
func (u *CartUsecase) ownedItem(ctx context.Context, userID, cartItemID string) (model.CartItem, error) {
	if strings.TrimSpace(cartItemID) == "" {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.cartRepo.FindItem(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, errNotFound()
	}
	if err != nil {
		return model.CartItem{}, errDB()
	}
	if item.UserID != userID {
		return model.CartItem{}, errNotFound()
	}
	return item, nil
}

// 明細を出品者ごとにまとめてCartを作る。
// 区画の順番は最初に追加した明細の順。
func (u *CartUsecase) buildCart(ctx context.Context, userID string) (dto.Cart, error) {
	items, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return dto.Cart{}, errDB()
	}

	cart := dto.Cart{UserID: userID, Groups: []dto.VendorGroup{}, Total: decimal.Zero}
	index := map[string]int{}

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil || !p.IsActive {
			continue
		}

		line := dto.CartItem{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPriceSnapshot,
		}
		if it.VariationID != "" {
			if v, ok := p.FindVariation(it.VariationID); ok {
				dv := toVariationDTO(v)
				line.Variation = &dv
			}
		}

		i, ok := index[p.VendorID]
		if !ok {
			i = len(cart.Groups)
			index[p.VendorID] = i
			cart.Groups = append(cart.Groups, dto.VendorGroup{VendorID: p.VendorID, VendorName: p.VendorName})
		}
		cart.Groups[i].Items = append(cart.Groups[i].Items, line)
	}

	// 小計と合計はNormalizeで計算
	return cart.Normalize(), nil
}
