package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 名前なしで作られたときの名前
const defaultWishlistName = "My Wishlist"

type WishlistUsecase struct {
	wishlistRepo repo.WishlistRepository
	productRepo  repo.ProductRepository
	idGen        IDGenerator
}

func NewWishlistUsecase(wishlistRepo repo.WishlistRepository, productRepo repo.ProductRepository, idGen IDGenerator) *WishlistUsecase {
	return &WishlistUsecase{wishlistRepo: wishlistRepo, productRepo: productRepo, idGen: idGen}
}

func (u *WishlistUsecase) List(ctx context.Context, userID string) ([]dto.Wishlist, error) {
	if userID == "" {
		return nil, errUnauthorized()
	}

	lists, err := u.wishlistRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errDB()
	}

	out := make([]dto.Wishlist, 0, len(lists))
	for _, w := range lists {
		out = append(out, u.toDTO(ctx, w))
	}
	return out, nil
}

func (u *WishlistUsecase) Create(ctx context.Context, userID string, in dto.CreateWishlistRequest) (dto.Wishlist, error) {
	if userID == "" {
		return dto.Wishlist{}, errUnauthorized()
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultWishlistName
	}
	if len(name) > 100 {
		return dto.Wishlist{}, NewHTTPError(http.StatusBadRequest, "name too long")
	}

	w, err := u.wishlistRepo.Create(ctx, model.Wishlist{
		ID:     u.idGen.NewID(),
		UserID: userID,
		Name:   name,
	})
	if err != nil {
		return dto.Wishlist{}, errDB()
	}
	return u.toDTO(ctx, w), nil
}

// AddProduct は商品を追加して更新後のウィッシュリストを返す。既に入っていても成功。
func (u *WishlistUsecase) AddProduct(ctx context.Context, userID, wishlistID, productID string) (dto.Wishlist, error) {
	if _, err := u.owned(ctx, userID, wishlistID); err != nil {
		return dto.Wishlist{}, err
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return dto.Wishlist{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return dto.Wishlist{}, errDB()
	}
	if !p.IsActive {
		return dto.Wishlist{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	err = u.wishlistRepo.AddItem(ctx, model.WishlistItem{
		ID:         u.idGen.NewID(),
		WishlistID: wishlistID,
		ProductID:  productID,
	})
	if err != nil && !errors.Is(err, repo.ErrConflict) {
		return dto.Wishlist{}, errDB()
	}

	return u.reload(ctx, wishlistID)
}

// RemoveProduct は商品を外して更新後のウィッシュリストを返す。入っていなくても成功。
func (u *WishlistUsecase) RemoveProduct(ctx context.Context, userID, wishlistID, productID string) (dto.Wishlist, error) {
	if _, err := u.owned(ctx, userID, wishlistID); err != nil {
		return dto.Wishlist{}, err
	}
	if strings.TrimSpace(productID) == "" {
		return dto.Wishlist{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.wishlistRepo.RemoveItem(ctx, wishlistID, productID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return dto.Wishlist{}, errDB()
	}

	return u.reload(ctx, wishlistID)
}

// 他人のリストは「存在しない扱い」
func (u *WishlistUsecase) owned(ctx context.Context, userID, wishlistID string) (model.Wishlist, error) {
	if userID == "" {
		return model.Wishlist{}, errUnauthorized()
	}
	if strings.TrimSpace(wishlistID) == "" {
		return model.Wishlist{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	w, err := u.wishlistRepo.FindByID(ctx, wishlistID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Wishlist{}, errNotFound()
	}
	if err != nil {
		return model.Wishlist{}, errDB()
	}
	if w.UserID != userID {
		return model.Wishlist{}, errNotFound()
	}
	return w, nil
}

func (u *WishlistUsecase) reload(ctx context.Context, wishlistID string) (dto.Wishlist, error) {
	w, err := u.wishlistRepo.FindByID(ctx, wishlistID)
	if err != nil {
		return dto.Wishlist{}, errDB()
	}
	return u.toDTO(ctx, w), nil
}

func (u *WishlistUsecase) toDTO(ctx context.Context, w model.Wishlist) dto.Wishlist {
	out := dto.Wishlist{
		ID:        w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Items:     make([]dto.WishlistItem, 0, len(w.Items)),
		CreatedAt: w.CreatedAt,
	}
	for _, it := range w.Items {
		item := dto.WishlistItem{ID: it.ID, ProductID: it.ProductID, AddedAt: it.CreatedAt}
		// 名前は表示用なので取れなくても返す
		if p, err := u.productRepo.FindByID(ctx, it.ProductID); err == nil {
			item.ProductName = p.Name
		}
		out.Items = append(out.Items, item)
	}
	return out
}
