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

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	VendorID string
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (dto.ProductList, error) {
	if in.Page < 1 {
		return dto.ProductList{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return dto.ProductList{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return dto.ProductList{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		VendorID: strings.TrimSpace(in.VendorID),
	})
	if err != nil {
		return dto.ProductList{}, errDB()
	}

	out := make([]dto.Product, 0, len(items))
	for _, p := range items {
		out = append(out, ToProductDTO(p))
	}

	return dto.ProductList{
		Items: out,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (dto.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return dto.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return dto.Product{}, errNotFound()
	}
	if err != nil {
		return dto.Product{}, errDB()
	}

	//非公開は存在しない扱い
	if !p.IsActive {
		return dto.Product{}, errNotFound()
	}
	return ToProductDTO(p), nil
}

func ToProductDTO(p model.Product) dto.Product {
	out := dto.Product{
		ID:          p.ID,
		VendorID:    p.VendorID,
		VendorName:  p.VendorName,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
	for _, v := range p.Variations {
		out.Variations = append(out.Variations, toVariationDTO(v))
	}
	return out
}

func toVariationDTO(v model.Variation) dto.Variation {
	attrs := make(map[string]string, len(v.Attributes))
	for k, val := range v.Attributes {
		attrs[k] = val
	}
	return dto.Variation{ID: v.ID, Attributes: attrs}
}
