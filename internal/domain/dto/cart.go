package dto

import "github.com/shopspring/decimal"

type CartItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Variation   *Variation      `json:"variation,omitempty"`
}

// 出品者ごとのカート区画
type VendorGroup struct {
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Items      []CartItem      `json:"items"`
}

type Cart struct {
	UserID     string          `json:"user_id"`
	Groups     []VendorGroup   `json:"groups"`
	TotalItems int64           `json:"total_items"`
	Total      decimal.Decimal `json:"total"`
}

type AddCartItemRequest struct {
	ProductID   string `json:"product_id"`
	Quantity    int64  `json:"quantity"`
	VariationID string `json:"variation_id,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// Normalize は空の区画を除き、小計・合計・点数を明細から計算し直す。
// 受け取ったCartは変更しない。
func (c Cart) Normalize() Cart {
	out := Cart{
		UserID: c.UserID,
		Groups: make([]VendorGroup, 0, len(c.Groups)),
		Total:  decimal.Zero,
	}

	for _, g := range c.Groups {
		if len(g.Items) == 0 {
			continue
		}

		group := VendorGroup{
			VendorID:   g.VendorID,
			VendorName: g.VendorName,
			Subtotal:   decimal.Zero,
			Items:      make([]CartItem, 0, len(g.Items)),
		}
		for _, it := range g.Items {
			it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
			group.Subtotal = group.Subtotal.Add(it.Subtotal)
			out.TotalItems += it.Quantity
			group.Items = append(group.Items, it)
		}

		out.Total = out.Total.Add(group.Subtotal)
		out.Groups = append(out.Groups, group)
	}

	return out
}

// IsEmpty は明細が1つもないか
func (c Cart) IsEmpty() bool {
	for _, g := range c.Groups {
		if len(g.Items) > 0 {
			return false
		}
	}
	return true
}

// FindItem は明細IDで検索
func (c Cart) FindItem(itemID string) (CartItem, bool) {
	for _, g := range c.Groups {
		for _, it := range g.Items {
			if it.ID == itemID {
				return it, true
			}
		}
	}
	return CartItem{}, false
}
