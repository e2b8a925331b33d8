package dto

import "time"

type WishlistItem struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

type Wishlist struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

type CreateWishlistRequest struct {
	Name string `json:"name"`
}

// Has は商品がこのウィッシュリストに入っているか
func (w Wishlist) Has(productID string) bool {
	for _, it := range w.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
