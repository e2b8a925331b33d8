package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 取消はPENDING/PROCESSINGからだけ
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

type Order struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	UserID          string          `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_idem"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ShippingAddress string          `gorm:"type:text;not null"`
	BillingAddress  string          `gorm:"type:text;not null"`
	ShippingMethod  string          `gorm:"type:varchar(50);not null"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null"`
	IdempotencyKey  string          `gorm:"type:varchar(255);not null;uniqueIndex:ux_order_idem"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime"`
}

// HasVendor は出品者の商品を含むか
func (o Order) HasVendor(vendorID string) bool {
	for _, it := range o.Items {
		if it.VendorID == vendorID {
			return true
		}
	}
	return false
}
