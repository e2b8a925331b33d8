package checkout

import (
	"errors"
	"strings"
)

var (
	ErrAddressIncomplete = errors.New("address is incomplete")
	ErrShippingMethod    = errors.New("unknown shipping method")
	ErrPaymentMethod     = errors.New("unknown payment method")
	ErrCardHolder        = errors.New("card holder name is required")
)

type Address struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a Address) Validate() error {
	for _, v := range []string{a.FullName, a.Line1, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return ErrAddressIncomplete
		}
	}
	return nil
}

// String は注文APIに送る1行表記
func (a Address) String() string {
	region := strings.TrimSpace(strings.Join(nonEmpty(a.State, a.PostalCode), " "))
	return strings.Join(nonEmpty(a.FullName, a.Line1, a.Line2, a.City, region, a.Country), ", ")
}

// AddressForm は住所ステップの入力。請求先は配送先と同じにできる。
type AddressForm struct {
	Shipping              Address
	Billing               Address
	BillingSameAsShipping bool
}

func (f AddressForm) Validate() error {
	if err := f.Shipping.Validate(); err != nil {
		return err
	}
	if f.BillingSameAsShipping {
		return nil
	}
	return f.Billing.Validate()
}

func (f AddressForm) billing() Address {
	if f.BillingSameAsShipping {
		return f.Shipping
	}
	return f.Billing
}

const (
	ShippingStandard  = "standard"
	ShippingExpress   = "express"
	ShippingOvernight = "overnight"
)

type ShippingForm struct {
	Method string
}

func (f ShippingForm) Validate() error {
	switch f.Method {
	case ShippingStandard, ShippingExpress, ShippingOvernight:
		return nil
	}
	return ErrShippingMethod
}

const (
	PaymentCard           = "card"
	PaymentPayPal         = "paypal"
	PaymentCashOnDelivery = "cash_on_delivery"
)

// PaymentForm はカード番号を持たない。決済は扱わない。
type PaymentForm struct {
	Method     string
	CardHolder string
}

func (f PaymentForm) Validate() error {
	switch f.Method {
	case PaymentCard:
		if strings.TrimSpace(f.CardHolder) == "" {
			return ErrCardHolder
		}
		return nil
	case PaymentPayPal, PaymentCashOnDelivery:
		return nil
	}
	return ErrPaymentMethod
}

func nonEmpty(vs ...string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
