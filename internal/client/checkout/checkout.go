// Package checkout は住所→配送→支払い→確認の4ステップを進める。
// 状態はメモリだけに持ち、作り直せば住所ステップからやり直しになる。
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/client/nav"
	"storefront/internal/domain/dto"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Step int

const (
	StepAddress Step = iota
	StepShipping
	StepPayment
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) valid() bool {
	return s >= StepAddress && s <= StepReview
}

var (
	ErrStepIncomplete = errors.New("complete the current step first")
	ErrStepLocked     = errors.New("previous steps are not completed")
	ErrLastStep       = errors.New("already on the last step")
	ErrFirstStep      = errors.New("already on the first step")
	ErrInvalidStep    = errors.New("invalid checkout step")
	ErrNotOnReview    = errors.New("orders can only be placed from the review step")
	ErrSubmitting     = errors.New("order submission already in progress")
	ErrEmptyCart      = errors.New("cart is empty")
)

type OrderPlacer interface {
	Place(ctx context.Context, req dto.PlaceOrderRequest, idempotencyKey string) (dto.Order, error)
}

type Cart interface {
	Snapshot() dto.Cart
	Clear(ctx context.Context) (dto.Cart, error)
}

type Controller struct {
	orders OrderPlacer
	cart   Cart
	nav    nav.Navigator
	log    *logrus.Logger

	mu         sync.Mutex
	current    Step
	completed  map[Step]bool
	submitting bool
	// 再送しても二重注文にならないよう、成功するまで同じキーを使う
	idempotencyKey string

	address  AddressForm
	shipping ShippingForm
	payment  PaymentForm
}

func New(orders OrderPlacer, cart Cart, navigator nav.Navigator, log *logrus.Logger) *Controller {
	c := &Controller{orders: orders, cart: cart, nav: navigator, log: log}
	c.reset()
	return c
}

func (c *Controller) SetAddress(f AddressForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return c.complete(StepAddress, func() { c.address = f })
}

func (c *Controller) SetShipping(f ShippingForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return c.complete(StepShipping, func() { c.shipping = f })
}

func (c *Controller) SetPayment(f PaymentForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return c.complete(StepPayment, func() { c.payment = f })
}

// Advance は現在のステップが完了していれば次へ
func (c *Controller) Advance() (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == StepReview {
		return c.current, ErrLastStep
	}
	if !c.completed[c.current] {
		return c.current, ErrStepIncomplete
	}
	c.current++
	return c.current, nil
}

func (c *Controller) Back() (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == StepAddress {
		return c.current, ErrFirstStep
	}
	c.current--
	return c.current, nil
}

// GoTo は手前のステップが全部完了しているときだけ移動できる
func (c *Controller) GoTo(step Step) error {
	if !step.valid() {
		return ErrInvalidStep
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.reachable(step) {
		return ErrStepLocked
	}
	c.current = step
	return nil
}

func (c *Controller) Current() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) Completed(step Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[step]
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// CanPlaceOrder は注文ボタンを押せるか
func (c *Controller) CanPlaceOrder() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current == StepReview && !c.submitting
}

// Request は確認画面に出す注文内容
func (c *Controller) Request() dto.PlaceOrderRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request()
}

// PlaceOrder は注文→カートを空にする→完了画面へ。
// 失敗したら確認ステップに留まり、カートも触らない。
func (c *Controller) PlaceOrder(ctx context.Context) (dto.Order, error) {
	c.mu.Lock()
	switch {
	case c.current != StepReview:
		c.mu.Unlock()
		return dto.Order{}, ErrNotOnReview
	case c.submitting:
		c.mu.Unlock()
		return dto.Order{}, ErrSubmitting
	case !c.reachable(StepReview):
		c.mu.Unlock()
		return dto.Order{}, ErrStepLocked
	}
	if c.cart.Snapshot().IsEmpty() {
		c.mu.Unlock()
		return dto.Order{}, ErrEmptyCart
	}

	c.submitting = true
	req := c.request()
	key := c.idempotencyKey
	c.mu.Unlock()

	order, err := c.orders.Place(ctx, req, key)

	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()

	if err != nil {
		c.log.WithError(err).Warn("place order failed")
		return dto.Order{}, err
	}

	log := c.log.WithField("order_id", order.ID)
	log.Info("order placed")

	// 注文は確定しているので、カートを空にできなくても完了画面へ進む
	if _, err := c.cart.Clear(ctx); err != nil {
		log.WithError(err).Warn("clear cart after order failed")
	}
	c.nav.Navigate(nav.SuccessRoute(order.ID))

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()

	return order, nil
}

func (c *Controller) complete(step Step, apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.reachable(step) {
		return ErrStepLocked
	}
	apply()
	c.completed[step] = true
	return nil
}

// mu保持中に呼ぶ
func (c *Controller) reachable(step Step) bool {
	for s := StepAddress; s < step; s++ {
		if !c.completed[s] {
			return false
		}
	}
	return true
}

// mu保持中に呼ぶ
func (c *Controller) request() dto.PlaceOrderRequest {
	return dto.PlaceOrderRequest{
		ShippingAddress: c.address.Shipping.String(),
		BillingAddress:  c.address.billing().String(),
		ShippingMethod:  c.shipping.Method,
		PaymentMethod:   c.payment.Method,
	}
}

func (c *Controller) reset() {
	c.current = StepAddress
	c.completed = map[Step]bool{}
	c.submitting = false
	c.idempotencyKey = uuid.NewString()
	c.address = AddressForm{}
	c.shipping = ShippingForm{}
	c.payment = PaymentForm{}
}
