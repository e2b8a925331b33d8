// Package nav はクライアント側のルーティング（画面遷移）。
package nav

import (
	"net/url"
	"sync"
)

const (
	RouteHome            = "/"
	RouteLogin           = "/login"
	RouteCart            = "/cart"
	RouteCheckout        = "/checkout"
	RouteCheckoutSuccess = "/checkout/success"
	RouteOrders          = "/orders"
	RouteWishlist        = "/wishlist"
	RouteVendor          = "/vendor"
	RouteAdmin           = "/admin"
)

type Navigator interface {
	Navigate(route string)
}

// SuccessRoute は注文完了画面
func SuccessRoute(orderID string) string {
	return RouteCheckoutSuccess + "?orderId=" + url.QueryEscape(orderID)
}

// Router は遷移履歴を持つNavigator。
// Gateがあれば遷移先を差し替える（ログイン画面へのリダイレクトなど）。
type Router struct {
	mu      sync.RWMutex
	history []string
	gate    func(route string) string
}

func NewRouter() *Router {
	return &Router{history: []string{RouteHome}}
}

func (r *Router) SetGate(gate func(route string) string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = gate
}

func (r *Router) Navigate(route string) {
	r.mu.RLock()
	gate := r.gate
	r.mu.RUnlock()

	if gate != nil {
		route = gate(route)
	}

	r.mu.Lock()
	r.history = append(r.history, route)
	r.mu.Unlock()
}

func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.history[len(r.history)-1]
}

func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}
