package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// 操作した人（認証ミドルウェアが入れた値）
type Actor struct {
	UserID string
	Role   model.Role
}

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	idGen  IDGenerator
	clock  Clock
	log    *logrus.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, idGen IDGenerator, clock Clock, log *logrus.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, idGen: idGen, clock: clock, log: log}
}

// PlaceOrder はカートから注文を作る。
// 同じキーなら同じ注文を返し、createdはfalseになる。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, in dto.PlaceOrderRequest, idempotencyKey string) (dto.Order, bool, error) {
	if userID == "" {
		return dto.Order{}, false, errUnauthorized()
	}
	key := strings.TrimSpace(idempotencyKey)
	if key == "" || len(key) > 255 {
		return dto.Order{}, false, NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}

	shipping := strings.TrimSpace(in.ShippingAddress)
	if shipping == "" {
		return dto.Order{}, false, NewHTTPError(http.StatusBadRequest, "shipping_address required")
	}
	billing := strings.TrimSpace(in.BillingAddress)
	if billing == "" {
		billing = shipping
	}
	if strings.TrimSpace(in.ShippingMethod) == "" {
		return dto.Order{}, false, NewHTTPError(http.StatusBadRequest, "shipping_method required")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return dto.Order{}, false, NewHTTPError(http.StatusBadRequest, "payment_method required")
	}

	var out dto.Order
	created := false

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return errDB()
		}
		if found {
			out = ToOrderDTO(existing)
			return nil
		}

		cartItems, err := r.Carts().ListByUserID(ctx, userID)
		if err != nil {
			return errDB()
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//在庫を確定時に再チェックして減らす
		orderID := u.idGen.NewID()
		items := make([]model.OrderItem, 0, len(cartItems))
		total := decimal.Zero

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return errDB()
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return errDB()
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//スナップショット
			items = append(items, model.OrderItem{
				ID:                  u.idGen.NewID(),
				OrderID:             orderID,
				ProductID:           ci.ProductID,
				VendorID:            p.VendorID,
				VariationID:         ci.VariationID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				Quantity:            ci.Quantity,
			})
			total = total.Add(ci.UnitPriceSnapshot.Mul(decimal.NewFromInt(ci.Quantity)))
		}

		now := u.clock.Now()
		order := model.Order{
			ID:              orderID,
			UserID:          userID,
			Status:          model.OrderStatusPending,
			Total:           total,
			ShippingAddress: shipping,
			BillingAddress:  billing,
			ShippingMethod:  strings.TrimSpace(in.ShippingMethod),
			PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
			IdempotencyKey:  key,
			Items:           items,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "idempotency conflict")
			}
			return errDB()
		}

		//カートを空にする（再注文防止）
		if err := r.Carts().ClearByUserID(ctx, userID); err != nil {
			return errDB()
		}

		out = ToOrderDTO(order)
		created = true
		return nil
	})

	if he, ok := AsHTTPError(err); ok && he.Status == http.StatusConflict {
		//同時に同じキーが入った。もう一回検索して同じ結果を返す
		existing, found, err2 := u.orders.FindByIdempotencyKey(ctx, userID, key)
		if err2 == nil && found {
			return ToOrderDTO(existing), false, nil
		}
	}
	if err != nil {
		return dto.Order{}, false, err
	}

	if created {
		u.log.WithFields(logrus.Fields{"order_id": out.ID, "user_id": userID, "total": out.Total.String()}).Info("order placed")
	}
	return out, created, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]dto.Order, error) {
	if userID == "" {
		return []dto.Order{}, errUnauthorized()
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return []dto.Order{}, errDB()
	}
	return toOrderDTOs(orders), nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID string) (dto.Order, error) {
	if userID == "" {
		return dto.Order{}, errUnauthorized()
	}
	if strings.TrimSpace(orderID) == "" {
		return dto.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return dto.Order{}, errNotFound()
	}
	if err != nil {
		return dto.Order{}, errDB()
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return dto.Order{}, errNotFound()
	}
	return ToOrderDTO(o), nil
}

// 管理者用の注文一覧
func (u *OrderUsecase) AdminList(ctx context.Context, f repo.AdminOrderListFilter) (dto.OrderList, error) {
	if f.Page < 1 {
		return dto.OrderList{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return dto.OrderList{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !f.Status.Valid() {
		return dto.OrderList{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return dto.OrderList{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return dto.OrderList{}, errDB()
	}

	return dto.OrderList{
		Items: toOrderDTOs(orders),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}, nil
}

// 出品者の商品を含む注文
func (u *OrderUsecase) VendorList(ctx context.Context, vendorID string) ([]dto.Order, error) {
	if vendorID == "" {
		return []dto.Order{}, errUnauthorized()
	}

	orders, err := u.orders.ListByVendorID(ctx, vendorID)
	if err != nil {
		return []dto.Order{}, errDB()
	}
	return toOrderDTOs(orders), nil
}

// UpdateStatus は注文ステータスを進める（CANCELLEDなら在庫戻し）。
// 出品者は自分の商品を含む注文だけ、管理者はすべて。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actor Actor, orderID string, status dto.OrderStatus) (dto.Order, error) {
	if actor.UserID == "" {
		return dto.Order{}, errUnauthorized()
	}
	if actor.Role != model.RoleVendor && actor.Role != model.RoleAdmin {
		return dto.Order{}, errForbidden()
	}
	if strings.TrimSpace(orderID) == "" {
		return dto.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	next := model.OrderStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !next.Valid() {
		return dto.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out dto.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound()
		}
		if err != nil {
			return errDB()
		}

		if actor.Role == model.RoleVendor && !o.HasVendor(actor.UserID) {
			return errForbidden()
		}

		// すでに同じなら何もしない（200）
		if o.Status == next {
			out = ToOrderDTO(o)
			return nil
		}
		if !o.Status.CanTransition(next) {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}

		if next == model.OrderStatusCancelled {
			for _, it := range o.Items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil && !errors.Is(err, repo.ErrNotFound) {
					return errDB()
				}
			}
		}

		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound()
			}
			return errDB()
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   statusJSON(before),
			AfterJSON:    statusJSON(next),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return errDB()
		}

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return errDB()
		}
		out = ToOrderDTO(updated)
		return nil
	})
	if err != nil {
		return dto.Order{}, err
	}
	return out, nil
}

func statusJSON(s model.OrderStatus) string {
	b, _ := json.Marshal(map[string]string{"status": string(s)})
	return string(b)
}

func ToOrderDTO(o model.Order) dto.Order {
	items := make([]dto.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductNameSnapshot,
			VendorID:    it.VendorID,
			VariationID: it.VariationID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPriceSnapshot,
			Subtotal:    it.UnitPriceSnapshot.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}

	return dto.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Status:          dto.OrderStatus(o.Status),
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		ShippingMethod:  o.ShippingMethod,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderDTOs(orders []model.Order) []dto.Order {
	out := make([]dto.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderDTO(o))
	}
	return out
}
