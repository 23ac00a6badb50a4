package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/pkg/uow"
)

// DefaultOrderTTL срок, в течение которого pending-заказ ждет действий сторон.
const DefaultOrderTTL = 24 * time.Hour

type OrderService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	notifier  NotificationEmitter
	orderTTL  time.Duration
	timeNow   func() time.Time
}

func NewOrderService(u uow.UOW, notifier NotificationEmitter, orderTTL time.Duration) (*OrderService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err
	}
	if orderTTL <= 0 {
		orderTTL = DefaultOrderTTL
	}
	return &OrderService{
		uow:       u,
		orderRepo: orderRepo,
		notifier:  notifier,
		orderTTL:  orderTTL,
		timeNow:   time.Now,
	}, nil
}

type CreateOrderArgs struct {
	ProductID      int64
	BuyerID        int64
	SellerID       int64
	FinalPrice     decimal.Decimal
	DeliveryMethod domain.DeliveryMethodType
	Shipping       domain.ShippingInfo
	Notes          string
}

// Create создает заказ со статусом pending и сроком ожидания оплаты.
// Правила для контактных данных зависят от способа доставки: имя и телефон обязательны
// для meetup и delivery, адрес только для delivery.
func (o *OrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	if err := validateCreateOrder(args); err != nil {
		return nil, err
	}

	order, createErr := o.orderRepo.Create(ctx, repoargs.OrderCreate{
		ProductID:      args.ProductID,
		BuyerID:        args.BuyerID,
		SellerID:       args.SellerID,
		FinalPrice:     args.FinalPrice,
		DeliveryMethod: args.DeliveryMethod,
		Shipping:       args.Shipping,
		Notes:          args.Notes,
		ExpiresAt:      o.timeNow().Add(o.orderTTL),
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating order: %w", createErr)
	}
	return order, nil
}

// GetByID возвращает заказ. Статус возвращаемого значения ленивый: просроченный pending
// отображается как cancelled, не дожидаясь фонового процесса (хранилище догонит).
func (o *OrderService) GetByID(ctx context.Context, orderID int64, actor domain.Actor) (*domain.Order, error) {
	order, err := o.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if !canViewOrder(order, actor) {
		return nil, domain.ErrForbidden
	}
	order.Status = order.EffectiveStatus(o.timeNow())
	return order, nil
}

// Confirm переводит заказ pending -> confirmed от имени продавца.
func (o *OrderService) Confirm(ctx context.Context, orderID int64, sellerID int64) (*domain.Order, error) {
	order, err := o.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if order.SellerID != sellerID {
		return nil, domain.ErrForbidden
	}
	updated, transitionErr := o.transition(ctx, order, domain.OrderStatusConfirmed)
	if transitionErr != nil {
		return nil, transitionErr
	}

	o.notifier.Emit(domain.NotificationEvent{
		Type:        domain.NotifyOrderConfirmed,
		RecipientID: updated.BuyerID,
		OrderID:     updated.ID,
		OccurredAt:  o.timeNow(),
	})
	return updated, nil
}

// UpdateStatus выполняет переход статуса заказа по инициативе покупателя или продавца.
// Легальные переходы: pending -> cancelled (покупатель или продавец),
// pending -> confirmed (продавец), confirmed -> completed (покупатель).
func (o *OrderService) UpdateStatus(
	ctx context.Context,
	orderID int64,
	to domain.OrderStatusType,
	actor domain.Actor,
) (*domain.Order, error) {
	order, err := o.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	switch to {
	case domain.OrderStatusCancelled:
		if order.BuyerID != actor.UserID && order.SellerID != actor.UserID {
			return nil, domain.ErrForbidden
		}
	case domain.OrderStatusConfirmed:
		if order.SellerID != actor.UserID {
			return nil, domain.ErrForbidden
		}
	case domain.OrderStatusCompleted:
		if order.BuyerID != actor.UserID {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, &domain.InvalidTransitionError{From: order.Status, To: to}
	}

	updated, transitionErr := o.transition(ctx, order, to)
	if transitionErr != nil {
		return nil, transitionErr
	}

	o.notifier.Emit(domain.NotificationEvent{
		Type:        notifyTypeForOrderStatus(to),
		RecipientID: counterpartyID(updated, actor.UserID),
		OrderID:     updated.ID,
		OccurredAt:  o.timeNow(),
	})
	return updated, nil
}

// ReapExpired отменяет просроченные pending-заказы без единого платежа. Используется
// фоновым процессом. Возвращает количество отмененных заказов.
func (o *OrderService) ReapExpired(ctx context.Context, now time.Time, limit uint) (int, error) {
	ids, err := o.orderRepo.ReapExpired(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("reaping expired orders: %w", err)
	}
	for _, id := range ids {
		o.notifier.Emit(domain.NotificationEvent{
			Type:       domain.NotifyOrderCancelled,
			OrderID:    id,
			OccurredAt: now,
			Message:    "order expired without payment",
		})
	}
	return len(ids), nil
}

// transition выполняет условный переход статуса. Из какого статуса переход легален,
// выводится из целевого статуса. Если условное обновление не затронуло строку,
// заказ перечитывается и ошибка уточняется.
func (o *OrderService) transition(
	ctx context.Context,
	order *domain.Order,
	to domain.OrderStatusType,
) (*domain.Order, error) {
	from := domain.OrderStatusPending
	if to == domain.OrderStatusCompleted {
		from = domain.OrderStatusConfirmed
	}

	// pending-заказ с истекшим сроком уже фактически отменен, даже если фоновый
	// процесс его еще не пометил.
	if from == domain.OrderStatusPending && order.Status == domain.OrderStatusPending &&
		order.IsExpired(o.timeNow()) && to != domain.OrderStatusCancelled {
		return nil, fmt.Errorf("order %d: %w: order expired", order.ID, domain.ErrInvalidState)
	}

	updated, err := o.orderRepo.UpdateStatusIf(ctx, repoargs.OrderStatusUpdate{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   to,
	})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("order transition: %w", err)
	}

	// Условие не выполнилось: выясняем текущее состояние.
	current, findErr := o.orderRepo.FindByID(ctx, order.ID)
	if findErr != nil {
		return nil, findErr //nolint:wrapcheck
	}
	if current.IsTerminal() {
		return nil, fmt.Errorf("order %d is %s: %w", current.ID, current.Status, domain.ErrInvalidState)
	}
	return nil, &domain.InvalidTransitionError{From: current.Status, To: to}
}

func validateCreateOrder(args CreateOrderArgs) error {
	if !args.FinalPrice.IsPositive() {
		return domain.NewValidationError("finalPrice", "must be positive")
	}
	switch args.DeliveryMethod {
	case domain.DeliveryMethodMeetup, domain.DeliveryMethodPickup, domain.DeliveryMethodDelivery:
	default:
		return domain.NewValidationError("deliveryMethod", "unknown delivery method")
	}

	needContact := args.DeliveryMethod != domain.DeliveryMethodPickup
	if needContact && (args.Shipping.FullName == "" || args.Shipping.Phone == "") {
		return domain.NewValidationError("shipping", "fullName and phone are required")
	}
	if args.DeliveryMethod == domain.DeliveryMethodDelivery && args.Shipping.AddressLine == "" {
		return domain.NewValidationError("shipping", "addressLine is required for delivery")
	}
	return nil
}

func canViewOrder(order *domain.Order, actor domain.Actor) bool {
	return actor.IsAdmin() || order.BuyerID == actor.UserID || order.SellerID == actor.UserID
}

func notifyTypeForOrderStatus(status domain.OrderStatusType) domain.NotificationEventType {
	switch status {
	case domain.OrderStatusConfirmed:
		return domain.NotifyOrderConfirmed
	case domain.OrderStatusCompleted:
		return domain.NotifyOrderCompleted
	default:
		return domain.NotifyOrderCancelled
	}
}

// counterpartyID возвращает id второй стороны сделки: уведомление о переходе получает
// не инициатор, а его контрагент.
func counterpartyID(order *domain.Order, actorID int64) int64 {
	if order.BuyerID == actorID {
		return order.SellerID
	}
	return order.BuyerID
}
