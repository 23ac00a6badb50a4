package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/internal/service"
)

// PaymentServicer интерфейс исключительно для моков.
type PaymentServicer interface {
	Create(ctx context.Context, orderID int64, buyerID int64) (*domain.Payment, *domain.BankQR, error)
	AttachProof(ctx context.Context, paymentID int64, proofRef string, buyerID int64) (*domain.Payment, error)
	Decide(
		ctx context.Context,
		paymentID int64,
		decision domain.DecisionType,
		reason string,
		actor domain.Actor,
	) (*domain.Payment, error)
	GetByOrder(ctx context.Context, orderID int64, actor domain.Actor) (*domain.Payment, *domain.BankQR, error)
	ListByBuyer(ctx context.Context, buyerID int64, filter repoargs.PaymentFilter) ([]domain.Payment, error)
}

type OrderServicer interface {
	Create(ctx context.Context, args service.CreateOrderArgs) (*domain.Order, error)
	GetByID(ctx context.Context, orderID int64, actor domain.Actor) (*domain.Order, error)
	Confirm(ctx context.Context, orderID int64, sellerID int64) (*domain.Order, error)
	UpdateStatus(
		ctx context.Context,
		orderID int64,
		to domain.OrderStatusType,
		actor domain.Actor,
	) (*domain.Order, error)
}
