package service

import (
	"context"
	"time"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatusIf(ctx context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error)
	ReapExpired(ctx context.Context, now time.Time, limit uint) ([]int64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, args repoargs.PaymentCreate) (*domain.Payment, error)
	FindByID(ctx context.Context, id int64) (*domain.Payment, error)
	FindLatestByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)
	FindActiveByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)
	GetByBuyerID(ctx context.Context, buyerID int64, filter repoargs.PaymentFilter) ([]domain.Payment, error)
	AttachProofIf(ctx context.Context, args repoargs.PaymentAttachProof) (*domain.Payment, error)
	DecideIf(ctx context.Context, args repoargs.PaymentDecide) (*domain.Payment, error)
	ReapExpired(ctx context.Context, now time.Time, limit uint) ([]domain.Payment, error)
}

type BankQRRepository interface {
	GetActive(ctx context.Context) (*domain.BankQR, error)
}

// CodeGenerator выдает коды назначения платежа.
type CodeGenerator interface {
	Generate() (string, error)
}

// NotificationEmitter отправляет запись-уведомление внешнему сервису. Вызов не должен
// блокировать переход состояния: реализации обязаны обрабатывать событие асинхронно
// и глотать собственные ошибки.
type NotificationEmitter interface {
	Emit(event domain.NotificationEvent)
}
