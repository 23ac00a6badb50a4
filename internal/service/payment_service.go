package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/pkg/uow"
)

const (
	// DefaultPaymentTTL срок, в течение которого покупатель обязан загрузить
	// доказательство перевода.
	DefaultPaymentTTL = 24 * time.Hour

	// createCodeAttempts число попыток вставки платежа при коллизии кода назначения.
	createCodeAttempts = 3
)

// PaymentService сверяет ручные банковские переводы с заказами: выдает код назначения,
// принимает доказательство перевода и проводит решение администратора с каскадом
// на статус заказа.
type PaymentService struct {
	uow         uow.UOW
	paymentRepo PaymentRepository
	orderRepo   OrderRepository
	bankQRRepo  BankQRRepository
	codeGen     CodeGenerator
	notifier    NotificationEmitter
	paymentTTL  time.Duration
	timeNow     func() time.Time
}

func NewPaymentService(
	u uow.UOW,
	codeGen CodeGenerator,
	notifier NotificationEmitter,
	paymentTTL time.Duration,
) (*PaymentService, error) {
	paymentRepo, paymentRepoErr :=
		uow.GetRepositoryAs[PaymentRepository](u, uow.RepositoryName(repoargs.PaymentRepoName))
	if paymentRepoErr != nil {
		return nil, paymentRepoErr
	}
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	bankQRRepo, bankQRRepoErr :=
		uow.GetRepositoryAs[BankQRRepository](u, uow.RepositoryName(repoargs.BankQRRepoName))
	if bankQRRepoErr != nil {
		return nil, bankQRRepoErr
	}
	if paymentTTL <= 0 {
		paymentTTL = DefaultPaymentTTL
	}
	return &PaymentService{
		uow:         u,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		bankQRRepo:  bankQRRepo,
		codeGen:     codeGen,
		notifier:    notifier,
		paymentTTL:  paymentTTL,
		timeNow:     time.Now,
	}, nil
}

// Create создает платеж по pending-заказу покупателя: сумма равна цене заказа, код
// назначения свежесгенерирован, срок загрузки доказательства отсчитывается от текущего
// момента. Вместе с платежом возвращаются активные банковские реквизиты.
//
// Ошибки: domain.ErrRecordNotFound (заказ не найден), domain.ErrForbidden (не покупатель),
// domain.ErrInvalidState (заказ не pending либо просрочен), *domain.DuplicatePaymentError
// (по заказу уже есть незавершенный платеж).
func (p *PaymentService) Create(
	ctx context.Context,
	orderID int64,
	buyerID int64,
) (*domain.Payment, *domain.BankQR, error) {
	order, orderErr := p.orderRepo.FindByID(ctx, orderID)
	if orderErr != nil {
		return nil, nil, orderErr //nolint:wrapcheck
	}
	if order.BuyerID != buyerID {
		return nil, nil, domain.ErrForbidden
	}

	now := p.timeNow()
	if order.Status != domain.OrderStatusPending || order.IsExpired(now) {
		return nil, nil, fmt.Errorf(
			"order %d is %s: %w", order.ID, order.EffectiveStatus(now), domain.ErrInvalidState)
	}

	if existing, findErr := p.paymentRepo.FindActiveByOrderID(ctx, orderID); findErr == nil {
		return nil, nil, domain.NewDuplicatePaymentError(existing)
	} else if !errors.Is(findErr, domain.ErrRecordNotFound) {
		return nil, nil, findErr //nolint:wrapcheck
	}

	// Реквизиты читаются до вставки: сбой на них не должен оставлять платеж,
	// который при повторе запроса отзовется дубликатом. Отсутствие активных
	// реквизитов платеж не блокирует, как и в GetByOrder.
	bankQR, qrErr := p.bankQRRepo.GetActive(ctx)
	if qrErr != nil && !errors.Is(qrErr, domain.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("creating payment: %w", qrErr)
	}

	payment, createErr := p.createWithFreshCode(ctx, order, now)
	if createErr != nil {
		// Конкурентный запрос мог успеть создать платеж между проверкой и вставкой.
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			if existing, findErr := p.paymentRepo.FindActiveByOrderID(ctx, orderID); findErr == nil {
				return nil, nil, domain.NewDuplicatePaymentError(existing)
			}
		}
		return nil, nil, fmt.Errorf("creating payment: %w", createErr)
	}

	p.notifier.Emit(domain.NotificationEvent{
		Type:        domain.NotifyPaymentCreated,
		RecipientID: buyerID,
		OrderID:     orderID,
		PaymentID:   payment.ID,
		OccurredAt:  now,
	})
	return payment, bankQR, nil
}

// createWithFreshCode вставляет платеж, повторяя попытку с новым кодом назначения
// при коллизии по уникальному индексу кода.
func (p *PaymentService) createWithFreshCode(
	ctx context.Context,
	order *domain.Order,
	now time.Time,
) (*domain.Payment, error) {
	var lastErr error
	for range createCodeAttempts {
		code, codeErr := p.codeGen.Generate()
		if codeErr != nil {
			return nil, codeErr
		}
		payment, createErr := p.paymentRepo.Create(ctx, repoargs.PaymentCreate{
			OrderID:         order.ID,
			Amount:          order.FinalPrice,
			TransactionCode: code,
			ExpiresAt:       now.Add(p.paymentTTL),
		})
		if createErr == nil {
			return payment, nil
		}
		lastErr = createErr
		if !errors.Is(createErr, domain.ErrDuplicateKey) {
			break
		}
	}
	return nil, lastErr
}

// AttachProof прикрепляет доказательство перевода к pending-платежу покупателя.
// Платеж остается pending и ждет решения администратора.
//
// Ошибки: domain.ErrRecordNotFound, domain.ErrForbidden, domain.ErrExpired (срок истек,
// граница включительная), domain.ErrInvalidState (платеж уже завершен).
func (p *PaymentService) AttachProof(
	ctx context.Context,
	paymentID int64,
	proofRef string,
	buyerID int64,
) (*domain.Payment, error) {
	payment, paymentErr := p.paymentRepo.FindByID(ctx, paymentID)
	if paymentErr != nil {
		return nil, paymentErr //nolint:wrapcheck
	}
	order, orderErr := p.orderRepo.FindByID(ctx, payment.OrderID)
	if orderErr != nil {
		return nil, orderErr //nolint:wrapcheck
	}
	if order.BuyerID != buyerID {
		return nil, domain.ErrForbidden
	}

	updated, updateErr := p.paymentRepo.AttachProofIf(ctx, repoargs.PaymentAttachProof{
		PaymentID: paymentID,
		ProofRef:  proofRef,
		Now:       p.timeNow(),
	})
	if updateErr != nil {
		if errors.Is(updateErr, domain.ErrRecordNotFound) {
			return nil, p.explainStalePayment(ctx, paymentID)
		}
		return nil, fmt.Errorf("attaching proof: %w", updateErr)
	}

	p.notifier.Emit(domain.NotificationEvent{
		Type:       domain.NotifyProofUploaded,
		OrderID:    updated.OrderID,
		PaymentID:  updated.ID,
		OccurredAt: p.timeNow(),
	})
	return updated, nil
}

// Decide проводит решение администратора по платежу с прикрепленным доказательством.
// Подтверждение каскадно переводит pending-заказ в confirmed внутри той же транзакции;
// если заказ уже продвинулся, каскад тихо не срабатывает. Отклонение заказ не трогает:
// дальнейшую судьбу заказа стороны решают сами.
//
// Ошибки: domain.ErrForbidden (не администратор), domain.ErrRecordNotFound,
// domain.ErrProofMissing, domain.ErrInvalidState (платеж уже завершен, в том числе
// когда из двух конкурентных решений это оказалось вторым).
func (p *PaymentService) Decide(
	ctx context.Context,
	paymentID int64,
	decision domain.DecisionType,
	reason string,
	actor domain.Actor,
) (*domain.Payment, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	status := domain.PaymentStatusConfirmed
	if decision == domain.DecisionReject {
		status = domain.PaymentStatusRejected
	}

	now := p.timeNow()
	var updated *domain.Payment

	txErr := p.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, paymentRepoErr :=
			uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
		if paymentRepoErr != nil {
			return paymentRepoErr //nolint:wrapcheck
		}

		var decideErr error
		updated, decideErr = paymentRepo.DecideIf(c, repoargs.PaymentDecide{
			PaymentID:       paymentID,
			Status:          status,
			RejectionReason: reason,
			Now:             now,
		})
		if decideErr != nil {
			return decideErr //nolint:wrapcheck
		}

		if status == domain.PaymentStatusConfirmed {
			return p.cascadeOrderConfirm(c, tx, updated.OrderID)
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrRecordNotFound) {
			return nil, p.explainUndecidablePayment(ctx, paymentID)
		}
		return nil, fmt.Errorf("deciding payment: %w", txErr)
	}

	notifyType := domain.NotifyPaymentConfirmed
	if status == domain.PaymentStatusRejected {
		notifyType = domain.NotifyPaymentRejected
	}
	p.notifier.Emit(domain.NotificationEvent{
		Type:        notifyType,
		RecipientID: p.orderBuyerID(ctx, updated.OrderID),
		OrderID:     updated.OrderID,
		PaymentID:   updated.ID,
		OccurredAt:  now,
		Message:     reason,
	})
	return updated, nil
}

// GetByOrder возвращает последний платеж заказа вместе с банковскими реквизитами.
// Доступ имеют покупатель, продавец и администратор. Статус платежа ленивый: просроченный
// pending без доказательства отображается как rejected, не дожидаясь фонового процесса.
func (p *PaymentService) GetByOrder(
	ctx context.Context,
	orderID int64,
	actor domain.Actor,
) (*domain.Payment, *domain.BankQR, error) {
	order, orderErr := p.orderRepo.FindByID(ctx, orderID)
	if orderErr != nil {
		return nil, nil, orderErr //nolint:wrapcheck
	}
	if !canViewOrder(order, actor) {
		return nil, nil, domain.ErrForbidden
	}

	payment, paymentErr := p.paymentRepo.FindLatestByOrderID(ctx, orderID)
	if paymentErr != nil {
		return nil, nil, paymentErr //nolint:wrapcheck
	}
	payment.Status = payment.EffectiveStatus(p.timeNow())

	bankQR, qrErr := p.bankQRRepo.GetActive(ctx)
	if qrErr != nil && !errors.Is(qrErr, domain.ErrRecordNotFound) {
		return nil, nil, qrErr //nolint:wrapcheck
	}
	return payment, bankQR, nil
}

// ListByBuyer возвращает историю платежей покупателя с необязательными фильтрами
// по статусу и датам создания. Статусы в выдаче ленивые, как в GetByOrder.
func (p *PaymentService) ListByBuyer(
	ctx context.Context,
	buyerID int64,
	filter repoargs.PaymentFilter,
) ([]domain.Payment, error) {
	payments, err := p.paymentRepo.GetByBuyerID(ctx, buyerID, filter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	now := p.timeNow()
	for i := range payments {
		payments[i].Status = payments[i].EffectiveStatus(now)
	}
	return payments, nil
}

// ReapExpired отклоняет просроченные платежи без доказательства перевода и каскадно
// отменяет их pending-заказы внутри одной транзакции. Возвращает число отклоненных
// платежей. Повторный запуск на тех же данных ничего не меняет.
func (p *PaymentService) ReapExpired(ctx context.Context, now time.Time, limit uint) (int, error) {
	var reaped []domain.Payment

	txErr := p.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, paymentRepoErr :=
			uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
		if paymentRepoErr != nil {
			return paymentRepoErr //nolint:wrapcheck
		}
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		var reapErr error
		reaped, reapErr = paymentRepo.ReapExpired(c, now, limit)
		if reapErr != nil {
			return reapErr //nolint:wrapcheck
		}

		for _, payment := range reaped {
			_, cancelErr := orderRepo.UpdateStatusIf(c, repoargs.OrderStatusUpdate{
				OrderID:    payment.OrderID,
				FromStatus: domain.OrderStatusPending,
				ToStatus:   domain.OrderStatusCancelled,
			})
			// Заказ мог уже продвинуться или быть отмененным: каскад идемпотентен.
			if cancelErr != nil && !errors.Is(cancelErr, domain.ErrRecordNotFound) {
				return cancelErr //nolint:wrapcheck
			}
		}
		return nil
	})
	if txErr != nil {
		return 0, fmt.Errorf("reaping expired payments: %w", txErr)
	}

	for _, payment := range reaped {
		p.notifier.Emit(domain.NotificationEvent{
			Type:        domain.NotifyPaymentRejected,
			RecipientID: p.orderBuyerID(ctx, payment.OrderID),
			OrderID:     payment.OrderID,
			PaymentID:   payment.ID,
			OccurredAt:  now,
			Message:     domain.RejectionReasonExpired,
		})
	}
	return len(reaped), nil
}

// orderBuyerID возвращает покупателя заказа для адресных уведомлений. При неудаче
// поиска возвращает 0: уведомление уйдет широковещательным, сам переход не откатывается.
func (p *PaymentService) orderBuyerID(ctx context.Context, orderID int64) int64 {
	order, err := p.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return 0
	}
	return order.BuyerID
}

// cascadeOrderConfirm переводит pending-заказ подтвержденного платежа в confirmed.
// Если заказ уже не pending, каскад не срабатывает: подтверждение платежа остается
// в силе как аудиторская запись о полученных деньгах.
func (p *PaymentService) cascadeOrderConfirm(ctx context.Context, tx uow.TX, orderID int64) error {
	orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return orderRepoErr //nolint:wrapcheck
	}
	_, updateErr := orderRepo.UpdateStatusIf(ctx, repoargs.OrderStatusUpdate{
		OrderID:    orderID,
		FromStatus: domain.OrderStatusPending,
		ToStatus:   domain.OrderStatusConfirmed,
	})
	if updateErr != nil && !errors.Is(updateErr, domain.ErrRecordNotFound) {
		return fmt.Errorf("cascading order confirm: %w", updateErr)
	}
	return nil
}

// explainStalePayment уточняет, почему условная запись доказательства не прошла.
func (p *PaymentService) explainStalePayment(ctx context.Context, paymentID int64) error {
	payment, err := p.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if payment.IsTerminal() {
		return fmt.Errorf("payment %d is %s: %w", payment.ID, payment.Status, domain.ErrInvalidState)
	}
	if payment.IsExpired(p.timeNow()) {
		return fmt.Errorf("payment %d: %w", payment.ID, domain.ErrExpired)
	}
	return fmt.Errorf("payment %d: %w", payment.ID, domain.ErrInvalidState)
}

// explainUndecidablePayment уточняет, почему условное решение администратора не прошло.
func (p *PaymentService) explainUndecidablePayment(ctx context.Context, paymentID int64) error {
	payment, err := p.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if !payment.HasProof() && !payment.IsTerminal() {
		return fmt.Errorf("payment %d: %w", payment.ID, domain.ErrProofMissing)
	}
	if payment.IsTerminal() {
		return fmt.Errorf("payment %d is %s: %w", payment.ID, payment.Status, domain.ErrInvalidState)
	}
	return fmt.Errorf("payment %d: %w", payment.ID, domain.ErrInvalidState)
}
