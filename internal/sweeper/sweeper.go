// Package sweeper фоновый процесс, приводящий просроченные платежи и заказы
// в конечные статусы.
package sweeper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultInterval           = time.Minute
	defaultServiceTimeout     = 10 * time.Second
	defaultBatchLimit    uint = 100
)

//go:generate mockgen -source=sweeper.go -destination=mocks/mocks.go -package=mocks

// PaymentReaper отклоняет просроченные платежи без доказательства перевода, каскадно
// отменяя их заказы. Операция идемпотентна.
type PaymentReaper interface {
	ReapExpired(ctx context.Context, now time.Time, limit uint) (int, error)
}

// OrderReaper отменяет просроченные заказы, по которым не было создано ни одного платежа.
// Операция идемпотентна.
type OrderReaper interface {
	ReapExpired(ctx context.Context, now time.Time, limit uint) (int, error)
}

// Sweeper по расписанию запускает реап платежей и заказов, чьи сроки истекли.
type Sweeper struct {
	payments   PaymentReaper
	orders     OrderReaper
	l          *logrus.Entry
	interval   time.Duration
	batchLimit uint
	timeNow    func() time.Time
}

func New(payments PaymentReaper, orders OrderReaper, l *logrus.Logger) *Sweeper {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "sweeper",
	})

	return &Sweeper{
		payments:   payments,
		orders:     orders,
		l:          loggerEntry,
		interval:   defaultInterval,
		batchLimit: defaultBatchLimit,
		timeNow:    time.Now,
	}
}

// SetInterval устанавливает период между проходами.
func (s *Sweeper) SetInterval(interval time.Duration) *Sweeper {
	if interval > 0 {
		s.interval = interval
	}
	return s
}

// SetBatchLimit устанавливает максимум записей, обрабатываемых за один проход.
func (s *Sweeper) SetBatchLimit(limit uint) *Sweeper {
	if limit > 0 {
		s.batchLimit = limit
	}
	return s
}

// Run запускает проходы по таймеру до отмены контекста. Ошибки одного прохода
// логируются и не роняют процесс: сроки хранятся в самих записях, следующий проход
// доберет пропущенное.
func (s *Sweeper) Run(ctx context.Context) {
	s.l.WithFields(logrus.Fields{
		"interval":   s.interval.String(),
		"batchLimit": s.batchLimit,
	}).Info("Starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход: сначала платежи (их каскад сам отменяет заказы),
// затем заказы без платежей. Ошибка одной фазы не мешает другой.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.timeNow()

	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	paymentsReaped, paymentsErr := s.payments.ReapExpired(reqCtx, now, s.batchLimit)
	if paymentsErr != nil {
		s.l.WithError(paymentsErr).Error("reap expired payments")
	}

	ordersReaped, ordersErr := s.orders.ReapExpired(reqCtx, now, s.batchLimit)
	if ordersErr != nil {
		s.l.WithError(ordersErr).Error("reap expired orders")
	}

	if paymentsReaped > 0 || ordersReaped > 0 {
		s.l.WithFields(logrus.Fields{
			"payments": paymentsReaped,
			"orders":   ordersReaped,
		}).Info("sweep pass done")
	}
}
