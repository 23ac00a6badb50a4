// Package notify отправляет записи-уведомления внешнему сервису уведомлений.
// Доставка до получателей (push, email) остается заботой внешнего сервиса.
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/unipay/internal/domain"
)

const (
	defaultEmitTimeout = 5 * time.Second
	defaultRetryCount  = 3
)

// WebhookEmitter отправляет уведомления POST-запросом на вебхук. Отправка асинхронная:
// переходы состояний не ждут и не зависят от результата, ошибки только логируются.
type WebhookEmitter struct {
	client *resty.Client
	l      *logrus.Entry
}

func NewWebhookEmitter(webhookURL string, l *logrus.Logger) *WebhookEmitter {
	client := resty.New().
		SetBaseURL(webhookURL).
		SetTimeout(defaultEmitTimeout).
		SetRetryCount(defaultRetryCount)

	return &WebhookEmitter{
		client: client,
		l: l.WithFields(logrus.Fields{
			"component": "notify",
			"module":    "webhook",
		}),
	}
}

type notificationRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	RecipientID int64     `json:"recipient_id,omitempty"`
	OrderID     int64     `json:"order_id,omitempty"`
	PaymentID   int64     `json:"payment_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Message     string    `json:"message,omitempty"`
}

// Emit отправляет событие в фоне и сразу возвращает управление.
func (e *WebhookEmitter) Emit(event domain.NotificationEvent) {
	record := notificationRecord{
		ID:          uuid.NewString(),
		Type:        string(event.Type),
		RecipientID: event.RecipientID,
		OrderID:     event.OrderID,
		PaymentID:   event.PaymentID,
		OccurredAt:  event.OccurredAt,
		Message:     event.Message,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultEmitTimeout*(defaultRetryCount+1))
		defer cancel()

		resp, err := e.client.R().
			SetContext(ctx).
			SetBody(record).
			Post("")

		l := e.l.WithFields(logrus.Fields{
			"notificationID": record.ID,
			"type":           record.Type,
		})
		if err != nil {
			l.WithError(err).Error("emit notification")
			return
		}
		if resp.IsError() {
			l.WithField("status", resp.StatusCode()).Error("emit notification: non-2xx response")
			return
		}
		l.Debug("notification emitted")
	}()
}

// NoopEmitter заглушка для тестов и окружений без сервиса уведомлений.
type NoopEmitter struct{}

func NewNoopEmitter() *NoopEmitter {
	return &NoopEmitter{}
}

func (e *NoopEmitter) Emit(_ domain.NotificationEvent) {}
