package domain

import "time"

type NotificationEventType string

const (
	NotifyPaymentCreated   NotificationEventType = "payment_created"
	NotifyProofUploaded    NotificationEventType = "proof_uploaded"
	NotifyPaymentConfirmed NotificationEventType = "payment_confirmed"
	NotifyPaymentRejected  NotificationEventType = "payment_rejected"
	NotifyOrderConfirmed   NotificationEventType = "order_confirmed"
	NotifyOrderCompleted   NotificationEventType = "order_completed"
	NotifyOrderCancelled   NotificationEventType = "order_cancelled"
)

// NotificationEvent запись-уведомление о переходе состояния. Доставкой занимается внешний
// сервис уведомлений; ядро лишь формирует запись. RecipientID = 0 означает
// широковещательное уведомление администраторам.
type NotificationEvent struct {
	Type        NotificationEventType
	RecipientID int64
	OrderID     int64
	PaymentID   int64
	OccurredAt  time.Time
	Message     string
}
