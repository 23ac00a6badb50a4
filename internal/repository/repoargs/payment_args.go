package repoargs

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
)

type PaymentCreate struct {
	OrderID         int64
	Amount          decimal.Decimal
	TransactionCode string
	ExpiresAt       time.Time
}

// PaymentAttachProof условная запись доказательства перевода. Now передается явно,
// чтобы граница срока проверялась одним и тем же моментом времени на всех уровнях.
type PaymentAttachProof struct {
	PaymentID int64
	ProofRef  string
	Now       time.Time
}

// PaymentDecide условный терминальный переход платежа. Запрос затрагивает запись только
// когда платеж все еще pending и доказательство прикреплено.
type PaymentDecide struct {
	PaymentID       int64
	Status          domain.PaymentStatusType
	RejectionReason string
	Now             time.Time
}

// PaymentFilter фильтры выборки истории платежей покупателя. Нулевые значения
// означают отсутствие фильтра.
type PaymentFilter struct {
	Status   domain.PaymentStatusType
	DateFrom time.Time
	DateTo   time.Time
}
