package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ProductID      int64
	BuyerID        int64
	SellerID       int64
	FinalPrice     decimal.Decimal
	DeliveryMethod DeliveryMethodType
	Shipping       ShippingInfo
	Notes          string
	Status         OrderStatusType
	ExpiresAt      time.Time
}

// ShippingInfo контактные данные покупателя для доставки/встречи. AddressLine
// обязателен только для метода доставки DeliveryMethodDelivery.
type ShippingInfo struct {
	FullName    string
	Phone       string
	AddressLine string
}

// IsExpired сообщает, истек ли срок оплаты заказа на момент now. Граница включительная:
// в момент ExpiresAt заказ уже считается просроченным.
func (o *Order) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// EffectiveStatus возвращает статус заказа с учетом ленивой проверки срока. Просроченный
// pending-заказ отображается как cancelled еще до того, как его пометит фоновый процесс.
func (o *Order) EffectiveStatus(now time.Time) OrderStatusType {
	if o.Status == OrderStatusPending && o.IsExpired(now) {
		return OrderStatusCancelled
	}
	return o.Status
}

// IsTerminal сообщает, находится ли заказ в конечном статусе.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

type Payment struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	OrderID         int64
	Amount          decimal.Decimal
	TransactionCode string
	Status          PaymentStatusType
	ProofRef        string
	ExpiresAt       time.Time
	ConfirmedAt     *time.Time
	RejectionReason string
}

// HasProof сообщает, прикреплено ли к платежу доказательство перевода.
func (p *Payment) HasProof() bool {
	return p.ProofRef != ""
}

// IsExpired сообщает, истек ли срок загрузки доказательства. Граница включительная.
func (p *Payment) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// EffectiveStatus возвращает статус платежа с учетом ленивой проверки срока. Просроченный
// pending-платеж без доказательства отображается как rejected еще до того, как его
// пометит фоновый процесс. Платеж с загруженным доказательством остается pending:
// решение за администратором независимо от срока.
func (p *Payment) EffectiveStatus(now time.Time) PaymentStatusType {
	if p.Status == PaymentStatusPending && !p.HasProof() && p.IsExpired(now) {
		return PaymentStatusRejected
	}
	return p.Status
}

// IsTerminal сообщает, находится ли платеж в конечном статусе. Конечные статусы
// необратимы: повторные переходы из них запрещены.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusConfirmed || p.Status == PaymentStatusRejected
}

// BankQR реквизиты банковского счета с QR-кодом, по которым покупатель выполняет
// ручной перевод. Справочные данные, ядром не изменяются.
type BankQR struct {
	ID            int64
	BankName      string
	AccountName   string
	AccountNumber string
	QRImageRef    string
	Active        bool
}
