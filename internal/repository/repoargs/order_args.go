package repoargs

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
)

type OrderCreate struct {
	ProductID      int64
	BuyerID        int64
	SellerID       int64
	FinalPrice     decimal.Decimal
	DeliveryMethod domain.DeliveryMethodType
	Shipping       domain.ShippingInfo
	Notes          string
	ExpiresAt      time.Time
}

// OrderStatusUpdate условное обновление статуса заказа. Запрос затрагивает запись
// только когда текущий статус совпадает с FromStatus, что исключает гонки
// между параллельными переходами.
type OrderStatusUpdate struct {
	OrderID    int64
	FromStatus domain.OrderStatusType
	ToStatus   domain.OrderStatusType
}
