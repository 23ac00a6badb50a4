package domain

type OrderStatusType string

const (
	OrderStatusPending   OrderStatusType = "pending"
	OrderStatusConfirmed OrderStatusType = "confirmed"
	OrderStatusCompleted OrderStatusType = "completed"
	OrderStatusCancelled OrderStatusType = "cancelled"
)

type PaymentStatusType string

const (
	PaymentStatusPending   PaymentStatusType = "pending"
	PaymentStatusConfirmed PaymentStatusType = "confirmed"
	PaymentStatusRejected  PaymentStatusType = "rejected"
)

type DeliveryMethodType string

const (
	DeliveryMethodMeetup   DeliveryMethodType = "meetup"
	DeliveryMethodPickup   DeliveryMethodType = "pickup"
	DeliveryMethodDelivery DeliveryMethodType = "delivery"
)

type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

type DecisionType string

const (
	DecisionConfirm DecisionType = "confirm"
	DecisionReject  DecisionType = "reject"
)

// RejectionReasonExpired причина отклонения, которую проставляет фоновый процесс
// просроченным платежам без доказательства перевода.
const RejectionReasonExpired = "expired"

// Actor идентичность вызывающей стороны, проверенная внешним сервисом аутентификации.
// Сервисный слой обязан повторно сверять Actor с владельцами ресурса независимо от
// проверок транспортного слоя.
type Actor struct {
	UserID int64
	Role   RoleType
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
