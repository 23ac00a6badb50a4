package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/service"
)

type OrdersHandler struct {
	svs OrderServicer
}

func NewOrdersHandler(svs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		svs: svs,
	}
}

type ShippingParams struct {
	FullName    string `binding:"max=255"       json:"fullName"`
	Phone       string `binding:"max=32"        json:"phone"`
	AddressLine string `binding:"max_bytes=500" json:"addressLine"`
}

type CreateOrderParams struct {
	ProductID      int64           `binding:"required"                               json:"productId"`
	SellerID       int64           `binding:"required"                               json:"sellerId"`
	FinalPrice     decimal.Decimal `binding:"required"                               json:"finalPrice"`
	DeliveryMethod string          `binding:"required,oneof=meetup pickup delivery"  json:"deliveryMethod"`
	Shipping       ShippingParams  `json:"shipping"`
	Notes          string          `binding:"max_bytes=1000"                         json:"notes"`
}

type OrderResponse struct {
	ID             int64                     `json:"id"`
	ProductID      int64                     `json:"productId"`
	BuyerID        int64                     `json:"buyerId"`
	SellerID       int64                     `json:"sellerId"`
	FinalPrice     float64                   `json:"finalPrice"`
	DeliveryMethod domain.DeliveryMethodType `json:"deliveryMethod"`
	Shipping       ShippingParams            `json:"shipping"`
	Notes          string                    `json:"notes,omitempty"`
	Status         domain.OrderStatusType    `json:"status"`
	CreatedAt      time.Time                 `json:"createdAt"`
	ExpiresAt      time.Time                 `json:"expiresAt"`
}

// Create POST RouteGroup + OrdersRoute. Создает заказ от имени текущего юзера.
func (o *OrdersHandler) Create(c *gin.Context) {
	currentActor := getActorFromContext(c)

	var params CreateOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.svs.Create(reqCtx, service.CreateOrderArgs{
		ProductID:      params.ProductID,
		BuyerID:        currentActor.UserID,
		SellerID:       params.SellerID,
		FinalPrice:     params.FinalPrice,
		DeliveryMethod: domain.DeliveryMethodType(params.DeliveryMethod),
		Shipping: domain.ShippingInfo{
			FullName:    params.Shipping.FullName,
			Phone:       params.Shipping.Phone,
			AddressLine: params.Shipping.AddressLine,
		},
		Notes: params.Notes,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, convertOrderResponse(order))
}

// Get GET RouteGroup + OrderRoute.
func (o *OrdersHandler) Get(c *gin.Context) {
	currentActor := getActorFromContext(c)

	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.svs.GetByID(reqCtx, orderID, currentActor)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertOrderResponse(order))
}

// Confirm PUT RouteGroup + OrderConfirmRoute. Подтверждение заказа продавцом.
func (o *OrdersHandler) Confirm(c *gin.Context) {
	currentActor := getActorFromContext(c)

	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.svs.Confirm(reqCtx, orderID, currentActor.UserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertOrderResponse(order))
}

type UpdateOrderStatusParams struct {
	Status string `binding:"required,oneof=confirmed completed cancelled" json:"status"`
}

// UpdateStatus PUT RouteGroup + OrderStatusRoute. Переход статуса по инициативе
// покупателя или продавца.
func (o *OrdersHandler) UpdateStatus(c *gin.Context) {
	currentActor := getActorFromContext(c)

	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params UpdateOrderStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.svs.UpdateStatus(reqCtx, orderID, domain.OrderStatusType(params.Status), currentActor)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertOrderResponse(order))
}

func convertOrderResponse(order *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:             order.ID,
		ProductID:      order.ProductID,
		BuyerID:        order.BuyerID,
		SellerID:       order.SellerID,
		FinalPrice:     order.FinalPrice.InexactFloat64(),
		DeliveryMethod: order.DeliveryMethod,
		Shipping: ShippingParams{
			FullName:    order.Shipping.FullName,
			Phone:       order.Shipping.Phone,
			AddressLine: order.Shipping.AddressLine,
		},
		Notes:     order.Notes,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		ExpiresAt: order.ExpiresAt,
	}
}
