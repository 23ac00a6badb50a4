package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/unipay/internal/storage"
	"github.com/fsdevblog/unipay/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup = "/api"

	PaymentsRoute        = "/payments"
	PaymentsByOrderRoute = "/payments/order/:orderID"
	PaymentProofRoute    = "/payments/:id/upload-proof"
	PaymentConfirmRoute  = "/payments/:id/confirm"
	PaymentRejectRoute   = "/payments/:id/reject"
	MyPaymentsRoute      = "/payments/my-payments"

	OrdersRoute       = "/orders"
	OrderRoute        = "/orders/:id"
	OrderConfirmRoute = "/orders/:id/confirm"
	OrderStatusRoute  = "/orders/:id/status"
)

type RouterArgs struct {
	Logger         *logrus.Logger
	PaymentService PaymentServicer
	OrderService   OrderServicer
	ProofStore     storage.ProofStore
	JWTSecretKey   []byte
}

func New(args RouterArgs) *gin.Engine {
	if err := registerValidators(); err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	paymentsHandler := NewPaymentsHandler(args.PaymentService, args.ProofStore)
	ordersHandler := NewOrdersHandler(args.OrderService)

	api := r.Group(RouteGroup)
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))

	api.POST(PaymentsRoute, paymentsHandler.Create)
	// порядок важен: my-payments должен регистрироваться раньше роутов с :id
	api.GET(MyPaymentsRoute, paymentsHandler.MyPayments)
	api.GET(PaymentsByOrderRoute, paymentsHandler.GetByOrder)
	api.PUT(PaymentProofRoute, paymentsHandler.UploadProof)
	api.PUT(PaymentConfirmRoute, middlewares.AdminRequired(), paymentsHandler.Confirm)
	api.PUT(PaymentRejectRoute, middlewares.AdminRequired(), paymentsHandler.Reject)

	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrderRoute, ordersHandler.Get)
	api.PUT(OrderConfirmRoute, ordersHandler.Confirm)
	api.PUT(OrderStatusRoute, ordersHandler.UpdateStatus)

	return r
}
