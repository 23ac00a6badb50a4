package service

import (
	"fmt"
	"time"

	"github.com/fsdevblog/unipay/internal/service/txcode"
	"github.com/fsdevblog/unipay/pkg/uow"
)

type AppServices struct {
	OrderService   *OrderService
	PaymentService *PaymentService
}

type FactoryArgs struct {
	Notifier   NotificationEmitter
	OrderTTL   time.Duration
	PaymentTTL time.Duration
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	orderService, orderServiceErr := NewOrderService(unitOfWork, args.Notifier, args.OrderTTL)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	paymentService, paymentServiceErr := NewPaymentService(
		unitOfWork, txcode.New(), args.Notifier, args.PaymentTTL)
	if paymentServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", paymentServiceErr.Error())
	}

	return &AppServices{
		OrderService:   orderService,
		PaymentService: paymentService,
	}, nil
}
