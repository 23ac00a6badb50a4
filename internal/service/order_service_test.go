package service

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/internal/service/mocks"
	"github.com/fsdevblog/unipay/pkg/uow"
	uowmocks "github.com/fsdevblog/unipay/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockUOW       *uowmocks.MockUOW
	mockOrderRepo *mocks.MockOrderRepository
	mockNotifier  *mocks.MockNotificationEmitter
	orderService  *OrderService

	now time.Time
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockNotifier = mocks.NewMockNotificationEmitter(s.mockCtrl)

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	orderService, servErr := NewOrderService(s.mockUOW, s.mockNotifier, 0)
	s.Require().NoError(servErr)

	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	orderService.timeNow = func() time.Time { return s.now }
	s.orderService = orderService
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrderServiceTestSuite) validArgs() CreateOrderArgs {
	return CreateOrderArgs{
		ProductID:      100,
		BuyerID:        1,
		SellerID:       2,
		FinalPrice:     decimal.NewFromInt(1500),
		DeliveryMethod: domain.DeliveryMethodDelivery,
		Shipping: domain.ShippingInfo{
			FullName:    gofakeit.Name(),
			Phone:       gofakeit.Phone(),
			AddressLine: gofakeit.Address().Address,
		},
	}
}

func (s *OrderServiceTestSuite) TestCreate() {
	args := s.validArgs()
	created := &domain.Order{
		ID:         10,
		ProductID:  args.ProductID,
		BuyerID:    args.BuyerID,
		SellerID:   args.SellerID,
		FinalPrice: args.FinalPrice,
		Status:     domain.OrderStatusPending,
		ExpiresAt:  s.now.Add(DefaultOrderTTL),
	}

	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), repoargs.OrderCreate{
			ProductID:      args.ProductID,
			BuyerID:        args.BuyerID,
			SellerID:       args.SellerID,
			FinalPrice:     args.FinalPrice,
			DeliveryMethod: args.DeliveryMethod,
			Shipping:       args.Shipping,
			ExpiresAt:      s.now.Add(DefaultOrderTTL),
		}).
		Return(created, nil)

	order, err := s.orderService.Create(s.T().Context(), args)

	s.Require().NoError(err)
	s.Equal(created, order)
}

func (s *OrderServiceTestSuite) TestCreateValidation() {
	negativePrice := s.validArgs()
	negativePrice.FinalPrice = decimal.NewFromInt(-5)

	zeroPrice := s.validArgs()
	zeroPrice.FinalPrice = decimal.Zero

	unknownDelivery := s.validArgs()
	unknownDelivery.DeliveryMethod = "teleport"

	meetupNoPhone := s.validArgs()
	meetupNoPhone.DeliveryMethod = domain.DeliveryMethodMeetup
	meetupNoPhone.Shipping.Phone = ""

	deliveryNoAddress := s.validArgs()
	deliveryNoAddress.Shipping.AddressLine = ""

	// Самовывоз контактов не требует.
	pickupNoContact := s.validArgs()
	pickupNoContact.DeliveryMethod = domain.DeliveryMethodPickup
	pickupNoContact.Shipping = domain.ShippingInfo{}

	cases := []struct {
		name    string
		args    CreateOrderArgs
		wantErr bool
	}{
		{name: "negative price", args: negativePrice, wantErr: true},
		{name: "zero price", args: zeroPrice, wantErr: true},
		{name: "unknown delivery method", args: unknownDelivery, wantErr: true},
		{name: "meetup without phone", args: meetupNoPhone, wantErr: true},
		{name: "delivery without address", args: deliveryNoAddress, wantErr: true},
		{name: "pickup without contact", args: pickupNoContact},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			if !t.wantErr {
				s.mockOrderRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(&domain.Order{ID: 11, Status: domain.OrderStatusPending}, nil)
			}

			_, err := s.orderService.Create(s.T().Context(), t.args)

			if t.wantErr {
				s.Require().ErrorIs(err, domain.ErrValidation)
				return
			}
			s.Require().NoError(err)
		})
	}
}

func (s *OrderServiceTestSuite) TestGetByID() {
	order := &domain.Order{
		ID:        10,
		BuyerID:   1,
		SellerID:  2,
		Status:    domain.OrderStatusPending,
		ExpiresAt: s.now.Add(time.Hour),
	}

	// Просроченный pending отображается как cancelled, не дожидаясь фонового процесса.
	expiredOrder := &domain.Order{
		ID:        11,
		BuyerID:   1,
		SellerID:  2,
		Status:    domain.OrderStatusPending,
		ExpiresAt: s.now,
	}

	cases := []struct {
		name       string
		order      *domain.Order
		actor      domain.Actor
		wantStatus domain.OrderStatusType
		wantErr    error
	}{
		{
			name:       "buyer sees pending",
			order:      order,
			actor:      domain.Actor{UserID: 1, Role: domain.RoleUser},
			wantStatus: domain.OrderStatusPending,
		},
		{
			name:       "expired pending shown as cancelled",
			order:      expiredOrder,
			actor:      domain.Actor{UserID: 1, Role: domain.RoleUser},
			wantStatus: domain.OrderStatusCancelled,
		},
		{
			name:    "stranger forbidden",
			order:   order,
			actor:   domain.Actor{UserID: 999, Role: domain.RoleUser},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			orderCopy := *t.order
			s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), t.order.ID).Return(&orderCopy, nil)

			result, err := s.orderService.GetByID(s.T().Context(), t.order.ID, t.actor)

			if t.wantErr != nil {
				s.Require().ErrorIs(err, t.wantErr)
				return
			}
			s.Require().NoError(err)
			s.Equal(t.wantStatus, result.Status)
		})
	}
}

func (s *OrderServiceTestSuite) TestConfirm() {
	order := &domain.Order{
		ID:        10,
		BuyerID:   1,
		SellerID:  2,
		Status:    domain.OrderStatusPending,
		ExpiresAt: s.now.Add(time.Hour),
	}
	confirmed := &domain.Order{
		ID:       order.ID,
		BuyerID:  order.BuyerID,
		SellerID: order.SellerID,
		Status:   domain.OrderStatusConfirmed,
	}

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatusIf(gomock.Any(), repoargs.OrderStatusUpdate{
			OrderID:    order.ID,
			FromStatus: domain.OrderStatusPending,
			ToStatus:   domain.OrderStatusConfirmed,
		}).
		Return(confirmed, nil)
	s.mockNotifier.EXPECT().Emit(gomock.Any()).
		Do(func(event domain.NotificationEvent) {
			s.Equal(domain.NotifyOrderConfirmed, event.Type)
			s.Equal(order.BuyerID, event.RecipientID)
		})

	result, err := s.orderService.Confirm(s.T().Context(), order.ID, order.SellerID)

	s.Require().NoError(err)
	s.Equal(domain.OrderStatusConfirmed, result.Status)
}

func (s *OrderServiceTestSuite) TestConfirmNotSeller() {
	order := &domain.Order{ID: 10, BuyerID: 1, SellerID: 2, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)

	_, err := s.orderService.Confirm(s.T().Context(), order.ID, order.BuyerID)

	s.Require().ErrorIs(err, domain.ErrForbidden)
}

func (s *OrderServiceTestSuite) TestConfirmExpiredOrder() {
	order := &domain.Order{
		ID:        10,
		BuyerID:   1,
		SellerID:  2,
		Status:    domain.OrderStatusPending,
		ExpiresAt: s.now, // граница включительная
	}
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)

	_, err := s.orderService.Confirm(s.T().Context(), order.ID, order.SellerID)

	s.Require().ErrorIs(err, domain.ErrInvalidState)
}

func (s *OrderServiceTestSuite) TestUpdateStatusRoles() {
	order := &domain.Order{
		ID:        10,
		BuyerID:   1,
		SellerID:  2,
		Status:    domain.OrderStatusPending,
		ExpiresAt: s.now.Add(time.Hour),
	}
	confirmedOrder := &domain.Order{
		ID:        11,
		BuyerID:   1,
		SellerID:  2,
		Status:    domain.OrderStatusConfirmed,
		ExpiresAt: s.now.Add(time.Hour),
	}

	cases := []struct {
		name     string
		order    *domain.Order
		to       domain.OrderStatusType
		actor    domain.Actor
		fromWant domain.OrderStatusType
		wantErr  error
	}{
		{
			name:     "buyer cancels pending",
			order:    order,
			to:       domain.OrderStatusCancelled,
			actor:    domain.Actor{UserID: 1, Role: domain.RoleUser},
			fromWant: domain.OrderStatusPending,
		},
		{
			name:     "seller cancels pending",
			order:    order,
			to:       domain.OrderStatusCancelled,
			actor:    domain.Actor{UserID: 2, Role: domain.RoleUser},
			fromWant: domain.OrderStatusPending,
		},
		{
			name:    "stranger cancels",
			order:   order,
			to:      domain.OrderStatusCancelled,
			actor:   domain.Actor{UserID: 999, Role: domain.RoleUser},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "buyer confirms",
			order:   order,
			to:      domain.OrderStatusConfirmed,
			actor:   domain.Actor{UserID: 1, Role: domain.RoleUser},
			wantErr: domain.ErrForbidden,
		},
		{
			name:     "buyer completes confirmed",
			order:    confirmedOrder,
			to:       domain.OrderStatusCompleted,
			actor:    domain.Actor{UserID: 1, Role: domain.RoleUser},
			fromWant: domain.OrderStatusConfirmed,
		},
		{
			name:    "seller completes",
			order:   confirmedOrder,
			to:      domain.OrderStatusCompleted,
			actor:   domain.Actor{UserID: 2, Role: domain.RoleUser},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "transition to pending",
			order:   order,
			to:      domain.OrderStatusPending,
			actor:   domain.Actor{UserID: 1, Role: domain.RoleUser},
			wantErr: domain.ErrInvalidState,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), t.order.ID).Return(t.order, nil)

			if t.wantErr == nil {
				s.mockOrderRepo.EXPECT().
					UpdateStatusIf(gomock.Any(), repoargs.OrderStatusUpdate{
						OrderID:    t.order.ID,
						FromStatus: t.fromWant,
						ToStatus:   t.to,
					}).
					Return(&domain.Order{
						ID:       t.order.ID,
						BuyerID:  t.order.BuyerID,
						SellerID: t.order.SellerID,
						Status:   t.to,
					}, nil)
				s.mockNotifier.EXPECT().Emit(gomock.Any())
			}

			result, err := s.orderService.UpdateStatus(s.T().Context(), t.order.ID, t.to, t.actor)

			if t.wantErr != nil {
				s.Require().ErrorIs(err, t.wantErr)
				return
			}
			s.Require().NoError(err)
			s.Equal(t.to, result.Status)
		})
	}
}

func (s *OrderServiceTestSuite) TestUpdateStatusStaleState() {
	order := &domain.Order{
		ID:        10,
		BuyerID:   1,
		SellerID:  2,
		Status:    domain.OrderStatusPending,
		ExpiresAt: s.now.Add(time.Hour),
	}

	// Условное обновление не затронуло строку: заказ тем временем завершился.
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatusIf(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).
		Return(&domain.Order{ID: order.ID, Status: domain.OrderStatusCancelled}, nil)

	_, err := s.orderService.UpdateStatus(
		s.T().Context(),
		order.ID,
		domain.OrderStatusConfirmed,
		domain.Actor{UserID: order.SellerID, Role: domain.RoleUser},
	)

	s.Require().ErrorIs(err, domain.ErrInvalidState)
}

func (s *OrderServiceTestSuite) TestReapExpired() {
	ids := []int64{10, 20, 30}

	s.mockOrderRepo.EXPECT().
		ReapExpired(gomock.Any(), s.now, uint(100)).
		Return(ids, nil)
	s.mockNotifier.EXPECT().Emit(gomock.Any()).Times(len(ids))

	reaped, err := s.orderService.ReapExpired(s.T().Context(), s.now, 100)

	s.Require().NoError(err)
	s.Equal(len(ids), reaped)
}
