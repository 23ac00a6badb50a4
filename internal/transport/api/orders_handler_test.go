package api

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/logger"
	"github.com/fsdevblog/unipay/internal/transport/api/mocks"
	"github.com/fsdevblog/unipay/internal/transport/api/testutils"
	"github.com/fsdevblog/unipay/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type OrdersHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockOrderService *mocks.MockOrderServicer
	jwtSecret        []byte
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockOrderService = mocks.NewMockOrderServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:         logger.New(os.Stdout),
		OrderService:   s.mockOrderService,
		PaymentService: mocks.NewMockPaymentServicer(mockCtrl),
		ProofStore:     &stubProofStore{},
		JWTSecretKey:   s.jwtSecret,
	})
}

func (s *OrdersHandlerTestSuite) userToken(id int64) string {
	token, err := tokens.GenerateUserJWT(id, domain.RoleUser, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *OrdersHandlerTestSuite) TestCreate() {
	var buyerID int64 = 1
	buyerToken := s.userToken(buyerID)

	created := &domain.Order{
		ID:             10,
		ProductID:      100,
		BuyerID:        buyerID,
		SellerID:       2,
		FinalPrice:     decimal.NewFromInt(1500),
		DeliveryMethod: domain.DeliveryMethodPickup,
		Status:         domain.OrderStatusPending,
	}

	s.mockOrderService.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(created, nil)
	// Ошибка валидации сервисного слоя: доставка без адреса.
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.NewValidationError("shipping", "addressLine is required for delivery"))

	validPayload := `{
		"productId": 100,
		"sellerId": 2,
		"finalPrice": "1500",
		"deliveryMethod": "pickup"
	}`
	noAddressPayload := `{
		"productId": 100,
		"sellerId": 2,
		"finalPrice": "1500",
		"deliveryMethod": "delivery",
		"shipping": {"fullName": "Somchai P.", "phone": "+66 81 234 5678"}
	}`
	unknownMethodPayload := `{
		"productId": 100,
		"sellerId": 2,
		"finalPrice": "1500",
		"deliveryMethod": "teleport"
	}`

	cases := []struct {
		name       string
		payload    string
		jwtToken   string
		wantStatus int
	}{
		{name: "created", payload: validPayload, jwtToken: buyerToken, wantStatus: http.StatusCreated},
		{name: "delivery without address", payload: noAddressPayload, jwtToken: buyerToken, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown delivery method", payload: unknownMethodPayload, jwtToken: buyerToken, wantStatus: http.StatusBadRequest},
		{name: "empty payload", payload: `{}`, jwtToken: buyerToken, wantStatus: http.StatusBadRequest},
		{name: "not authorized", payload: validPayload, wantStatus: http.StatusUnauthorized},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + OrdersRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", "Bearer "+t.jwtToken))
			}
			reqOpts = append(reqOpts, testutils.WithHeader("Content-Type", "application/json"))

			res, err := testutils.MakeRequest(args, reqOpts...)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *OrdersHandlerTestSuite) TestGet() {
	var buyerID int64 = 1
	buyerToken := s.userToken(buyerID)

	order := &domain.Order{
		ID:      10,
		BuyerID: buyerID,
		Status:  domain.OrderStatusPending,
	}

	s.mockOrderService.EXPECT().
		GetByID(gomock.Any(), int64(10), gomock.Any()).
		Return(order, nil)
	s.mockOrderService.EXPECT().
		GetByID(gomock.Any(), int64(99), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)
	s.mockOrderService.EXPECT().
		GetByID(gomock.Any(), int64(40), gomock.Any()).
		Return(nil, domain.ErrForbidden)

	cases := []struct {
		name       string
		orderID    string
		wantStatus int
	}{
		{name: "found", orderID: "10", wantStatus: http.StatusOK},
		{name: "not found", orderID: "99", wantStatus: http.StatusNotFound},
		{name: "foreign order", orderID: "40", wantStatus: http.StatusForbidden},
		{name: "bad id", orderID: "abc", wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    fmt.Sprintf("%s/orders/%s", RouteGroup, t.orderID),
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithHeader("Authorization", "Bearer "+buyerToken),
			)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *OrdersHandlerTestSuite) TestConfirm() {
	var sellerID int64 = 2
	sellerToken := s.userToken(sellerID)

	confirmed := &domain.Order{ID: 10, SellerID: sellerID, Status: domain.OrderStatusConfirmed}

	s.mockOrderService.EXPECT().
		Confirm(gomock.Any(), int64(10), sellerID).
		Return(confirmed, nil)
	// Заказ уже завершен.
	s.mockOrderService.EXPECT().
		Confirm(gomock.Any(), int64(20), sellerID).
		Return(nil, fmt.Errorf("order 20 is cancelled: %w", domain.ErrInvalidState))

	cases := []struct {
		name       string
		orderID    string
		wantStatus int
	}{
		{name: "confirmed", orderID: "10", wantStatus: http.StatusOK},
		{name: "already terminal", orderID: "20", wantStatus: http.StatusConflict},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPut,
				URL:    fmt.Sprintf("%s/orders/%s/confirm", RouteGroup, t.orderID),
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithHeader("Authorization", "Bearer "+sellerToken),
			)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *OrdersHandlerTestSuite) TestUpdateStatus() {
	var buyerID int64 = 1
	buyerToken := s.userToken(buyerID)

	cancelled := &domain.Order{ID: 10, BuyerID: buyerID, Status: domain.OrderStatusCancelled}

	s.mockOrderService.EXPECT().
		UpdateStatus(gomock.Any(), int64(10), domain.OrderStatusCancelled, gomock.Any()).
		Return(cancelled, nil)
	s.mockOrderService.EXPECT().
		UpdateStatus(gomock.Any(), int64(20), domain.OrderStatusCompleted, gomock.Any()).
		Return(nil, domain.ErrForbidden)

	cases := []struct {
		name       string
		orderID    string
		payload    string
		wantStatus int
	}{
		{name: "cancelled", orderID: "10", payload: `{"status":"cancelled"}`, wantStatus: http.StatusOK},
		{name: "forbidden transition", orderID: "20", payload: `{"status":"completed"}`, wantStatus: http.StatusForbidden},
		{name: "status out of range", orderID: "10", payload: `{"status":"pending"}`, wantStatus: http.StatusBadRequest},
		{name: "empty payload", orderID: "10", payload: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPut,
				URL:    fmt.Sprintf("%s/orders/%s/status", RouteGroup, t.orderID),
				Body:   bytes.NewReader([]byte(t.payload)),
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithHeader("Authorization", "Bearer "+buyerToken),
				testutils.WithHeader("Content-Type", "application/json"),
			)
			s.Require().NoError(err)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
