package sweeper

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fsdevblog/unipay/internal/sweeper/mocks"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type SweeperTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockPayments *mocks.MockPaymentReaper
	mockOrders   *mocks.MockOrderReaper
	sweeper      *Sweeper

	now time.Time
}

func TestSweeperSuite(t *testing.T) {
	suite.Run(t, new(SweeperTestSuite))
}

func (s *SweeperTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockPayments = mocks.NewMockPaymentReaper(s.mockCtrl)
	s.mockOrders = mocks.NewMockOrderReaper(s.mockCtrl)

	l := logrus.New()
	l.SetOutput(io.Discard)

	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.sweeper = New(s.mockPayments, s.mockOrders, l)
	s.sweeper.timeNow = func() time.Time { return s.now }
}

func (s *SweeperTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *SweeperTestSuite) TestSweep() {
	s.mockPayments.EXPECT().
		ReapExpired(gomock.Any(), s.now, defaultBatchLimit).
		Return(3, nil)
	s.mockOrders.EXPECT().
		ReapExpired(gomock.Any(), s.now, defaultBatchLimit).
		Return(1, nil)

	s.sweeper.Sweep(s.T().Context())
}

func (s *SweeperTestSuite) TestSweepPaymentsFailureDoesNotBlockOrders() {
	s.mockPayments.EXPECT().
		ReapExpired(gomock.Any(), s.now, defaultBatchLimit).
		Return(0, errors.New("db gone"))
	// Вторая фаза выполняется несмотря на ошибку первой.
	s.mockOrders.EXPECT().
		ReapExpired(gomock.Any(), s.now, defaultBatchLimit).
		Return(2, nil)

	s.sweeper.Sweep(s.T().Context())
}

func (s *SweeperTestSuite) TestSweepIdempotent() {
	// Повторный проход по уже обработанным данным ничего не находит и не падает.
	gomock.InOrder(
		s.mockPayments.EXPECT().
			ReapExpired(gomock.Any(), s.now, defaultBatchLimit).
			Return(2, nil),
		s.mockPayments.EXPECT().
			ReapExpired(gomock.Any(), s.now, defaultBatchLimit).
			Return(0, nil),
	)
	s.mockOrders.EXPECT().
		ReapExpired(gomock.Any(), s.now, defaultBatchLimit).
		Return(0, nil).Times(2)

	s.sweeper.Sweep(s.T().Context())
	s.sweeper.Sweep(s.T().Context())
}

func (s *SweeperTestSuite) TestSetters() {
	s.sweeper.SetInterval(5 * time.Second).SetBatchLimit(10)
	s.Equal(5*time.Second, s.sweeper.interval)
	s.Equal(uint(10), s.sweeper.batchLimit)

	// Невалидные значения игнорируются.
	s.sweeper.SetInterval(0).SetBatchLimit(0)
	s.Equal(5*time.Second, s.sweeper.interval)
	s.Equal(uint(10), s.sweeper.batchLimit)
}
