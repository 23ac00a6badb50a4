package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/unipay/internal/domain"
)

type WebhookEmitterTestSuite struct {
	suite.Suite
	server   *httptest.Server
	received chan notificationRecord
}

func TestWebhookEmitterSuite(t *testing.T) {
	suite.Run(t, new(WebhookEmitterTestSuite))
}

func (s *WebhookEmitterTestSuite) SetupTest() {
	s.received = make(chan notificationRecord, 1)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)

		body, readErr := io.ReadAll(r.Body)
		s.Require().NoError(readErr)

		var record notificationRecord
		s.Require().NoError(json.Unmarshal(body, &record))
		s.received <- record

		w.WriteHeader(http.StatusAccepted)
	}))
}

func (s *WebhookEmitterTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *WebhookEmitterTestSuite) TestEmit() {
	l := logrus.New()
	l.SetOutput(io.Discard)

	emitter := NewWebhookEmitter(s.server.URL, l)

	occurredAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	emitter.Emit(domain.NotificationEvent{
		Type:        domain.NotifyPaymentConfirmed,
		RecipientID: 1,
		OrderID:     10,
		PaymentID:   5,
		OccurredAt:  occurredAt,
		Message:     "done",
	})

	select {
	case record := <-s.received:
		s.NotEmpty(record.ID)
		s.Equal(string(domain.NotifyPaymentConfirmed), record.Type)
		s.Equal(int64(1), record.RecipientID)
		s.Equal(int64(10), record.OrderID)
		s.Equal(int64(5), record.PaymentID)
		s.True(occurredAt.Equal(record.OccurredAt))
		s.Equal("done", record.Message)
	case <-time.After(3 * time.Second):
		s.Fail("webhook was not called")
	}
}
