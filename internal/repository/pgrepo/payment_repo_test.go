package pgrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	uowmocks "github.com/fsdevblog/unipay/pkg/uow/mocks"
)

// TestPaymentRepoGetByBuyerIDStatusPredicate фиксирует форму запроса истории платежей.
// Плейсхолдер статуса участвует и в проверке на пустую строку, и в сравнении с
// enum-колонкой: без приведения `p.status::text` postgres не разрешает типы и запрос
// не проходит стадию prepare (42883). Текст запроса постоянный: фильтры отключаются
// значениями параметров, а не склейкой строки.
func TestPaymentRepoGetByBuyerIDStatusPredicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := uowmocks.NewMockDBTX(ctrl)
	repo := NewPaymentRepository(conn)

	errStop := errors.New("stop")
	var sqls []string
	var statusArgs []any
	conn.EXPECT().
		Query(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
			sqls = append(sqls, sql)
			statusArgs = append(statusArgs, args[1])
			return nil, errStop
		}).
		Times(2)

	_, err := repo.GetByBuyerID(context.Background(), 1, repoargs.PaymentFilter{})
	require.Error(t, err)
	_, err = repo.GetByBuyerID(context.Background(), 1, repoargs.PaymentFilter{
		Status:   domain.PaymentStatusConfirmed,
		DateFrom: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)

	require.Len(t, sqls, 2)
	require.Equal(t, sqls[0], sqls[1])
	require.Contains(t, sqls[0], "p.status::text = $2")
	require.NotContains(t, sqls[0], "p.status = $")

	// Статус уходит обычной строкой, без отдельного enum-типа на стороне клиента.
	require.Equal(t, "", statusArgs[0])
	require.Equal(t, string(domain.PaymentStatusConfirmed), statusArgs[1])
}
