package pgrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/pkg/uow"
)

const paymentColumns = `id, created_at, updated_at, order_id, amount::text, transaction_code,
status, proof_ref, expires_at, confirmed_at, rejection_reason`

type PaymentRepository struct {
	conn uow.DBTX
}

func NewPaymentRepository(conn uow.DBTX) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

func (p *PaymentRepository) Create(ctx context.Context, args repoargs.PaymentCreate) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, transaction_code, status, expires_at)
		VALUES ($1, $2::numeric, $3, $4, $5)
		RETURNING `+paymentColumns,
		args.OrderID, args.Amount.String(), args.TransactionCode,
		string(domain.PaymentStatusPending), args.ExpiresAt,
	)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "creating payment for order `%d`", args.OrderID)
	}
	return payment, nil
}

func (p *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding payment by id `%d`", id)
	}
	return payment, nil
}

// FindLatestByOrderID возвращает последний по времени создания платеж заказа.
func (p *PaymentRepository) FindLatestByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, orderID)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding payment by orderID `%d`", orderID)
	}
	return payment, nil
}

// FindActiveByOrderID возвращает незавершенный платеж заказа, если он есть.
func (p *PaymentRepository) FindActiveByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE order_id = $1 AND status = $2
		LIMIT 1`, orderID, string(domain.PaymentStatusPending))
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding active payment by orderID `%d`", orderID)
	}
	return payment, nil
}

// GetByBuyerID возвращает платежи покупателя, отсортированные по дате создания по убыванию.
// Нулевые значения фильтра игнорируются. Плейсхолдер статуса разрешается в text из-за
// проверки на пустую строку, поэтому сравнение с enum-колонкой идет через `::text`.
func (p *PaymentRepository) GetByBuyerID(
	ctx context.Context,
	buyerID int64,
	filter repoargs.PaymentFilter,
) ([]domain.Payment, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT p.id, p.created_at, p.updated_at, p.order_id, p.amount::text, p.transaction_code,
			p.status, p.proof_ref, p.expires_at, p.confirmed_at, p.rejection_reason
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.buyer_id = $1
			AND ($2 = '' OR p.status::text = $2)
			AND ($3::timestamptz IS NULL OR p.created_at >= $3)
			AND ($4::timestamptz IS NULL OR p.created_at <= $4)
		ORDER BY p.created_at DESC, p.id DESC`,
		buyerID, string(filter.Status), nullableTime(filter.DateFrom), nullableTime(filter.DateTo),
	)
	if err != nil {
		return nil, convertErr(err, "getting payments by buyerID `%d`", buyerID)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting payments by buyerID `%d`", buyerID)
		}
		payments = append(payments, *payment)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting payments by buyerID `%d`", buyerID)
	}
	return payments, nil
}

// AttachProofIf записывает ссылку на доказательство перевода при условии, что платеж
// все еще pending и срок не истек (граница включительная: в момент expires_at запись
// уже не проходит). При невыполнении условия возвращает domain.ErrRecordNotFound.
func (p *PaymentRepository) AttachProofIf(
	ctx context.Context,
	args repoargs.PaymentAttachProof,
) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `
		UPDATE payments SET proof_ref = $2, updated_at = $3
		WHERE id = $1 AND status = $4 AND expires_at > $3
		RETURNING `+paymentColumns,
		args.PaymentID, args.ProofRef, args.Now, string(domain.PaymentStatusPending),
	)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "attaching proof to payment `%d`", args.PaymentID)
	}
	return payment, nil
}

// DecideIf выполняет терминальный переход платежа при условии, что платеж pending и
// доказательство прикреплено. Из двух конкурентных вызовов пройдет ровно один.
func (p *PaymentRepository) DecideIf(ctx context.Context, args repoargs.PaymentDecide) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `
		UPDATE payments SET
			status = $2,
			confirmed_at = CASE WHEN $2 = $5 THEN $4 ELSE confirmed_at END,
			rejection_reason = $3,
			updated_at = $4
		WHERE id = $1 AND status = $6 AND proof_ref <> ''
		RETURNING `+paymentColumns,
		args.PaymentID, string(args.Status), args.RejectionReason, args.Now,
		string(domain.PaymentStatusConfirmed), string(domain.PaymentStatusPending),
	)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "deciding payment `%d` as `%s`", args.PaymentID, args.Status)
	}
	return payment, nil
}

// ReapExpired отклоняет просроченные pending-платежи без доказательства перевода.
// Условие в подзапросе гарантирует, что гонка с параллельной загрузкой доказательства
// решится в пользу ровно одной из сторон.
func (p *PaymentRepository) ReapExpired(ctx context.Context, now time.Time, limit uint) ([]domain.Payment, error) {
	rows, err := p.conn.Query(ctx, `
		UPDATE payments SET status = $2, rejection_reason = $3, updated_at = $1
		WHERE id IN (
			SELECT id FROM payments
			WHERE status = $4 AND proof_ref = '' AND expires_at <= $1
			LIMIT $5
		)
		RETURNING `+paymentColumns,
		now, string(domain.PaymentStatusRejected), domain.RejectionReasonExpired,
		string(domain.PaymentStatusPending), int64(limit), //nolint:gosec
	)
	if err != nil {
		return nil, convertErr(err, "reaping expired payments")
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "reaping expired payments")
		}
		payments = append(payments, *payment)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "reaping expired payments")
	}
	return payments, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	var amount, status string
	var confirmedAt pgtype.Timestamptz

	err := row.Scan(
		&payment.ID, &payment.CreatedAt, &payment.UpdatedAt, &payment.OrderID, &amount,
		&payment.TransactionCode, &status, &payment.ProofRef, &payment.ExpiresAt,
		&confirmedAt, &payment.RejectionReason,
	)
	if err != nil {
		return nil, err
	}

	amountDec, amountErr := decimal.NewFromString(amount)
	if amountErr != nil {
		return nil, amountErr
	}
	payment.Amount = amountDec
	payment.Status = domain.PaymentStatusType(status)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		payment.ConfirmedAt = &t
	}
	return &payment, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
