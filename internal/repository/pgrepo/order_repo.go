package pgrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/pkg/uow"
)

const orderColumns = `id, created_at, updated_at, product_id, buyer_id, seller_id,
final_price::text, delivery_method, ship_full_name, ship_phone, ship_address_line,
notes, status, expires_at`

type OrderRepository struct {
	conn uow.DBTX
}

func NewOrderRepository(conn uow.DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

func (o *OrderRepository) Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `
		INSERT INTO orders (product_id, buyer_id, seller_id, final_price, delivery_method,
			ship_full_name, ship_phone, ship_address_line, notes, status, expires_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+orderColumns,
		args.ProductID, args.BuyerID, args.SellerID, args.FinalPrice.String(),
		string(args.DeliveryMethod), args.Shipping.FullName, args.Shipping.Phone,
		args.Shipping.AddressLine, args.Notes, string(domain.OrderStatusPending), args.ExpiresAt,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for buyer `%d`", args.BuyerID)
	}
	return order, nil
}

func (o *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id `%d`", id)
	}
	return order, nil
}

// UpdateStatusIf меняет статус заказа при условии совпадения текущего статуса с ожидаемым.
// Если запись не найдена или условие не выполнилось, возвращает domain.ErrRecordNotFound;
// вызывающая сторона перечитывает запись и сама решает, что произошло.
func (o *OrderRepository) UpdateStatusIf(
	ctx context.Context,
	args repoargs.OrderStatusUpdate,
) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+orderColumns,
		args.OrderID, string(args.FromStatus), string(args.ToStatus),
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of order `%d` to `%s`", args.OrderID, args.ToStatus)
	}
	return order, nil
}

// ReapExpired отменяет просроченные pending-заказы, по которым не было создано ни одного
// платежа. Возвращает id отмененных заказов. Повторный вызов на тех же данных ничего не меняет.
func (o *OrderRepository) ReapExpired(ctx context.Context, now time.Time, limit uint) ([]int64, error) {
	rows, err := o.conn.Query(ctx, `
		UPDATE orders SET status = $3, updated_at = $1
		WHERE id IN (
			SELECT o.id FROM orders o
			WHERE o.status = $2 AND o.expires_at <= $1
				AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.order_id = o.id)
			LIMIT $4
		)
		RETURNING id`,
		now, string(domain.OrderStatusPending), string(domain.OrderStatusCancelled), int64(limit), //nolint:gosec
	)
	if err != nil {
		return nil, convertErr(err, "reaping expired orders")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, convertErr(scanErr, "reaping expired orders")
		}
		ids = append(ids, id)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "reaping expired orders")
	}
	return ids, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var price string
	var deliveryMethod, status string

	err := row.Scan(
		&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.ProductID, &order.BuyerID,
		&order.SellerID, &price, &deliveryMethod, &order.Shipping.FullName,
		&order.Shipping.Phone, &order.Shipping.AddressLine, &order.Notes, &status,
		&order.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	finalPrice, priceErr := decimal.NewFromString(price)
	if priceErr != nil {
		return nil, priceErr
	}
	order.FinalPrice = finalPrice
	order.DeliveryMethod = domain.DeliveryMethodType(deliveryMethod)
	order.Status = domain.OrderStatusType(status)
	return &order, nil
}
