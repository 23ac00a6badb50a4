package pgrepo

import (
	"context"

	"github.com/fsdevblog/unipay/internal/domain"
	"github.com/fsdevblog/unipay/pkg/uow"
)

type BankQRRepository struct {
	conn uow.DBTX
}

func NewBankQRRepository(conn uow.DBTX) *BankQRRepository {
	return &BankQRRepository{conn: conn}
}

// GetActive возвращает активные банковские реквизиты. Политика выбора конкретной записи
// принадлежит админке: ядро лишь читает помеченную активной.
func (b *BankQRRepository) GetActive(ctx context.Context) (*domain.BankQR, error) {
	var qr domain.BankQR
	err := b.conn.QueryRow(ctx, `
		SELECT id, bank_name, account_name, account_number, qr_image_ref, active
		FROM bank_qrs
		WHERE active
		ORDER BY id
		LIMIT 1`).
		Scan(&qr.ID, &qr.BankName, &qr.AccountName, &qr.AccountNumber, &qr.QRImageRef, &qr.Active)
	if err != nil {
		return nil, convertErr(err, "getting active bank qr")
	}
	return &qr, nil
}
