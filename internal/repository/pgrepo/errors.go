package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsdevblog/unipay/internal/domain"
)

const (
	uniqueViolationCode = "23505"
)

// convertErr приводит ошибки pgx к доменным. Шаблон msg и args описывают контекст запроса.
func convertErr(err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	wrap := fmt.Sprintf(msg, args...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", wrap, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		errType := domain.ErrUnknown
		if isUniqueViolationErr(pgErr) {
			errType = domain.ErrDuplicateKey
		}
		return fmt.Errorf("[repository/%s] %w: %s", wrap, errType, pgErr.Message)
	}

	return fmt.Errorf("[repository/%s] %w: %s", wrap, domain.ErrUnknown, err.Error())
}

func isUniqueViolationErr(err *pgconn.PgError) bool {
	return err.Code == uniqueViolationCode
}
