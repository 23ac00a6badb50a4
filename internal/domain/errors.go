package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")
	ErrProofMissing = errors.New("payment proof missing")
	ErrValidation   = errors.New("validation error")
)

// DuplicatePaymentError возвращается при попытке создать второй активный платеж
// по одному заказу. Содержит уже существующий платеж.
type DuplicatePaymentError struct {
	Payment *Payment
}

func NewDuplicatePaymentError(payment *Payment) error {
	return &DuplicatePaymentError{Payment: payment}
}

func (e *DuplicatePaymentError) Error() string {
	return fmt.Sprintf(
		"active payment %s already exists for order with id %d",
		e.Payment.TransactionCode,
		e.Payment.OrderID,
	)
}

// InvalidTransitionError возвращается при попытке нелегального перехода статуса заказа.
type InvalidTransitionError struct {
	From OrderStatusType
	To   OrderStatusType
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order transition %s -> %s is not allowed", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidState
}

// ValidationError ошибка валидации входных данных с сообщением, пригодным для показа
// пользователю.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
