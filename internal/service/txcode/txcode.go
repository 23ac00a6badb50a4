// Package txcode генерирует коды назначения платежа для ручных банковских переводов.
package txcode

import (
	"crypto/rand"
	"fmt"
)

const (
	// Prefix выделяет коды сервиса среди прочего текста в назначении перевода.
	Prefix = "UMP-"

	// codeAlphabet не содержит визуально похожих символов (0/O, 1/I/L):
	// код покупатель вводит в банковской форме руками.
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	codeLength = 12
)

// Generator выдает короткие уникальные коды. Уникальность в пределах незавершенных платежей
// обеспечивается уникальным индексом в хранилище: при коллизии вызывающая сторона
// запрашивает новый код и повторяет запись.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate возвращает код вида UMP-XXXXXXXXXXXX длиной 16 символов. Длина не превышает
// 20 символов, предел для поля назначения платежа.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating transaction code: %s", err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return Prefix + string(buf), nil
}
