package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"tenders/db"
	"tenders/internal/apperr"
)

const (
	// VARCHAR(255) в схеме
	maxTextLength = 255
	// NUMERIC(14,2): не больше 12 цифр до точки
	maxBudget = 1e12
)

func checkLength(field, v string) error {
	if utf8.RuneCountInString(v) > maxTextLength {
		return apperr.Validation(fmt.Sprintf("%s must be at most %d characters", field, maxTextLength))
	}
	return nil
}

// parseBudget принимает только десятичную запись ("1500", "1500.50").
// Экспонента, hex и Inf отклоняются, как и значения вне NUMERIC(14,2).
func parseBudget(raw string) error {
	if !isPlainDecimal(raw) {
		return apperr.Validation("Budget must be a non-negative number")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return apperr.Validation("Budget must be a non-negative number")
	}
	// округление до копеек как в колонке
	if math.Round(v*100) >= maxBudget*100 {
		return apperr.Validation("Budget must be less than 1000000000000")
	}
	return nil
}

func isPlainDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// writeFailure ошибка записи в хранилище. Значение, отвергнутое схемой,
// это ошибка клиента, а не сбой.
func writeFailure(message string, err error) error {
	if errors.Is(err, db.ErrInvalidInput) {
		return apperr.ErrInvalidValue
	}
	return apperr.Upstream(message, err)
}
