package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound запись не найдена (или не принадлежит вызывающему)
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate нарушено ограничение уникальности
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey ссылка на несуществующую запись
	ErrForeignKey = errors.New("referenced record does not exist")
	// ErrInvalidInput значение не помещается в колонку (длина или точность)
	ErrInvalidInput = errors.New("invalid column value")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	// класс 22: data exception (22001 строка длиннее колонки, 22003 числовое переполнение)
	pqDataExceptionClass = "22"
)

// classify переводит ошибки драйвера в ошибки пакета
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrForeignKey, pqErr.Constraint)
		}
		if string(pqErr.Code.Class()) == pqDataExceptionClass {
			return fmt.Errorf("%w: %s %s", ErrInvalidInput, pqErr.Code, pqErr.Message)
		}
	}
	return err
}
