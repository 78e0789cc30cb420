package storage

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation: код ошибки PostgreSQL при нарушении уникального индекса
const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
