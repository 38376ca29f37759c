// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the repositories react to.
const (
	CodeNumericOutOfRange   = pq.ErrorCode("22003")
	CodeForeignKeyViolation = pq.ErrorCode("23503")
	CodeUniqueViolation     = pq.ErrorCode("23505")
	CodeCheckViolation      = pq.ErrorCode("23514")
)

// ErrorCode extracts the SQLSTATE from a lib/pq error anywhere in the chain.
func ErrorCode(err error) (pq.ErrorCode, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code, true
	}
	return "", false
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeForeignKeyViolation
}

// IsCheckViolation reports whether err is a CHECK constraint violation.
func IsCheckViolation(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeCheckViolation
}

// IsNumericOutOfRange reports whether a value did not fit its column type.
func IsNumericOutOfRange(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeNumericOutOfRange
}
