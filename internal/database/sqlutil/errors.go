// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package sqlutil

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the error kind for fragment requests that cannot be
// turned into SQL. Callers map it to a client error.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyUpdate is returned when a partial update carries no fields.
var ErrEmptyUpdate = fmt.Errorf("%w: no data", ErrInvalidInput)
