// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sqlutil builds parameterized SQL fragments for PostgreSQL
// statements. Values are always returned as positional arguments and never
// written into the fragment text.
package sqlutil

import (
	"fmt"
	"strings"
)

// Assignment is one field of a partial update, in request order.
type Assignment struct {
	Field string
	Value interface{}
}

// FieldNameMap translates logical field names to column names.
// Fields missing from the map are used as column names unchanged.
type FieldNameMap map[string]string

// Column resolves the column for a logical field name.
func (m FieldNameMap) Column(field string) string {
	if column, ok := m[field]; ok && column != "" {
		return column
	}
	return field
}

// SetClause is the output of ForPartialUpdate.
// SQL looks like `"first_name"=$1, "age"=$2` and Args[i] binds to $i+1.
type SetClause struct {
	SQL  string
	Args []interface{}
}

// NextIndex returns the placeholder index that follows the clause,
// e.g. for the WHERE id = $n of an UPDATE statement.
func (s SetClause) NextIndex() int {
	return len(s.Args) + 1
}

// ForPartialUpdate builds the SET list of an UPDATE statement from the
// given assignments. It fails with ErrEmptyUpdate when there is nothing to set.
func ForPartialUpdate(updates []Assignment, columns FieldNameMap) (SetClause, error) {
	if len(updates) == 0 {
		return SetClause{}, ErrEmptyUpdate
	}

	terms := make([]string, len(updates))
	args := make([]interface{}, len(updates))
	for i, u := range updates {
		terms[i] = fmt.Sprintf(`"%s"=$%d`, columns.Column(u.Field), i+1)
		args[i] = u.Value
	}

	return SetClause{
		SQL:  strings.Join(terms, ", "),
		Args: args,
	}, nil
}
