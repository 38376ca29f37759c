// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package sqlutil

import (
	"fmt"
	"strings"
)

// Predicate is a conjunction of conditions plus its positional arguments.
// An empty SQL means "no WHERE clause".
type Predicate struct {
	SQL  string
	Args []interface{}
}

// IsEmpty reports whether the predicate has no conditions.
func (p Predicate) IsEmpty() bool {
	return p.SQL == ""
}

// Where renders the predicate as a WHERE clause, or "" when empty.
func (p Predicate) Where() string {
	if p.IsEmpty() {
		return ""
	}
	return " WHERE " + p.SQL
}

// Conditions accumulates AND-joined conditions. A placeholder index is only
// taken when a parameterized condition is added, so skipped criteria leave
// no gaps.
type Conditions struct {
	offset int
	parts  []string
	args   []interface{}
}

// NewConditions starts a condition set whose first placeholder is offset+1.
// Use offset 0 for a standalone statement.
func NewConditions(offset int) *Conditions {
	if offset < 0 {
		offset = 0
	}
	return &Conditions{offset: offset}
}

// AddParam appends a condition with one placeholder. format must contain a
// single %d verb which receives the placeholder index, e.g. "salary >= $%d".
func (c *Conditions) AddParam(format string, value interface{}) *Conditions {
	c.args = append(c.args, value)
	c.parts = append(c.parts, fmt.Sprintf(format, c.offset+len(c.args)))
	return c
}

// AddLiteral appends a condition without parameters.
func (c *Conditions) AddLiteral(condition string) *Conditions {
	c.parts = append(c.parts, condition)
	return c
}

// Len returns the number of conditions added so far.
func (c *Conditions) Len() int {
	return len(c.parts)
}

// Build returns the accumulated predicate. Calling it does not reset the set.
func (c *Conditions) Build() Predicate {
	if len(c.parts) == 0 {
		return Predicate{}
	}
	args := make([]interface{}, len(c.args))
	copy(args, c.args)
	return Predicate{
		SQL:  strings.Join(c.parts, " AND "),
		Args: args,
	}
}
