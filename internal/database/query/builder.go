// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package query

import (
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("e.status = ?", "published")
//	wb.AddTimeRange("e.starts_at", &from, &to, false)
//	where, args := wb.BuildWithPrefix()
//	// WHERE e.status = ? AND e.starts_at > ? AND e.starts_at <= ?
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddTimeRange bounds column by from and to. Nil bounds are skipped. The
// lower bound is inclusive when fromInclusive is set; the upper bound is
// always inclusive. Times are bound in UTC.
func (wb *WhereBuilder) AddTimeRange(column string, from, to *time.Time, fromInclusive bool) *WhereBuilder {
	if from != nil {
		op := " > ?"
		if fromInclusive {
			op = " >= ?"
		}
		wb.clauses = append(wb.clauses, column+op)
		wb.args = append(wb.args, from.UTC())
	}
	if to != nil {
		wb.clauses = append(wb.clauses, column+" <= ?")
		wb.args = append(wb.args, to.UTC())
	}
	return wb
}

// AddIn adds "column IN (?, ...)". An empty values slice adds a clause that
// matches nothing, so callers never widen a query by accident.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		wb.clauses = append(wb.clauses, "1=0")
		return wb
	}
	wb.clauses = append(wb.clauses, column+" IN ("+Placeholders(len(values))+")")
	for _, v := range values {
		wb.args = append(wb.args, v)
	}
	return wb
}

// AddNotEqual adds "column <> ?" when value is non-empty.
func (wb *WhereBuilder) AddNotEqual(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	wb.clauses = append(wb.clauses, column+" <> ?")
	wb.args = append(wb.args, value)
	return wb
}

// Build returns the joined conditions and their arguments. An empty
// builder yields "1=1".
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of conditions.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no conditions were added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// Placeholders returns n comma-separated "?" markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// StringArgs converts values to a driver argument slice.
func StringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
