package postgres

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles SELECT statements for the repository's list and
// filter queries.
//
//	q := NewQueryBuilder().Select("id, status").From("runs").
//		Where("status = $1").OrderBy("created_at", "DESC").Build()
type QueryBuilder struct {
	parts []string
}

// NewQueryBuilder creates an empty builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Select starts a SELECT statement over the given column list.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.parts = append(q.parts, "SELECT "+columns)
	return q
}

// From adds the FROM clause.
func (q *QueryBuilder) From(table string) *QueryBuilder {
	q.parts = append(q.parts, "FROM "+table)
	return q
}

// Where adds a WHERE clause.
func (q *QueryBuilder) Where(condition string) *QueryBuilder {
	q.parts = append(q.parts, "WHERE "+condition)
	return q
}

// GroupBy adds a GROUP BY clause.
func (q *QueryBuilder) GroupBy(columns string) *QueryBuilder {
	q.parts = append(q.parts, "GROUP BY "+columns)
	return q
}

// OrderBy adds an ORDER BY clause.
func (q *QueryBuilder) OrderBy(columns, order string) *QueryBuilder {
	q.parts = append(q.parts, fmt.Sprintf("ORDER BY %s %s", columns, order))
	return q
}

// Limit adds a LIMIT clause.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.parts = append(q.parts, fmt.Sprintf("LIMIT %d", n))
	return q
}

// Offset adds an OFFSET clause.
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.parts = append(q.parts, fmt.Sprintf("OFFSET %d", n))
	return q
}

// Build finalizes the statement and resets the builder.
func (q *QueryBuilder) Build() string {
	out := strings.Join(q.parts, " ")
	q.parts = nil
	return out
}
