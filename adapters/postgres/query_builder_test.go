package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder_FullStatement(t *testing.T) {
	query := NewQueryBuilder().
		Select("id, status").
		From("runs").
		Where("status = $1").
		OrderBy("created_at", "DESC").
		Limit(10).
		Offset(20).
		Build()

	assert.Equal(t, "SELECT id, status FROM runs WHERE status = $1 ORDER BY created_at DESC LIMIT 10 OFFSET 20", query)
}

func TestQueryBuilder_GroupBy(t *testing.T) {
	query := NewQueryBuilder().
		Select("status, count(*)").
		From("runs").
		GroupBy("status").
		Build()

	assert.Equal(t, "SELECT status, count(*) FROM runs GROUP BY status", query)
}

func TestQueryBuilder_BuildResets(t *testing.T) {
	b := NewQueryBuilder()
	first := b.Select("id").From("runs").Build()
	second := b.Select("status").From("runs").Build()

	assert.Equal(t, "SELECT id FROM runs", first)
	assert.Equal(t, "SELECT status FROM runs", second)
}
