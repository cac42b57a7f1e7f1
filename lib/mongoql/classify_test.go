package mongoql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
	"github.com/mongobridge/sql-to-mongo/lib/sql/parser"
)

func classify(t *testing.T, sql string) *mongoql.ParsedStatement {
	t.Helper()
	ps, err := mongoql.Classify(sql)
	require.NoError(t, err, "classify %q", sql)
	return ps
}

func TestClassifyKinds(t *testing.T) {
	cases := []struct {
		sql  string
		kind mongoql.Kind
	}{
		{"SELECT * FROM users", mongoql.KindSimpleRead},
		{"SELECT name, age FROM users WHERE age > 30", mongoql.KindSimpleRead},
		{"SELECT COUNT(*) FROM orders", mongoql.KindAggregateRead},
		{"SELECT status, SUM(amount) FROM orders GROUP BY status", mongoql.KindAggregateRead},
		{"SELECT DISTINCT city FROM users", mongoql.KindAggregateRead},
		{"SELECT name FROM users HAVING name = 'x'", mongoql.KindAggregateRead},
		{"INSERT INTO users (name) VALUES ('Ada')", mongoql.KindInsert},
		{"UPDATE users SET age = 31 WHERE name = 'Ada'", mongoql.KindUpdate},
		{"DELETE FROM users WHERE age < 0", mongoql.KindDelete},
		{"CREATE TABLE users (id INT)", mongoql.KindCreate},
		{"DROP TABLE users", mongoql.KindDrop},
	}
	for _, tc := range cases {
		ps := classify(t, tc.sql)
		assert.Equal(t, tc.kind, ps.Kind, "sql: %s", tc.sql)
		assert.NotEmpty(t, ps.Table, "sql: %s", tc.sql)
	}
}

func TestClassifyAggregateInvariant(t *testing.T) {
	// a statement is an aggregate read exactly when it has aggregations,
	// grouping, DISTINCT, HAVING, or a multi-collection construct
	simple := classify(t, "SELECT name FROM users ORDER BY name LIMIT 5")
	assert.Equal(t, mongoql.KindSimpleRead, simple.Kind)
	assert.Empty(t, simple.Aggregations)
	assert.Empty(t, simple.GroupBy)

	grouped := classify(t, "SELECT city, COUNT(*) AS n FROM users GROUP BY city")
	assert.Equal(t, mongoql.KindAggregateRead, grouped.Kind)
	assert.Len(t, grouped.Aggregations, 1)
	assert.Equal(t, []string{"city"}, grouped.GroupBy)

	having := classify(t, "SELECT name FROM users HAVING name = 'x'")
	assert.Equal(t, mongoql.KindAggregateRead, having.Kind)
	assert.True(t, having.HasHaving)
}

func TestClassifyKindTiers(t *testing.T) {
	cases := []struct {
		sql  string
		tier string
	}{
		{"SELECT * FROM users", "simple"},
		{"SELECT COUNT(*) FROM orders", "aggregate"},
		{"INSERT INTO users (name) VALUES ('Ada')", "write"},
		{"UPDATE users SET age = 1 WHERE id = 1", "write"},
		{"DELETE FROM users WHERE id = 1", "write"},
		{"CREATE TABLE users (id INT)", "ddl"},
		{"DROP TABLE users", "ddl"},
	}
	for _, tc := range cases {
		ps := classify(t, tc.sql)
		assert.Equal(t, tc.tier, ps.Kind.Tier(), "sql: %s", tc.sql)
	}
}

func TestOnlyDropIsHighImpact(t *testing.T) {
	assert.True(t, mongoql.KindDrop.HighImpact())
	for _, kind := range []mongoql.Kind{
		mongoql.KindSimpleRead, mongoql.KindAggregateRead, mongoql.KindInsert,
		mongoql.KindUpdate, mongoql.KindDelete, mongoql.KindCreate,
	} {
		assert.False(t, kind.HighImpact(), "kind: %s", kind)
	}
}

func TestClassifyInListIsNotASubquery(t *testing.T) {
	ps := classify(t, "SELECT * FROM t WHERE a IN (1, 2)")
	assert.Equal(t, mongoql.KindSimpleRead, ps.Kind)
	assert.False(t, ps.HasSubquery)
}

func TestClassifyStructure(t *testing.T) {
	ps := classify(t, "SELECT name, email FROM users WHERE active = TRUE ORDER BY name DESC LIMIT 10")

	assert.Equal(t, "users", ps.Table)
	assert.False(t, ps.Star)
	require.Len(t, ps.Fields, 2)
	assert.Equal(t, "name", ps.Fields[0].Name)
	assert.True(t, ps.HasWhere)
	require.Len(t, ps.OrderBy, 1)
	assert.True(t, ps.OrderBy[0].Desc)
	require.NotNil(t, ps.Limit)
	assert.Equal(t, int64(10), *ps.Limit)
}

func TestClassifyAggregationDetails(t *testing.T) {
	ps := classify(t, "SELECT COUNT(*) AS total, SUM(amount) FROM orders")

	require.Len(t, ps.Aggregations, 2)
	assert.Equal(t, mongoql.AggCount, ps.Aggregations[0].Func)
	assert.True(t, ps.Aggregations[0].Star)
	assert.Equal(t, "total", ps.Aggregations[0].Alias)
	assert.Equal(t, mongoql.AggSum, ps.Aggregations[1].Func)
	assert.Equal(t, "amount", ps.Aggregations[1].Field)
	assert.Equal(t, "sum_amount", ps.Aggregations[1].Alias)
}

func TestClassifyFlagsMultiCollectionConstructs(t *testing.T) {
	join := classify(t, "SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id")
	assert.True(t, join.HasJoin)

	union := classify(t, "SELECT id FROM a UNION SELECT id FROM b")
	assert.True(t, union.HasUnion)

	sub := classify(t, "SELECT name FROM users WHERE id IN (SELECT user_id FROM orders)")
	assert.True(t, sub.HasSubquery)
}

func TestClassifySyntaxErrors(t *testing.T) {
	cases := []string{
		"",
		"SELECT name",
		"INSERT users VALUES (1)",
		"UPDATE users WHERE id = 1",
		"EXPLAIN SELECT * FROM users",
	}
	for _, sql := range cases {
		_, err := mongoql.Classify(sql)
		require.Error(t, err, "sql: %q", sql)
		var se *parser.SyntaxError
		assert.ErrorAs(t, err, &se, "sql: %q", sql)
	}
}

func TestClassifyRejectsUnknownFunction(t *testing.T) {
	_, err := mongoql.Classify("SELECT UPPER(name) FROM users")
	var ae *mongoql.AmbiguousTranslationError
	require.ErrorAs(t, err, &ae)
}
