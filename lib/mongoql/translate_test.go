package mongoql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
)

func translate(t *testing.T, sql string) *mongoql.TranslationResult {
	t.Helper()
	ps, err := mongoql.Classify(sql)
	require.NoError(t, err, "classify %q", sql)
	result, err := mongoql.Translate(ps, mongoql.AllowAll())
	require.NoError(t, err, "translate %q", sql)
	return result
}

func translateErr(t *testing.T, sql string, caps mongoql.Capabilities) error {
	t.Helper()
	ps, err := mongoql.Classify(sql)
	require.NoError(t, err, "classify %q", sql)
	_, err = mongoql.Translate(ps, caps)
	require.Error(t, err, "translate %q should fail", sql)
	return err
}

func TestTranslateFindFilter(t *testing.T) {
	result := translate(t, "SELECT * FROM users WHERE age > 30")
	require.NotNil(t, result.Find)
	assert.Equal(t, "users", result.Find.Collection)
	assert.Equal(t, bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: int64(30)}}}}, result.Find.Filter)
	assert.Nil(t, result.Find.Projection)
}

func TestTranslateFindOperators(t *testing.T) {
	cases := []struct {
		sql    string
		filter bson.D
	}{
		{
			"SELECT * FROM t WHERE a = 'x'",
			bson.D{{Key: "a", Value: "x"}},
		},
		{
			"SELECT * FROM t WHERE a != 1",
			bson.D{{Key: "a", Value: bson.D{{Key: "$ne", Value: int64(1)}}}},
		},
		{
			"SELECT * FROM t WHERE a BETWEEN 1 AND 5",
			bson.D{{Key: "a", Value: bson.D{{Key: "$gte", Value: int64(1)}, {Key: "$lte", Value: int64(5)}}}},
		},
		{
			"SELECT * FROM t WHERE a IN (1, 2)",
			bson.D{{Key: "a", Value: bson.D{{Key: "$in", Value: bson.A{int64(1), int64(2)}}}}},
		},
		{
			"SELECT * FROM t WHERE a NOT IN ('x')",
			bson.D{{Key: "a", Value: bson.D{{Key: "$nin", Value: bson.A{"x"}}}}},
		},
		{
			"SELECT * FROM t WHERE name LIKE 'A%'",
			bson.D{{Key: "name", Value: bson.D{{Key: "$regex", Value: "^A.*$"}}}},
		},
		{
			"SELECT * FROM t WHERE a IS NULL",
			bson.D{{Key: "a", Value: bson.D{{Key: "$exists", Value: false}}}},
		},
		{
			"SELECT * FROM t WHERE a IS NOT NULL",
			bson.D{{Key: "a", Value: bson.D{{Key: "$exists", Value: true}}}},
		},
	}
	for _, tc := range cases {
		result := translate(t, tc.sql)
		require.NotNil(t, result.Find, "sql: %s", tc.sql)
		assert.Equal(t, tc.filter, result.Find.Filter, "sql: %s", tc.sql)
	}
}

func TestTranslateAndMergesOrBranches(t *testing.T) {
	result := translate(t, "SELECT * FROM t WHERE a > 1 AND a < 5")
	require.NotNil(t, result.Find)
	assert.Equal(t, bson.D{{Key: "a", Value: bson.D{
		{Key: "$gt", Value: int64(1)},
		{Key: "$lt", Value: int64(5)},
	}}}, result.Find.Filter)

	// an equality and an operator on the same field cannot share one
	// document; a duplicate key would make the server drop one of them
	result = translate(t, "SELECT * FROM t WHERE a = 1 AND a > 0")
	require.NotNil(t, result.Find)
	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "a", Value: int64(1)}},
		bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: int64(0)}}}},
	}}}, result.Find.Filter)

	result = translate(t, "SELECT * FROM t WHERE a > 1 AND a > 2")
	require.NotNil(t, result.Find)
	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: int64(1)}}}},
		bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: int64(2)}}}},
	}}}, result.Find.Filter)

	result = translate(t, "SELECT * FROM t WHERE a = 1 OR b = 2 OR c = 3")
	require.NotNil(t, result.Find)
	assert.Equal(t, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "a", Value: int64(1)}},
		bson.D{{Key: "b", Value: int64(2)}},
		bson.D{{Key: "c", Value: int64(3)}},
	}}}, result.Find.Filter)
}

func TestTranslateFindProjectionSortLimit(t *testing.T) {
	result := translate(t, "SELECT name, age FROM users ORDER BY age DESC LIMIT 5")
	require.NotNil(t, result.Find)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: int32(0)},
		{Key: "name", Value: int32(1)},
		{Key: "age", Value: int32(1)},
	}, result.Find.Projection)
	assert.Equal(t, bson.D{{Key: "age", Value: int32(-1)}}, result.Find.Sort)
	require.NotNil(t, result.Find.Limit)
	assert.Equal(t, int64(5), *result.Find.Limit)
}

func TestTranslateCountStarPipeline(t *testing.T) {
	result := translate(t, "SELECT COUNT(*) AS total FROM orders")
	require.NotNil(t, result.Aggregate)
	assert.Equal(t, []bson.D{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: int32(1)}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: int32(0)},
			{Key: "total", Value: int32(1)},
		}}},
	}, result.Aggregate.Pipeline)
}

func TestTranslateGroupByPipelineStageOrder(t *testing.T) {
	result := translate(t, `SELECT status, SUM(amount) AS revenue FROM orders
WHERE region = 'eu'
GROUP BY status
HAVING SUM(amount) > 100
ORDER BY revenue DESC
LIMIT 3`)
	require.NotNil(t, result.Aggregate)
	pipeline := result.Aggregate.Pipeline
	require.Len(t, pipeline, 6)

	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, "$group", pipeline[1][0].Key)
	assert.Equal(t, "$project", pipeline[2][0].Key)
	assert.Equal(t, "$match", pipeline[3][0].Key)
	assert.Equal(t, "$sort", pipeline[4][0].Key)
	assert.Equal(t, "$limit", pipeline[5][0].Key)

	group := pipeline[1][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "status", Value: "$status"}}, group[0].Value)
	assert.Equal(t, bson.D{{Key: "$sum", Value: "$amount"}}, group[1].Value)

	having := pipeline[3][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "revenue", Value: bson.D{{Key: "$gt", Value: int64(100)}}}}, having)
}

func TestTranslateCountFieldSkipsNull(t *testing.T) {
	result := translate(t, "SELECT COUNT(email) FROM users")
	require.NotNil(t, result.Aggregate)
	group := result.Aggregate.Pipeline[0][0].Value.(bson.D)
	acc := group[1].Value.(bson.D)
	require.Equal(t, "$sum", acc[0].Key)
	cond := acc[0].Value.(bson.D)
	assert.Equal(t, "$cond", cond[0].Key)
}

func TestTranslateGroupConcat(t *testing.T) {
	result := translate(t, "SELECT city, GROUP_CONCAT(name) AS names FROM users GROUP BY city")
	require.NotNil(t, result.Aggregate)
	group := result.Aggregate.Pipeline[0][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "$push", Value: "$name"}}, group[1].Value)
}

func TestTranslateDistinct(t *testing.T) {
	result := translate(t, "SELECT DISTINCT city FROM users")
	require.NotNil(t, result.Aggregate)
	pipeline := result.Aggregate.Pipeline
	require.Len(t, pipeline, 2)
	group := pipeline[0][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "city", Value: "$city"}}, group[0].Value)
	project := pipeline[1][0].Value.(bson.D)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: int32(0)},
		{Key: "city", Value: "$_id.city"},
	}, project)
}

func TestTranslateInsert(t *testing.T) {
	result := translate(t, "INSERT INTO users (name, age) VALUES ('Ada', 36)")
	require.NotNil(t, result.Write)
	assert.Equal(t, mongoql.OpInsertOne, result.Write.Op)
	require.Len(t, result.Write.Documents, 1)
	assert.Equal(t, bson.D{{Key: "name", Value: "Ada"}, {Key: "age", Value: int64(36)}}, result.Write.Documents[0])

	result = translate(t, "INSERT INTO users (name) VALUES ('Ada'), ('Grace')")
	assert.Equal(t, mongoql.OpInsertMany, result.Write.Op)
	assert.Len(t, result.Write.Documents, 2)
}

func TestTranslateUpdate(t *testing.T) {
	result := translate(t, "UPDATE users SET age = 37, active = FALSE WHERE name = 'Ada'")
	require.NotNil(t, result.Write)
	assert.Equal(t, mongoql.OpUpdateMany, result.Write.Op)
	assert.Equal(t, bson.D{{Key: "name", Value: "Ada"}}, result.Write.Filter)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{
		{Key: "age", Value: int64(37)},
		{Key: "active", Value: false},
	}}}, result.Write.Update)
}

func TestTranslateDeleteCreateDrop(t *testing.T) {
	result := translate(t, "DELETE FROM sessions WHERE expired = TRUE")
	assert.Equal(t, mongoql.OpDeleteMany, result.Write.Op)

	result = translate(t, "CREATE TABLE products (id INT, name VARCHAR(50))")
	assert.Equal(t, mongoql.OpCreateCollection, result.Write.Op)
	require.Len(t, result.Write.Columns, 2)
	assert.Equal(t, mongoql.ColumnSpec{Name: "name", Type: "VARCHAR(50)"}, result.Write.Columns[1])

	result = translate(t, "DROP TABLE products")
	assert.Equal(t, mongoql.OpDrop, result.Write.Op)
	assert.Equal(t, "products", result.Write.Collection)
}

func TestTranslateBlocksUnboundedWrites(t *testing.T) {
	var de *mongoql.DangerousOperationError

	err := translateErr(t, "UPDATE t SET x = 1", mongoql.AllowAll())
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "UPDATE", de.Operation)
	assert.Contains(t, err.Error(), "add a WHERE clause")

	err = translateErr(t, "DELETE FROM t", mongoql.AllowAll())
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "DELETE", de.Operation)
}

func TestTranslateNeverDropsHaving(t *testing.T) {
	// HAVING without GROUP BY routes through the pipeline builder, which
	// rejects the ungrouped column instead of emitting a find that
	// ignores the predicate
	err := translateErr(t, "SELECT name FROM users HAVING name = 'x'", mongoql.AllowAll())
	var ae *mongoql.AmbiguousTranslationError
	require.ErrorAs(t, err, &ae)

	result := translate(t, "SELECT status FROM orders GROUP BY status HAVING status != 'void'")
	require.NotNil(t, result.Aggregate)
	last := result.Aggregate.Pipeline[len(result.Aggregate.Pipeline)-1]
	assert.Equal(t, "$match", last[0].Key)
	assert.Equal(t, bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: "void"}}}}, last[0].Value)
}

func TestTranslateFailsClosedOnMultiCollection(t *testing.T) {
	cases := []string{
		"SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id",
		"SELECT id FROM a UNION SELECT id FROM b",
		"SELECT name FROM users WHERE id IN (SELECT user_id FROM orders)",
	}
	for _, sql := range cases {
		err := translateErr(t, sql, mongoql.AllowAll())
		var ae *mongoql.AmbiguousTranslationError
		assert.ErrorAs(t, err, &ae, "sql: %s", sql)
	}
}

func TestTranslateCapabilityDenied(t *testing.T) {
	var pe *mongoql.PermissionError

	err := translateErr(t, "DROP TABLE users", mongoql.ReadOnly())
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, mongoql.CapabilityDropTable, pe.Capability)

	err = translateErr(t, "SELECT * FROM users", mongoql.Capabilities{Insert: true})
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, mongoql.CapabilitySelect, pe.Capability)
}

func TestTranslateIntoUsesCatalogCollection(t *testing.T) {
	ps, err := mongoql.Classify("SELECT * FROM Users")
	require.NoError(t, err)
	result, err := mongoql.TranslateInto(ps, mongoql.ReadOnly(), "app_users")
	require.NoError(t, err)
	assert.Equal(t, "app_users", result.Collection)
	assert.Equal(t, "app_users", result.Find.Collection)
}
