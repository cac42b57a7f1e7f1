package mongoql

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongobridge/sql-to-mongo/lib/sql/ast"
)

// FindCommand is the translated form of a simple read: a filter plus the
// optional projection, sort and limit of a find invocation.
type FindCommand struct {
	Collection string
	Filter     bson.D
	Projection bson.D
	Sort       bson.D
	Limit      *int64
}

// AggregateCommand is the translated form of an aggregate read. Stages
// appear in pipeline execution order.
type AggregateCommand struct {
	Collection string
	Pipeline   []bson.D
}

func buildFind(ps *ParsedStatement, s *ast.SelectStatement, collection string) (*FindCommand, error) {
	cmd := &FindCommand{Collection: collection, Filter: bson.D{}, Limit: ps.Limit}

	if s.Where != nil {
		filter, err := buildPredicate(s.Where, columnResolver)
		if err != nil {
			return nil, err
		}
		cmd.Filter = filter
	}

	if !ps.Star && len(ps.Fields) > 0 {
		projection := bson.D{{Key: "_id", Value: int32(0)}}
		for _, field := range ps.Fields {
			projection = append(projection, bson.E{Key: field.Name, Value: int32(1)})
		}
		cmd.Projection = projection
	}

	if len(ps.OrderBy) > 0 {
		sort := bson.D{}
		for _, key := range ps.OrderBy {
			sort = append(sort, bson.E{Key: key.Field, Value: sortDirection(key.Desc)})
		}
		cmd.Sort = sort
	}

	return cmd, nil
}

func sortDirection(desc bool) int32 {
	if desc {
		return -1
	}
	return 1
}

// groupKey sanitizes a field path for use as a sub-document key, where
// dots would otherwise create nesting.
func groupKey(field string) string {
	return strings.ReplaceAll(field, ".", "_")
}

func buildPipeline(ps *ParsedStatement, s *ast.SelectStatement, collection string) (*AggregateCommand, error) {
	pipeline := make([]bson.D, 0, 6)

	if s.Where != nil {
		filter, err := buildPredicate(s.Where, columnResolver)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: filter}})
	}

	groupFields := ps.GroupBy
	if len(groupFields) == 0 && ps.HasDistinct && len(ps.Aggregations) == 0 {
		// SELECT DISTINCT a, b deduplicates via grouping on the columns.
		for _, field := range ps.Fields {
			groupFields = append(groupFields, field.Name)
		}
	}

	for _, field := range ps.Fields {
		if !containsField(groupFields, field.Name) {
			return nil, &AmbiguousTranslationError{
				Construct: "SELECT column " + field.Name,
				Reason:    "columns selected alongside aggregates must appear in GROUP BY",
			}
		}
	}

	group, project := buildGroupAndProject(ps, groupFields)
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: group}})
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: project}})

	if s.Having != nil {
		having, err := buildPredicate(s.Having, havingResolver(ps.Aggregations))
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: having}})
	}

	if len(ps.OrderBy) > 0 {
		sort := bson.D{}
		for _, key := range ps.OrderBy {
			sort = append(sort, bson.E{Key: groupKey(key.Field), Value: sortDirection(key.Desc)})
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}

	if ps.Limit != nil {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: *ps.Limit}})
	}

	return &AggregateCommand{Collection: collection, Pipeline: pipeline}, nil
}

func buildGroupAndProject(ps *ParsedStatement, groupFields []string) (bson.D, bson.D) {
	var groupID any
	if len(groupFields) > 0 {
		id := bson.D{}
		for _, field := range groupFields {
			id = append(id, bson.E{Key: groupKey(field), Value: "$" + field})
		}
		groupID = id
	}

	group := bson.D{{Key: "_id", Value: groupID}}
	project := bson.D{{Key: "_id", Value: int32(0)}}

	for _, field := range groupFields {
		key := groupKey(field)
		project = append(project, bson.E{Key: key, Value: "$_id." + key})
	}

	for _, agg := range ps.Aggregations {
		group = append(group, bson.E{Key: agg.Alias, Value: accumulator(agg)})
		if agg.Func == AggCount && agg.Distinct {
			project = append(project, bson.E{Key: agg.Alias, Value: bson.D{{Key: "$size", Value: "$" + agg.Alias}}})
			continue
		}
		project = append(project, bson.E{Key: agg.Alias, Value: int32(1)})
	}

	return group, project
}

func accumulator(agg Aggregation) bson.D {
	switch agg.Func {
	case AggCount:
		if agg.Star {
			return bson.D{{Key: "$sum", Value: int32(1)}}
		}
		if agg.Distinct {
			return bson.D{{Key: "$addToSet", Value: "$" + agg.Field}}
		}
		// count only documents where the field is present and non-null
		cond := bson.A{
			bson.D{{Key: "$ne", Value: bson.A{"$" + agg.Field, nil}}},
			int32(1),
			int32(0),
		}
		return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: cond}}}}
	case AggSum:
		return bson.D{{Key: "$sum", Value: "$" + agg.Field}}
	case AggAvg:
		return bson.D{{Key: "$avg", Value: "$" + agg.Field}}
	case AggMax:
		return bson.D{{Key: "$max", Value: "$" + agg.Field}}
	case AggMin:
		return bson.D{{Key: "$min", Value: "$" + agg.Field}}
	case AggGroupConcat:
		return bson.D{{Key: "$push", Value: "$" + agg.Field}}
	default:
		return bson.D{}
	}
}

// havingResolver maps HAVING operands onto the pipeline's output fields:
// aggregate calls resolve to their aliases, columns to their group keys.
func havingResolver(aggs []Aggregation) fieldResolver {
	return func(expr ast.Expr) (string, error) {
		switch e := expr.(type) {
		case *ast.Identifier:
			return groupKey(fieldName(e)), nil
		case *ast.FuncCall:
			agg, err := extractAggregation(e, "")
			if err != nil {
				return "", err
			}
			for _, known := range aggs {
				if known.Func == agg.Func && known.Field == agg.Field && known.Star == agg.Star {
					return known.Alias, nil
				}
			}
			return "", &AmbiguousTranslationError{
				Construct: "HAVING aggregate",
				Reason:    "aggregate in HAVING must also appear in the SELECT list",
			}
		default:
			return "", &AmbiguousTranslationError{
				Construct: "HAVING operand",
				Reason:    "only columns and aggregate calls can be filtered after grouping",
			}
		}
	}
}

func containsField(fields []string, name string) bool {
	for _, field := range fields {
		if field == name {
			return true
		}
	}
	return false
}
