package mongoql

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongobridge/sql-to-mongo/lib/sql/ast"
)

// fieldResolver maps an expression in predicate position to a document
// field name. WHERE clauses resolve column references directly; HAVING
// clauses additionally resolve aggregate calls to their output aliases.
type fieldResolver func(ast.Expr) (string, error)

func columnResolver(expr ast.Expr) (string, error) {
	ident, ok := expr.(*ast.Identifier)
	if !ok {
		return "", &AmbiguousTranslationError{
			Construct: "comparison operand",
			Reason:    "the left side of a comparison must be a column reference",
		}
	}
	return fieldName(ident), nil
}

// buildPredicate converts a WHERE or HAVING expression into a filter
// document. AND merges the operand filters into one document; OR becomes
// an explicit $or array.
func buildPredicate(expr ast.Expr, resolve fieldResolver) (bson.D, error) {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		return buildBinaryPredicate(e, resolve)
	case *ast.BetweenExpr:
		return buildBetweenPredicate(e, resolve)
	case *ast.InExpr:
		return buildInPredicate(e, resolve)
	case *ast.LikeExpr:
		return buildLikePredicate(e, resolve)
	case *ast.IsNullExpr:
		field, err := resolve(e.Expr)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: field, Value: bson.D{{Key: "$exists", Value: e.Not}}}}, nil
	case *ast.UnaryExpr:
		if e.Operator != "NOT" {
			return nil, &AmbiguousTranslationError{Construct: e.Operator + " expression", Reason: "unsupported prefix operator in filter"}
		}
		inner, err := buildPredicate(e.Expr, resolve)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$nor", Value: bson.A{inner}}}, nil
	case *ast.ExistsExpr, *ast.SubqueryExpr:
		return nil, &AmbiguousTranslationError{Construct: "subquery in filter", Reason: "subqueries cannot be expressed as a filter document"}
	default:
		return nil, &AmbiguousTranslationError{Construct: "filter expression", Reason: "unsupported expression in filter"}
	}
}

func buildBinaryPredicate(e *ast.BinaryExpr, resolve fieldResolver) (bson.D, error) {
	switch e.Operator {
	case "AND":
		left, err := buildPredicate(e.Left, resolve)
		if err != nil {
			return nil, err
		}
		right, err := buildPredicate(e.Right, resolve)
		if err != nil {
			return nil, err
		}
		return mergeFilters(left, right), nil
	case "OR":
		branches, err := collectOrBranches(e, resolve)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$or", Value: branches}}, nil
	}

	field, err := resolve(e.Left)
	if err != nil {
		return nil, err
	}
	value, err := literalValue(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case "=":
		return bson.D{{Key: field, Value: value}}, nil
	case ">":
		return bson.D{{Key: field, Value: bson.D{{Key: "$gt", Value: value}}}}, nil
	case ">=":
		return bson.D{{Key: field, Value: bson.D{{Key: "$gte", Value: value}}}}, nil
	case "<":
		return bson.D{{Key: field, Value: bson.D{{Key: "$lt", Value: value}}}}, nil
	case "<=":
		return bson.D{{Key: field, Value: bson.D{{Key: "$lte", Value: value}}}}, nil
	case "!=", "<>":
		return bson.D{{Key: field, Value: bson.D{{Key: "$ne", Value: value}}}}, nil
	default:
		return nil, &AmbiguousTranslationError{Construct: e.Operator + " expression", Reason: "unsupported operator in filter"}
	}
}

// collectOrBranches flattens nested OR chains into a single $or array so
// a OR b OR c produces three branches rather than nested pairs.
func collectOrBranches(e *ast.BinaryExpr, resolve fieldResolver) (bson.A, error) {
	branches := bson.A{}
	for _, side := range []ast.Expr{e.Left, e.Right} {
		if nested, ok := side.(*ast.BinaryExpr); ok && nested.Operator == "OR" {
			sub, err := collectOrBranches(nested, resolve)
			if err != nil {
				return nil, err
			}
			branches = append(branches, sub...)
			continue
		}
		filter, err := buildPredicate(side, resolve)
		if err != nil {
			return nil, err
		}
		branches = append(branches, filter)
	}
	return branches, nil
}

// mergeFilters combines two filter documents. When both sides constrain
// the same field with disjoint operator documents, the operators are
// merged so x > 1 AND x < 5 yields one {$gt, $lt} document. Anything
// else on a shared field (an equality, or a repeated operator) falls
// back to an explicit $and; a duplicate key in one document would be
// silently dropped by the server.
func mergeFilters(left, right bson.D) bson.D {
	merged := append(bson.D{}, left...)
	for _, elem := range right {
		idx := -1
		for i, existing := range merged {
			if existing.Key == elem.Key {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, elem)
			continue
		}
		existingOps, leftOk := merged[idx].Value.(bson.D)
		newOps, rightOk := elem.Value.(bson.D)
		if leftOk && rightOk && !operatorsOverlap(existingOps, newOps) {
			merged[idx].Value = append(append(bson.D{}, existingOps...), newOps...)
			continue
		}
		return bson.D{{Key: "$and", Value: bson.A{left, right}}}
	}
	return merged
}

func operatorsOverlap(a, b bson.D) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Key == y.Key {
				return true
			}
		}
	}
	return false
}

func buildBetweenPredicate(e *ast.BetweenExpr, resolve fieldResolver) (bson.D, error) {
	field, err := resolve(e.Expr)
	if err != nil {
		return nil, err
	}
	lower, err := literalValue(e.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := literalValue(e.Upper)
	if err != nil {
		return nil, err
	}
	window := bson.D{{Key: "$gte", Value: lower}, {Key: "$lte", Value: upper}}
	if e.Not {
		return bson.D{{Key: field, Value: bson.D{{Key: "$not", Value: window}}}}, nil
	}
	return bson.D{{Key: field, Value: window}}, nil
}

func buildInPredicate(e *ast.InExpr, resolve fieldResolver) (bson.D, error) {
	if e.Subquery != nil {
		return nil, &AmbiguousTranslationError{Construct: "IN (SELECT ...)", Reason: "subqueries cannot be expressed as a filter document"}
	}
	field, err := resolve(e.Expr)
	if err != nil {
		return nil, err
	}
	values := bson.A{}
	for _, item := range e.List {
		value, err := literalValue(item)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	op := "$in"
	if e.Not {
		op = "$nin"
	}
	return bson.D{{Key: field, Value: bson.D{{Key: op, Value: values}}}}, nil
}

func buildLikePredicate(e *ast.LikeExpr, resolve fieldResolver) (bson.D, error) {
	field, err := resolve(e.Expr)
	if err != nil {
		return nil, err
	}
	pattern, ok := e.Pattern.(*ast.StringLiteral)
	if !ok {
		return nil, &AmbiguousTranslationError{Construct: "LIKE pattern", Reason: "pattern must be a string literal"}
	}
	regex := likeToRegex(pattern.Value)
	if e.Not {
		return bson.D{{Key: field, Value: bson.D{{Key: "$not", Value: bson.D{{Key: "$regex", Value: regex}}}}}}, nil
	}
	return bson.D{{Key: field, Value: bson.D{{Key: "$regex", Value: regex}}}}, nil
}

// likeToRegex rewrites a SQL LIKE pattern as an anchored regular
// expression. % matches any run, _ matches a single character, and all
// regex metacharacters in the pattern are escaped.
func likeToRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		case '.', '^', '$', '*', '+', '?', '(', ')', '[', ']', '{', '}', '\\', '|':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('$')
	return b.String()
}

// literalValue converts a literal expression to its Go value. Integral
// numbers become int64 so they render without a fractional part.
func literalValue(expr ast.Expr) (any, error) {
	switch v := expr.(type) {
	case *ast.StringLiteral:
		return v.Value, nil
	case *ast.NumericLiteral:
		return parseNumber(v.Value)
	case *ast.BooleanLiteral:
		return v.Value, nil
	case *ast.NullLiteral:
		return nil, nil
	case *ast.UnaryExpr:
		if v.Operator == "-" {
			inner, err := literalValue(v.Expr)
			if err != nil {
				return nil, err
			}
			switch n := inner.(type) {
			case int64:
				return -n, nil
			case float64:
				return -n, nil
			}
		}
		return nil, &AmbiguousTranslationError{Construct: "comparison value", Reason: "value must be a literal"}
	default:
		return nil, &AmbiguousTranslationError{Construct: "comparison value", Reason: "value must be a literal"}
	}
}

func parseNumber(text string) (any, error) {
	if !strings.Contains(text, ".") {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &AmbiguousTranslationError{Construct: "numeric literal", Reason: "cannot parse number " + text}
	}
	return f, nil
}
