package mongoql

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mongobridge/sql-to-mongo/lib/sql/ast"
	"github.com/mongobridge/sql-to-mongo/lib/sql/lexer"
	"github.com/mongobridge/sql-to-mongo/lib/sql/parser"
)

// Kind classifies a parsed statement by the translation strategy it needs.
type Kind string

const (
	// KindSimpleRead translates to a find invocation.
	KindSimpleRead Kind = "SIMPLE_READ"
	// KindAggregateRead translates to an aggregation pipeline.
	KindAggregateRead Kind = "AGGREGATE_READ"
	KindInsert        Kind = "INSERT"
	KindUpdate        Kind = "UPDATE"
	KindDelete        Kind = "DELETE"
	KindCreate        Kind = "CREATE_TABLE"
	KindDrop          Kind = "DROP_TABLE"
)

// IsRead reports whether the kind reads documents rather than writing.
func (k Kind) IsRead() bool {
	return k == KindSimpleRead || k == KindAggregateRead
}

// Tier buckets kinds by translation complexity.
func (k Kind) Tier() string {
	switch k {
	case KindSimpleRead:
		return "simple"
	case KindAggregateRead:
		return "aggregate"
	case KindInsert, KindUpdate, KindDelete:
		return "write"
	case KindCreate, KindDrop:
		return "ddl"
	default:
		return ""
	}
}

// HighImpact reports whether the operation discards an entire
// collection. DROP is flagged but never blocked; it is gated only on
// the drop_table capability.
func (k Kind) HighImpact() bool {
	return k == KindDrop
}

// AggFunc enumerates the aggregate functions the pipeline builder knows.
type AggFunc string

const (
	AggCount       AggFunc = "COUNT"
	AggSum         AggFunc = "SUM"
	AggAvg         AggFunc = "AVG"
	AggMax         AggFunc = "MAX"
	AggMin         AggFunc = "MIN"
	AggGroupConcat AggFunc = "GROUP_CONCAT"
)

var aggFuncs = map[string]AggFunc{
	"COUNT":        AggCount,
	"SUM":          AggSum,
	"AVG":          AggAvg,
	"MAX":          AggMax,
	"MIN":          AggMin,
	"GROUP_CONCAT": AggGroupConcat,
}

// Field is a plain column reference from the SELECT list.
type Field struct {
	Name  string
	Alias string
}

// Aggregation is one aggregate function call from the SELECT list.
type Aggregation struct {
	Func     AggFunc
	Field    string // empty when Star is set
	Star     bool
	Distinct bool
	Alias    string
}

// OrderKey is one ORDER BY term.
type OrderKey struct {
	Field string
	Desc  bool
}

// ParsedStatement is the classified, structure-extracted form of one SQL
// statement. It carries everything the translator needs without exposing
// the AST to callers.
type ParsedStatement struct {
	Kind  Kind
	Table string

	Star         bool
	Fields       []Field
	Aggregations []Aggregation
	GroupBy      []string
	OrderBy      []OrderKey
	Limit        *int64

	HasWhere    bool
	HasHaving   bool
	HasJoin     bool
	HasUnion    bool
	HasDistinct bool
	HasSubquery bool

	stmt ast.Statement
}

// Classify parses the SQL text and extracts the statement structure.
// Syntax failures surface as parser.SyntaxError values.
func Classify(sql string) (*ParsedStatement, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, &parser.SyntaxError{Msg: "empty statement"}
	}

	p := parser.New(lexer.New(sql))
	stmt := p.ParseStatement()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if stmt == nil {
		return nil, &parser.SyntaxError{Msg: "no statement parsed"}
	}

	return classifyStatement(stmt)
}

func classifyStatement(stmt ast.Statement) (*ParsedStatement, error) {
	ps := &ParsedStatement{stmt: stmt}

	switch s := stmt.(type) {
	case *ast.SelectStatement:
		if err := ps.analyzeSelect(s); err != nil {
			return nil, err
		}
	case *ast.InsertStatement:
		ps.Kind = KindInsert
		ps.Table = tableNameOf(s.Table)
	case *ast.UpdateStatement:
		ps.Kind = KindUpdate
		ps.Table = tableExprName(s.Table)
		ps.HasWhere = s.Where != nil
	case *ast.DeleteStatement:
		ps.Kind = KindDelete
		ps.Table = tableExprName(s.Table)
		ps.HasWhere = s.Where != nil
	case *ast.CreateTableStatement:
		ps.Kind = KindCreate
		ps.Table = identName(s.Name)
	case *ast.DropTableStatement:
		ps.Kind = KindDrop
		ps.Table = identName(s.Name)
	default:
		return nil, &AmbiguousTranslationError{Construct: "statement", Reason: "unsupported statement type"}
	}

	return ps, nil
}

func (ps *ParsedStatement) analyzeSelect(s *ast.SelectStatement) error {
	ps.HasWhere = s.Where != nil
	ps.HasHaving = s.Having != nil
	ps.HasDistinct = s.Distinct
	ps.HasUnion = len(s.Unions) > 0

	switch from := s.From.(type) {
	case *ast.TableName:
		ps.Table = identName(from.Name)
	case *ast.JoinExpr:
		ps.HasJoin = true
	case *ast.SubqueryTable:
		ps.HasSubquery = true
	case nil:
		return &parser.SyntaxError{Msg: "SELECT is missing its FROM clause"}
	}

	scan := &selectScanner{}
	ast.Walk(scan, s)
	if scan.join {
		ps.HasJoin = true
	}
	if scan.subquery {
		ps.HasSubquery = true
	}

	for _, item := range s.Columns {
		switch expr := item.Expr.(type) {
		case *ast.StarExpr:
			ps.Star = true
		case *ast.Identifier:
			ps.Fields = append(ps.Fields, Field{Name: fieldName(expr), Alias: item.Alias})
		case *ast.FuncCall:
			agg, err := extractAggregation(expr, item.Alias)
			if err != nil {
				return err
			}
			ps.Aggregations = append(ps.Aggregations, agg)
		default:
			return &AmbiguousTranslationError{
				Construct: "SELECT list expression",
				Reason:    "only column references, *, and aggregate calls are supported",
			}
		}
	}

	for _, expr := range s.GroupBy {
		ident, ok := expr.(*ast.Identifier)
		if !ok {
			return &AmbiguousTranslationError{Construct: "GROUP BY expression", Reason: "only column references can be grouped"}
		}
		ps.GroupBy = append(ps.GroupBy, fieldName(ident))
	}

	for _, item := range s.OrderBy {
		key, err := orderKeyOf(item, ps.Aggregations)
		if err != nil {
			return err
		}
		ps.OrderBy = append(ps.OrderBy, key)
	}

	if s.Limit != nil && s.Limit.Count != nil {
		num, ok := s.Limit.Count.(*ast.NumericLiteral)
		if !ok {
			return &AmbiguousTranslationError{Construct: "LIMIT expression", Reason: "limit must be a numeric literal"}
		}
		n, err := strconv.ParseInt(num.Value, 10, 64)
		if err != nil {
			return &parser.SyntaxError{Msg: "invalid LIMIT value " + num.Value}
		}
		ps.Limit = &n
	}

	// anything beyond plain filtered reads routes through the pipeline
	// path, where the builder handles it or fails closed; a find would
	// silently ignore HAVING and the multi-collection constructs
	if len(ps.Aggregations) > 0 || len(ps.GroupBy) > 0 || ps.HasDistinct ||
		ps.HasHaving || ps.HasJoin || ps.HasUnion || ps.HasSubquery {
		ps.Kind = KindAggregateRead
	} else {
		ps.Kind = KindSimpleRead
	}
	return nil
}

func orderKeyOf(item ast.OrderItem, aggs []Aggregation) (OrderKey, error) {
	desc := item.Direction == ast.Descending
	switch expr := item.Expr.(type) {
	case *ast.Identifier:
		return OrderKey{Field: fieldName(expr), Desc: desc}, nil
	case *ast.FuncCall:
		agg, err := extractAggregation(expr, "")
		if err != nil {
			return OrderKey{}, err
		}
		for _, known := range aggs {
			if known.Func == agg.Func && known.Field == agg.Field && known.Star == agg.Star {
				return OrderKey{Field: known.Alias, Desc: desc}, nil
			}
		}
		return OrderKey{Field: agg.Alias, Desc: desc}, nil
	default:
		return OrderKey{}, &AmbiguousTranslationError{Construct: "ORDER BY expression", Reason: "only column references and aggregate calls can order results"}
	}
}

func extractAggregation(call *ast.FuncCall, alias string) (Aggregation, error) {
	name := strings.ToUpper(identName(&call.Name))
	fn, ok := aggFuncs[name]
	if !ok {
		return Aggregation{}, &AmbiguousTranslationError{
			Construct: name + "()",
			Reason:    "only COUNT, SUM, AVG, MAX, MIN and GROUP_CONCAT are supported",
		}
	}

	agg := Aggregation{Func: fn, Distinct: call.Distinct, Alias: alias}
	if len(call.Args) != 1 {
		return Aggregation{}, &AmbiguousTranslationError{Construct: name + "()", Reason: "aggregate functions take exactly one argument"}
	}
	switch arg := call.Args[0].(type) {
	case *ast.StarExpr:
		agg.Star = true
	case *ast.Identifier:
		agg.Field = fieldName(arg)
	default:
		return Aggregation{}, &AmbiguousTranslationError{Construct: name + "()", Reason: "aggregate argument must be a column or *"}
	}

	if agg.Star && fn != AggCount {
		return Aggregation{}, &AmbiguousTranslationError{Construct: name + "(*)", Reason: "only COUNT accepts *"}
	}
	if agg.Alias == "" {
		agg.Alias = defaultAggAlias(agg)
	}
	return agg, nil
}

func defaultAggAlias(agg Aggregation) string {
	if agg.Star {
		return "count"
	}
	return strings.ToLower(string(agg.Func)) + "_" + strings.ReplaceAll(agg.Field, ".", "_")
}

// selectScanner flags joins and subqueries anywhere in the statement tree.
type selectScanner struct {
	join     bool
	subquery bool
}

func (s *selectScanner) Visit(node ast.Node) ast.Visitor {
	switch n := node.(type) {
	case *ast.JoinExpr:
		s.join = true
	case *ast.SubqueryTable, *ast.SubqueryExpr, *ast.ExistsExpr:
		s.subquery = true
	case *ast.InExpr:
		if n.Subquery != nil {
			s.subquery = true
		}
	case nil:
		return nil
	}
	return s
}

func identName(ident *ast.Identifier) string {
	if ident == nil {
		return ""
	}
	return strings.Join(ident.Parts, ".")
}

// fieldName strips nothing: dotted paths address nested document fields.
func fieldName(ident *ast.Identifier) string {
	return identName(ident)
}

func tableNameOf(t *ast.TableName) string {
	if t == nil {
		return ""
	}
	return identName(t.Name)
}

func tableExprName(t ast.TableExpr) string {
	if named, ok := t.(*ast.TableName); ok {
		return tableNameOf(named)
	}
	return ""
}
