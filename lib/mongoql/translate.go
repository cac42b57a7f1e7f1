// Package mongoql classifies SQL statements and translates them into
// MongoDB command structures: find invocations for simple reads,
// aggregation pipelines for grouped reads, and collection write methods
// for mutations.
package mongoql

import (
	"github.com/mongobridge/sql-to-mongo/lib/sql/ast"
	"github.com/mongobridge/sql-to-mongo/lib/sql/parser"
)

// TranslationResult is a tagged union over the three command families.
// Exactly one of Find, Aggregate and Write is set, matching Kind.
type TranslationResult struct {
	Kind       Kind
	Collection string

	Find      *FindCommand
	Aggregate *AggregateCommand
	Write     *WriteCommand
}

// Translate converts a classified statement into a MongoDB command,
// targeting the collection named by the statement's table.
func Translate(ps *ParsedStatement, caps Capabilities) (*TranslationResult, error) {
	return TranslateInto(ps, caps, ps.Table)
}

// TranslateInto is Translate with an explicit target collection, used
// when a catalog maps table names onto collections.
func TranslateInto(ps *ParsedStatement, caps Capabilities, collection string) (*TranslationResult, error) {
	if err := caps.check(ps.Kind); err != nil {
		return nil, err
	}
	if err := guard(ps); err != nil {
		return nil, err
	}
	if collection == "" {
		return nil, &parser.SyntaxError{Msg: "statement has no target table"}
	}

	result := &TranslationResult{Kind: ps.Kind, Collection: collection}

	switch stmt := ps.stmt.(type) {
	case *ast.SelectStatement:
		if ps.Kind == KindAggregateRead {
			cmd, err := buildPipeline(ps, stmt, collection)
			if err != nil {
				return nil, err
			}
			result.Aggregate = cmd
		} else {
			cmd, err := buildFind(ps, stmt, collection)
			if err != nil {
				return nil, err
			}
			result.Find = cmd
		}
	case *ast.InsertStatement:
		cmd, err := buildInsert(stmt, collection)
		if err != nil {
			return nil, err
		}
		result.Write = cmd
	case *ast.UpdateStatement:
		cmd, err := buildUpdate(stmt, collection)
		if err != nil {
			return nil, err
		}
		result.Write = cmd
	case *ast.DeleteStatement:
		cmd, err := buildDelete(stmt, collection)
		if err != nil {
			return nil, err
		}
		result.Write = cmd
	case *ast.CreateTableStatement:
		result.Write = buildCreate(stmt, collection)
	case *ast.DropTableStatement:
		result.Write = buildDrop(collection)
	}

	return result, nil
}

// guard rejects statements the engine cannot or will not translate:
// multi-collection constructs fail closed, and unbounded writes are
// blocked outright.
func guard(ps *ParsedStatement) error {
	switch {
	case ps.HasJoin:
		return &AmbiguousTranslationError{Construct: "JOIN", Reason: "queries must target a single collection"}
	case ps.HasUnion:
		return &AmbiguousTranslationError{Construct: "UNION", Reason: "queries must target a single collection"}
	case ps.HasSubquery:
		return &AmbiguousTranslationError{Construct: "subquery", Reason: "nested queries have no filter-document equivalent"}
	}

	if !ps.HasWhere {
		switch ps.Kind {
		case KindUpdate:
			return &DangerousOperationError{Operation: "UPDATE"}
		case KindDelete:
			return &DangerousOperationError{Operation: "DELETE"}
		}
	}
	return nil
}
