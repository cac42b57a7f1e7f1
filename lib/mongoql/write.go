package mongoql

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongobridge/sql-to-mongo/lib/sql/ast"
)

// WriteOp names the collection method a write command maps to.
type WriteOp string

const (
	OpInsertOne        WriteOp = "insertOne"
	OpInsertMany       WriteOp = "insertMany"
	OpUpdateMany       WriteOp = "updateMany"
	OpDeleteMany       WriteOp = "deleteMany"
	OpCreateCollection WriteOp = "createCollection"
	OpDrop             WriteOp = "drop"
)

// ColumnSpec records one column definition from CREATE TABLE. Document
// stores are schemaless, so the list is informational only.
type ColumnSpec struct {
	Name string
	Type string
}

// WriteCommand is the translated form of a mutating statement. Only the
// fields relevant to Op are populated.
type WriteCommand struct {
	Op         WriteOp
	Collection string
	Documents  []bson.D
	Filter     bson.D
	Update     bson.D
	Columns    []ColumnSpec
}

func buildInsert(s *ast.InsertStatement, collection string) (*WriteCommand, error) {
	if len(s.Columns) == 0 {
		return nil, &AmbiguousTranslationError{
			Construct: "INSERT without a column list",
			Reason:    "column names are needed to build documents",
		}
	}

	documents := make([]bson.D, 0, len(s.Rows))
	for _, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return nil, &AmbiguousTranslationError{
				Construct: "INSERT row",
				Reason:    "value count does not match the column list",
			}
		}
		doc := bson.D{}
		for i, col := range s.Columns {
			value, err := literalValue(row[i])
			if err != nil {
				return nil, err
			}
			doc = append(doc, bson.E{Key: identName(col), Value: value})
		}
		documents = append(documents, doc)
	}

	op := OpInsertMany
	if len(documents) == 1 {
		op = OpInsertOne
	}
	return &WriteCommand{Op: op, Collection: collection, Documents: documents}, nil
}

func buildUpdate(s *ast.UpdateStatement, collection string) (*WriteCommand, error) {
	filter, err := buildPredicate(s.Where, columnResolver)
	if err != nil {
		return nil, err
	}

	set := bson.D{}
	for _, assignment := range s.Assignments {
		value, err := literalValue(assignment.Value)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: identName(assignment.Column), Value: value})
	}

	return &WriteCommand{
		Op:         OpUpdateMany,
		Collection: collection,
		Filter:     filter,
		Update:     bson.D{{Key: "$set", Value: set}},
	}, nil
}

func buildDelete(s *ast.DeleteStatement, collection string) (*WriteCommand, error) {
	filter, err := buildPredicate(s.Where, columnResolver)
	if err != nil {
		return nil, err
	}
	return &WriteCommand{Op: OpDeleteMany, Collection: collection, Filter: filter}, nil
}

func buildCreate(s *ast.CreateTableStatement, collection string) *WriteCommand {
	columns := make([]ColumnSpec, 0, len(s.Columns))
	for _, col := range s.Columns {
		columns = append(columns, ColumnSpec{Name: identName(col.Name), Type: col.Type})
	}
	return &WriteCommand{Op: OpCreateCollection, Collection: collection, Columns: columns}
}

func buildDrop(collection string) *WriteCommand {
	return &WriteCommand{Op: OpDrop, Collection: collection}
}
