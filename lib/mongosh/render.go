// Package mongosh renders translated commands as mongo shell
// invocations. The output is deterministic text plus a token stream that
// lets callers highlight keywords, strings and operators.
package mongosh

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
)

// TokenKind classifies a rendered token for display purposes.
type TokenKind string

const (
	TokenKeyword  TokenKind = "keyword"
	TokenString   TokenKind = "string"
	TokenOperator TokenKind = "operator"
	TokenText     TokenKind = "text"
)

// Token is one classified span of the rendered invocation.
type Token struct {
	Kind TokenKind `json:"kind"`
	Text string    `json:"text"`
}

// Invocation is the rendered shell command. Text is the concatenation of
// all token texts.
type Invocation struct {
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}

// Render produces a shell invocation for the translation result. When
// sql is non-empty the invocation starts with a comment carrying the
// original statement.
func Render(result *mongoql.TranslationResult, sql string) (*Invocation, error) {
	if result == nil {
		return nil, fmt.Errorf("mongosh: nil translation result")
	}

	w := &writer{}
	if sql = strings.TrimSpace(sql); sql != "" {
		w.text("// SQL: " + collapseWhitespace(sql) + "\n")
	}

	switch {
	case result.Find != nil:
		w.renderFind(result.Find)
	case result.Aggregate != nil:
		w.renderAggregate(result.Aggregate)
	case result.Write != nil:
		w.renderWrite(result.Write)
	default:
		return nil, fmt.Errorf("mongosh: translation result has no command")
	}

	return &Invocation{Text: w.builder.String(), Tokens: w.tokens}, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type writer struct {
	builder strings.Builder
	tokens  []Token
}

func (w *writer) emit(kind TokenKind, text string) {
	if text == "" {
		return
	}
	w.builder.WriteString(text)
	// consecutive plain text merges into one token
	if kind == TokenText && len(w.tokens) > 0 && w.tokens[len(w.tokens)-1].Kind == TokenText {
		w.tokens[len(w.tokens)-1].Text += text
		return
	}
	w.tokens = append(w.tokens, Token{Kind: kind, Text: text})
}

func (w *writer) text(s string)    { w.emit(TokenText, s) }
func (w *writer) keyword(s string) { w.emit(TokenKeyword, s) }
func (w *writer) str(s string)     { w.emit(TokenString, s) }
func (w *writer) op(s string)      { w.emit(TokenOperator, s) }

func (w *writer) method(collection, name string) {
	w.keyword("db")
	w.text("." + collection + ".")
	w.keyword(name)
}

func (w *writer) pretty() {
	w.text(".")
	w.keyword("pretty")
	w.text("()")
}

func (w *writer) renderFind(cmd *mongoql.FindCommand) {
	w.method(cmd.Collection, "find")
	w.text("(")
	w.value(cmd.Filter)
	if cmd.Projection != nil {
		w.text(", ")
		w.value(cmd.Projection)
	}
	w.text(")")
	if cmd.Sort != nil {
		w.text(".")
		w.keyword("sort")
		w.text("(")
		w.value(cmd.Sort)
		w.text(")")
	}
	if cmd.Limit != nil {
		w.text(".")
		w.keyword("limit")
		w.text("(" + strconv.FormatInt(*cmd.Limit, 10) + ")")
	}
	w.pretty()
}

func (w *writer) renderAggregate(cmd *mongoql.AggregateCommand) {
	w.method(cmd.Collection, "aggregate")
	w.text("([\n")
	for i, stage := range cmd.Pipeline {
		w.text("  ")
		w.value(stage)
		if i < len(cmd.Pipeline)-1 {
			w.text(",")
		}
		w.text("\n")
	}
	w.text("])")
	w.pretty()
}

func (w *writer) renderWrite(cmd *mongoql.WriteCommand) {
	switch cmd.Op {
	case mongoql.OpInsertOne:
		w.method(cmd.Collection, "insertOne")
		w.text("(")
		w.value(cmd.Documents[0])
		w.text(")")
	case mongoql.OpInsertMany:
		w.method(cmd.Collection, "insertMany")
		w.text("([\n")
		for i, doc := range cmd.Documents {
			w.text("  ")
			w.value(doc)
			if i < len(cmd.Documents)-1 {
				w.text(",")
			}
			w.text("\n")
		}
		w.text("])")
	case mongoql.OpUpdateMany:
		w.method(cmd.Collection, "updateMany")
		w.text("(")
		w.value(cmd.Filter)
		w.text(", ")
		w.value(cmd.Update)
		w.text(")")
	case mongoql.OpDeleteMany:
		w.method(cmd.Collection, "deleteMany")
		w.text("(")
		w.value(cmd.Filter)
		w.text(")")
	case mongoql.OpCreateCollection:
		w.keyword("db")
		w.text(".")
		w.keyword("createCollection")
		w.text("(")
		w.str(quote(cmd.Collection))
		w.text(")")
		if len(cmd.Columns) > 0 {
			w.text("\n// columns: " + describeColumns(cmd.Columns))
		}
	case mongoql.OpDrop:
		w.method(cmd.Collection, "drop")
		w.text("()")
	}
}

func describeColumns(columns []mongoql.ColumnSpec) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.Type == "" {
			parts = append(parts, col.Name)
			continue
		}
		parts = append(parts, col.Name+" "+col.Type)
	}
	return strings.Join(parts, ", ")
}

// value renders a BSON value as shell-style JSON. Operator keys keep
// their bare $-form the way the shell prints them; plain keys are
// double-quoted.
func (w *writer) value(v any) {
	switch val := v.(type) {
	case bson.D:
		if len(val) == 0 {
			w.text("{}")
			return
		}
		w.text("{ ")
		for i, elem := range val {
			if i > 0 {
				w.text(", ")
			}
			if strings.HasPrefix(elem.Key, "$") {
				w.op(elem.Key)
			} else {
				w.str(quote(elem.Key))
			}
			w.text(": ")
			w.value(elem.Value)
		}
		w.text(" }")
	case bson.A:
		if len(val) == 0 {
			w.text("[]")
			return
		}
		w.text("[")
		for i, item := range val {
			if i > 0 {
				w.text(", ")
			}
			w.value(item)
		}
		w.text("]")
	case string:
		w.str(quote(val))
	case int32:
		w.text(strconv.FormatInt(int64(val), 10))
	case int64:
		w.text(strconv.FormatInt(val, 10))
	case int:
		w.text(strconv.Itoa(val))
	case float64:
		w.text(strconv.FormatFloat(val, 'g', -1, 64))
	case bool:
		w.text(strconv.FormatBool(val))
	case nil:
		w.text("null")
	default:
		w.text(fmt.Sprintf("%v", val))
	}
}

func quote(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + replacer.Replace(s) + `"`
}
