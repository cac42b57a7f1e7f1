package parser

import (
	"fmt"
	"strings"

	"github.com/mongobridge/sql-to-mongo/lib/sql/ast"
	"github.com/mongobridge/sql-to-mongo/lib/sql/lexer"
	"github.com/mongobridge/sql-to-mongo/lib/sql/token"
)

const (
	// MaxParserDepth limits recursion depth to prevent stack overflow
	MaxParserDepth = 100
	// MaxExpressionCount limits number of expressions in lists
	MaxExpressionCount = 1000
)

// Parser consumes SQL tokens and produces AST nodes for the statement
// shapes the translator understands: SELECT, INSERT, UPDATE, DELETE,
// CREATE TABLE and DROP TABLE.
type Parser struct {
	l      *lexer.Lexer
	errors []error

	curToken  token.Token
	peekToken token.Token

	depth int // Current recursion depth
}

// New returns a parser over the provided lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: make([]error, 0)}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors exposes parsing errors encountered so far.
func (p *Parser) Errors() []error {
	return p.errors
}

func (p *Parser) addError(pos token.Position, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, &SyntaxError{Pos: pos, Msg: msg})
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken.Pos, "expected %s, got %s", t, p.peekToken.Type)
	return false
}

// ParseStatement parses a top-level SQL statement.
func (p *Parser) ParseStatement() ast.Statement {
	var stmt ast.Statement

	switch p.curToken.Type {
	case token.SELECT:
		stmt = p.parseSelectStatement()
	case token.INSERT:
		stmt = p.parseInsertStatement()
	case token.UPDATE:
		stmt = p.parseUpdateStatement()
	case token.DELETE:
		stmt = p.parseDeleteStatement()
	case token.CREATE:
		stmt = p.parseCreateTableStatement()
	case token.DROP:
		stmt = p.parseDropTableStatement()
	default:
		p.addError(p.curToken.Pos, "unsupported statement starting with %s", p.curToken.Type)
	}

	p.consumeSemicolons()
	if !p.peekTokenIs(token.EOF) && !p.curTokenIs(token.EOF) {
		p.addError(p.peekToken.Pos, "unexpected token %s after statement", p.peekToken.Type)
	}

	return stmt
}

func (p *Parser) consumeSemicolons() {
	for p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

func (p *Parser) parseSelectStatement() *ast.SelectStatement {
	p.depth++
	if p.depth > MaxParserDepth {
		p.addError(p.curToken.Pos, "maximum nesting depth exceeded")
		p.depth--
		return nil
	}
	defer func() { p.depth-- }()

	stmt := p.parseSelectCore()
	if stmt == nil {
		return nil
	}
	return p.parseUnions(stmt)
}

func (p *Parser) parseSelectCore() *ast.SelectStatement {
	stmt := &ast.SelectStatement{}

	if p.peekTokenIs(token.DISTINCT) {
		p.nextToken()
		stmt.Distinct = true
	}

	p.nextToken()
	stmt.Columns = p.parseSelectList()

	if !p.peekTokenIs(token.FROM) {
		p.addError(p.peekToken.Pos, "SELECT is missing its FROM clause")
		return stmt
	}
	p.nextToken()
	p.nextToken()
	stmt.From = p.parseTableExpression()

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		stmt.Where = p.parseExpression(lowest)
	}

	if p.peekTokenIs(token.GROUP) {
		p.nextToken()
		if p.expectPeek(token.BY) {
			p.nextToken()
			stmt.GroupBy = p.parseExpressionList()
		}
	}

	if p.peekTokenIs(token.HAVING) {
		p.nextToken()
		p.nextToken()
		stmt.Having = p.parseExpression(lowest)
	}

	if p.peekTokenIs(token.ORDER) {
		p.nextToken()
		if p.expectPeek(token.BY) {
			p.nextToken()
			stmt.OrderBy = p.parseOrderList()
		}
	}

	if p.peekTokenIs(token.LIMIT) {
		p.nextToken()
		p.nextToken()
		limit := &ast.LimitClause{Count: p.parseExpression(lowest)}
		if p.peekTokenIs(token.OFFSET) {
			p.nextToken()
			p.nextToken()
			limit.Offset = p.parseExpression(lowest)
		}
		stmt.Limit = limit
	} else if p.peekTokenIs(token.OFFSET) {
		p.nextToken()
		p.nextToken()
		stmt.Limit = &ast.LimitClause{Offset: p.parseExpression(lowest)}
	}

	return stmt
}

func (p *Parser) parseUnions(stmt *ast.SelectStatement) *ast.SelectStatement {
	for p.peekTokenIs(token.UNION) {
		p.nextToken()
		all := false
		if p.peekTokenIs(token.ALL) {
			p.nextToken()
			all = true
		}

		var right *ast.SelectStatement
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			if !p.expectPeek(token.SELECT) {
				return stmt
			}
			right = p.parseSelectStatement()
			if !p.expectPeek(token.RPAREN) {
				return stmt
			}
		} else {
			if !p.expectPeek(token.SELECT) {
				return stmt
			}
			right = p.parseSelectCore()
		}

		stmt.Unions = append(stmt.Unions, ast.UnionClause{All: all, Select: right})
	}
	return stmt
}

func (p *Parser) parseSelectList() []ast.SelectItem {
	items := make([]ast.SelectItem, 0)

	for {
		var expr ast.Expr
		if p.curTokenIs(token.STAR) {
			expr = &ast.StarExpr{}
		} else {
			expr = p.parseExpression(lowest)
		}

		alias := p.parseAliasIfPresent()
		items = append(items, ast.SelectItem{Expr: expr, Alias: alias})

		if len(items) >= MaxExpressionCount {
			p.addError(p.peekToken.Pos, "maximum expression count exceeded")
			break
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}

	return items
}

func (p *Parser) parseOrderList() []ast.OrderItem {
	items := make([]ast.OrderItem, 0)

	for {
		expr := p.parseExpression(lowest)
		direction := ast.Ascending
		if p.peekTokenIs(token.ASC) || p.peekTokenIs(token.DESC) {
			p.nextToken()
			if p.curTokenIs(token.DESC) {
				direction = ast.Descending
			}
		}
		items = append(items, ast.OrderItem{Expr: expr, Direction: direction})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}

	return items
}

func (p *Parser) parseExpressionList() []ast.Expr {
	exprs := []ast.Expr{p.parseExpression(lowest)}
	for p.peekTokenIs(token.COMMA) {
		if len(exprs) >= MaxExpressionCount {
			p.addError(p.peekToken.Pos, "maximum expression count exceeded")
			break
		}
		p.nextToken()
		p.nextToken()
		exprs = append(exprs, p.parseExpression(lowest))
	}
	return exprs
}

func (p *Parser) parseAliasIfPresent() string {
	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return ""
		}
		return p.curToken.Literal
	}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		return p.curToken.Literal
	}
	return ""
}

func (p *Parser) parseTableExpression() ast.TableExpr {
	left := p.parseTableFactor()

	for p.peekIsJoin() {
		p.nextToken()
		joinType := ast.JoinInner
		switch p.curToken.Type {
		case token.JOIN:
		case token.INNER:
			p.expectPeek(token.JOIN)
		case token.LEFT:
			joinType = ast.JoinLeft
			if p.peekTokenIs(token.OUTER) {
				p.nextToken()
			}
			p.expectPeek(token.JOIN)
		case token.RIGHT:
			joinType = ast.JoinRight
			if p.peekTokenIs(token.OUTER) {
				p.nextToken()
			}
			p.expectPeek(token.JOIN)
		case token.FULL:
			joinType = ast.JoinFull
			if p.peekTokenIs(token.OUTER) {
				p.nextToken()
			}
			p.expectPeek(token.JOIN)
		case token.CROSS:
			joinType = ast.JoinCross
			p.expectPeek(token.JOIN)
		}

		p.nextToken()
		right := p.parseTableFactor()
		join := &ast.JoinExpr{Left: left, Right: right, Type: joinType}
		if p.peekTokenIs(token.ON) {
			p.nextToken()
			p.nextToken()
			join.Condition.On = p.parseExpression(lowest)
		}
		left = join
	}

	return left
}

func (p *Parser) peekIsJoin() bool {
	switch p.peekToken.Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL, token.CROSS:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTableFactor() ast.TableExpr {
	switch p.curToken.Type {
	case token.IDENT:
		name := p.parseQualifiedName()
		tbl := &ast.TableName{Name: name}
		tbl.Alias = p.parseAliasIfPresent()
		return tbl
	case token.LPAREN:
		p.nextToken()
		if p.curTokenIs(token.SELECT) {
			sub := p.parseSelectStatement()
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
			return &ast.SubqueryTable{Select: sub, Alias: p.parseAliasIfPresent()}
		}
		nested := p.parseTableExpression()
		p.expectPeek(token.RPAREN)
		return nested
	default:
		p.addError(p.curToken.Pos, "unexpected token %s in FROM clause", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	return &ast.Identifier{Parts: []string{p.curToken.Literal}}
}

// parseQualifiedName eagerly consumes dotted names in table and DDL
// positions. Inside expressions qualification is handled by the DOT
// infix rule instead, so trailing wildcards like t.* parse cleanly.
func (p *Parser) parseQualifiedName() *ast.Identifier {
	parts := []string{p.curToken.Literal}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			break
		}
		parts = append(parts, p.curToken.Literal)
	}
	return &ast.Identifier{Parts: parts}
}

// Operator precedence levels, loosest first.
const (
	_ int = iota
	lowest
	precedenceOr
	precedenceAnd
	precedenceNot
	precedenceComparison
	precedenceSum
	precedenceProduct
	precedencePrefix
	precedenceCall
)

var precedences = map[token.Type]int{
	token.OR:      precedenceOr,
	token.AND:     precedenceAnd,
	token.NOT:     precedenceNot,
	token.EQ:      precedenceComparison,
	token.NEQ:     precedenceComparison,
	token.LT:      precedenceComparison,
	token.LTE:     precedenceComparison,
	token.GT:      precedenceComparison,
	token.GTE:     precedenceComparison,
	token.IN:      precedenceComparison,
	token.BETWEEN: precedenceComparison,
	token.LIKE:    precedenceComparison,
	token.IS:      precedenceComparison,
	token.PLUS:    precedenceSum,
	token.MINUS:   precedenceSum,
	token.STAR:    precedenceProduct,
	token.SLASH:   precedenceProduct,
	token.PERCENT: precedenceProduct,
	token.LPAREN:  precedenceCall,
	token.DOT:     precedenceCall,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowest
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowest
}

func (p *Parser) parseExpression(precedence int) ast.Expr {
	p.depth++
	if p.depth > MaxParserDepth {
		p.addError(p.curToken.Pos, "expression nesting too deep")
		p.depth--
		return nil
	}
	defer func() { p.depth-- }()

	left := p.parsePrefixExpression()
	if left == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		p.nextToken()
		left = p.parseInfixExpression(left)
	}

	return left
}

func (p *Parser) parsePrefixExpression() ast.Expr {
	switch p.curToken.Type {
	case token.IDENT:
		return p.parseIdentifier()
	case token.NUMBER:
		return &ast.NumericLiteral{Value: p.curToken.Literal}
	case token.STRING:
		return &ast.StringLiteral{Value: p.curToken.Literal}
	case token.TRUE:
		return &ast.BooleanLiteral{Value: true}
	case token.FALSE:
		return &ast.BooleanLiteral{Value: false}
	case token.NULL:
		return &ast.NullLiteral{}
	case token.STAR:
		return &ast.StarExpr{}
	case token.MINUS:
		p.nextToken()
		return &ast.UnaryExpr{Operator: "-", Expr: p.parseExpression(precedencePrefix)}
	case token.NOT:
		if p.peekTokenIs(token.EXISTS) {
			p.nextToken()
			return p.parseExistsExpression(true)
		}
		p.nextToken()
		return &ast.UnaryExpr{Operator: "NOT", Expr: p.parseExpression(precedenceNot)}
	case token.EXISTS:
		return p.parseExistsExpression(false)
	case token.LPAREN:
		p.nextToken()
		if p.curTokenIs(token.SELECT) {
			sub := p.parseSelectStatement()
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
			return &ast.SubqueryExpr{Select: sub}
		}
		expr := p.parseExpression(lowest)
		if !p.expectPeek(token.RPAREN) {
			return expr
		}
		return expr
	default:
		p.addError(p.curToken.Pos, "unexpected token %s in expression", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parseExistsExpression(negate bool) ast.Expr {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.SELECT) {
		return nil
	}
	sub := p.parseSelectStatement()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return &ast.ExistsExpr{Not: negate, Subquery: sub}
}

func (p *Parser) parseInfixExpression(left ast.Expr) ast.Expr {
	switch p.curToken.Type {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.AND, token.OR:
		operator := normalizeOperator(p.curToken)
		precedence := p.curPrecedence()
		p.nextToken()
		right := p.parseExpression(precedence)
		return &ast.BinaryExpr{Left: left, Operator: operator, Right: right}
	case token.IN:
		return p.parseInExpression(left, false)
	case token.LIKE:
		return p.parseLikeExpression(left, false)
	case token.BETWEEN:
		return p.parseBetweenExpression(left, false)
	case token.IS:
		return p.parseIsNullExpression(left)
	case token.NOT:
		switch {
		case p.peekTokenIs(token.IN):
			p.nextToken()
			return p.parseInExpression(left, true)
		case p.peekTokenIs(token.LIKE):
			p.nextToken()
			return p.parseLikeExpression(left, true)
		case p.peekTokenIs(token.BETWEEN):
			p.nextToken()
			return p.parseBetweenExpression(left, true)
		default:
			p.addError(p.peekToken.Pos, "unexpected token %s after NOT", p.peekToken.Type)
			return left
		}
	case token.LPAREN:
		return p.parseFuncCall(left)
	case token.DOT:
		ident, ok := left.(*ast.Identifier)
		if !ok {
			p.addError(p.curToken.Pos, "unexpected '.' after non-identifier")
			return left
		}
		p.nextToken()
		if p.curTokenIs(token.STAR) {
			return &ast.StarExpr{Table: ident}
		}
		if !p.curTokenIs(token.IDENT) {
			p.addError(p.curToken.Pos, "expected identifier after '.', got %s", p.curToken.Type)
			return left
		}
		parts := append(append([]string{}, ident.Parts...), p.curToken.Literal)
		return &ast.Identifier{Parts: parts}
	default:
		return left
	}
}

func normalizeOperator(tok token.Token) string {
	switch tok.Type {
	case token.AND, token.OR:
		return strings.ToUpper(tok.Literal)
	default:
		return tok.Literal
	}
}

func (p *Parser) parseFuncCall(left ast.Expr) ast.Expr {
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.addError(p.curToken.Pos, "unexpected '(' after non-identifier")
		return left
	}
	call := &ast.FuncCall{Name: *ident}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return call
	}
	p.nextToken()
	if p.curTokenIs(token.DISTINCT) {
		call.Distinct = true
		p.nextToken()
	}
	call.Args = append(call.Args, p.parseFuncArg())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		call.Args = append(call.Args, p.parseFuncArg())
	}
	p.expectPeek(token.RPAREN)
	return call
}

func (p *Parser) parseFuncArg() ast.Expr {
	if p.curTokenIs(token.STAR) {
		return &ast.StarExpr{}
	}
	return p.parseExpression(lowest)
}

func (p *Parser) parseInExpression(left ast.Expr, not bool) ast.Expr {
	expr := &ast.InExpr{Expr: left, Not: not}
	if !p.expectPeek(token.LPAREN) {
		return expr
	}
	p.nextToken()
	if p.curTokenIs(token.SELECT) {
		expr.Subquery = p.parseSelectStatement()
		p.expectPeek(token.RPAREN)
		return expr
	}
	expr.List = append(expr.List, p.parseExpression(lowest))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		expr.List = append(expr.List, p.parseExpression(lowest))
	}
	p.expectPeek(token.RPAREN)
	return expr
}

func (p *Parser) parseLikeExpression(left ast.Expr, not bool) ast.Expr {
	p.nextToken()
	pattern := p.parseExpression(precedenceComparison)
	return &ast.LikeExpr{Expr: left, Not: not, Pattern: pattern}
}

func (p *Parser) parseBetweenExpression(left ast.Expr, not bool) ast.Expr {
	between := &ast.BetweenExpr{Expr: left, Not: not}
	p.nextToken()
	between.Lower = p.parseExpression(precedenceComparison)
	if !p.expectPeek(token.AND) {
		return between
	}
	p.nextToken()
	between.Upper = p.parseExpression(precedenceComparison)
	return between
}

func (p *Parser) parseIsNullExpression(left ast.Expr) ast.Expr {
	not := false
	if p.peekTokenIs(token.NOT) {
		p.nextToken()
		not = true
	}
	if !p.expectPeek(token.NULL) {
		return left
	}
	return &ast.IsNullExpr{Expr: left, Not: not}
}

func (p *Parser) parseInsertStatement() *ast.InsertStatement {
	stmt := &ast.InsertStatement{}

	if !p.peekTokenIs(token.INTO) {
		p.addError(p.peekToken.Pos, "INSERT is missing its INTO clause")
		return stmt
	}
	p.nextToken()
	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Table = &ast.TableName{Name: p.parseQualifiedName()}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		p.nextToken()
		stmt.Columns = append(stmt.Columns, p.parseQualifiedName())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			stmt.Columns = append(stmt.Columns, p.parseQualifiedName())
		}
		if !p.expectPeek(token.RPAREN) {
			return stmt
		}
	}

	if !p.expectPeek(token.VALUES) {
		return stmt
	}
	for {
		if !p.expectPeek(token.LPAREN) {
			return stmt
		}
		p.nextToken()
		row := []ast.Expr{p.parseExpression(lowest)}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			row = append(row, p.parseExpression(lowest))
		}
		if !p.expectPeek(token.RPAREN) {
			return stmt
		}
		stmt.Rows = append(stmt.Rows, row)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return stmt
}

func (p *Parser) parseUpdateStatement() *ast.UpdateStatement {
	stmt := &ast.UpdateStatement{}

	p.nextToken()
	stmt.Table = p.parseTableFactor()

	if !p.peekTokenIs(token.SET) {
		p.addError(p.peekToken.Pos, "UPDATE is missing its SET clause")
		return stmt
	}
	p.nextToken()
	p.nextToken()
	stmt.Assignments = append(stmt.Assignments, p.parseAssignment())
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		stmt.Assignments = append(stmt.Assignments, p.parseAssignment())
	}

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		stmt.Where = p.parseExpression(lowest)
	}
	return stmt
}

func (p *Parser) parseAssignment() ast.Assignment {
	column := p.parseQualifiedName()
	if !p.expectPeek(token.EQ) {
		return ast.Assignment{Column: column}
	}
	p.nextToken()
	return ast.Assignment{Column: column, Value: p.parseExpression(lowest)}
}

func (p *Parser) parseDeleteStatement() *ast.DeleteStatement {
	stmt := &ast.DeleteStatement{}

	if !p.peekTokenIs(token.FROM) {
		p.addError(p.peekToken.Pos, "DELETE is missing its FROM clause")
		return stmt
	}
	p.nextToken()
	p.nextToken()
	stmt.Table = p.parseTableFactor()

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		stmt.Where = p.parseExpression(lowest)
	}
	return stmt
}

func (p *Parser) parseCreateTableStatement() *ast.CreateTableStatement {
	stmt := &ast.CreateTableStatement{}

	if !p.peekTokenIs(token.TABLE) {
		p.addError(p.peekToken.Pos, "CREATE is missing its TABLE clause")
		return stmt
	}
	p.nextToken()

	if p.peekTokenIs(token.IF) {
		p.nextToken()
		if !p.expectPeek(token.NOT) {
			return stmt
		}
		if !p.expectPeek(token.EXISTS) {
			return stmt
		}
		stmt.IfNotExists = true
	}

	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Name = p.parseQualifiedName()

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		for {
			if !p.expectPeek(token.IDENT) {
				return stmt
			}
			col := ast.ColumnDef{Name: p.parseIdentifier()}
			col.Type = p.parseColumnType()
			stmt.Columns = append(stmt.Columns, col)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if !p.expectPeek(token.RPAREN) {
			return stmt
		}
	}

	return stmt
}

// parseColumnType consumes a type name with optional length arguments,
// e.g. VARCHAR(255) or DECIMAL(10, 2), plus trailing column constraints
// like NOT NULL which are recorded nowhere.
func (p *Parser) parseColumnType() string {
	if !p.peekTokenIs(token.IDENT) {
		return ""
	}
	p.nextToken()
	typ := strings.ToUpper(p.curToken.Literal)
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		args := make([]string, 0, 2)
		for p.peekTokenIs(token.NUMBER) {
			p.nextToken()
			args = append(args, p.curToken.Literal)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		if !p.expectPeek(token.RPAREN) {
			return typ
		}
		typ += "(" + strings.Join(args, ",") + ")"
	}
	for !p.peekTokenIs(token.COMMA) && !p.peekTokenIs(token.RPAREN) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
	}
	return typ
}

func (p *Parser) parseDropTableStatement() *ast.DropTableStatement {
	stmt := &ast.DropTableStatement{}

	if !p.peekTokenIs(token.TABLE) {
		p.addError(p.peekToken.Pos, "DROP is missing its TABLE clause")
		return stmt
	}
	p.nextToken()

	if p.peekTokenIs(token.IF) {
		p.nextToken()
		if !p.expectPeek(token.EXISTS) {
			return stmt
		}
		stmt.IfExists = true
	}

	if !p.expectPeek(token.IDENT) {
		return stmt
	}
	stmt.Name = p.parseQualifiedName()

	return stmt
}
