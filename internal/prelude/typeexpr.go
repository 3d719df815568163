package prelude

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/zsakowitz/rewrites-sub000/internal/config"
	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/pipeline"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokInt
	tokQuestion  // ?
	tokAt        // @
	tokLParen    // (
	tokRParen    // )
	tokLBracket  // [
	tokRBracket  // ]
	tokSemicolon // ;
	tokComma     // ,
	tokLt        // <
	tokGt        // >
	tokLe        // <=
	tokIllegal
)

type token struct {
	typ    tokenType
	lexeme string
	column int // 0-based offset into the expression
}

// typeLexer splits one type expression into tokens.
type typeLexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
}

func newTypeLexer(input string) *typeLexer {
	l := &typeLexer{input: input}
	l.readChar()
	return l
}

func (l *typeLexer) readChar() {
	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.readPosition += w
}

func (l *typeLexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *typeLexer) next() token {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
	start := l.position
	single := func(t tokenType) token {
		tok := token{typ: t, lexeme: string(l.ch), column: start}
		l.readChar()
		return tok
	}
	switch {
	case l.ch == 0:
		return token{typ: tokEOF, column: start}
	case l.ch == '?':
		return single(tokQuestion)
	case l.ch == '@':
		return single(tokAt)
	case l.ch == '(':
		return single(tokLParen)
	case l.ch == ')':
		return single(tokRParen)
	case l.ch == '[':
		return single(tokLBracket)
	case l.ch == ']':
		return single(tokRBracket)
	case l.ch == ';':
		return single(tokSemicolon)
	case l.ch == ',':
		return single(tokComma)
	case l.ch == '>':
		return single(tokGt)
	case l.ch == '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token{typ: tokLe, lexeme: "<=", column: start}
		}
		return single(tokLt)
	case l.ch == '-' || unicode.IsDigit(l.ch):
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
		return token{typ: tokInt, lexeme: l.input[start:l.position], column: start}
	case isIdentStart(l.ch):
		for isIdentStart(l.ch) || unicode.IsDigit(l.ch) {
			l.readChar()
		}
		return token{typ: tokIdent, lexeme: l.input[start:l.position], column: start}
	}
	return single(tokIllegal)
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

// typeEnv is what a type expression may refer to: the generic parameters
// of the enclosing declaration, named types of a scope and the extension
// types of a registry.
type typeEnv struct {
	params  map[string]*typesystem.Param
	resolve func(name string) (typesystem.Type, bool)
	adts    *typesystem.AdtRegistry
}

// typeParser is a recursive descent parser over one type expression.
//
//	type  := '?' type | '@' ident? '(' type ')' | array | tuple | named
//	array := '[' ']' | '[' type ']' | '[' type ';' '<=' const ']'
//	       | '[' type ';' const (',' const)* ']'
//	tuple := '(' ')' | '(' type ')' | '(' type ',' (type (',' type)*)? ','? ')'
//	named := ident ('<' (type | const) (',' (type | const))* '>')?
type typeParser struct {
	env  *typeEnv
	l    *typeLexer
	cur  token
	peek token
	base diagnostics.Position
}

// parseType parses expr in env. Errors point into the manifest at file.
func parseType(env *typeEnv, expr TypeExpr, file string) (typesystem.Type, error) {
	p := &typeParser{
		env:  env,
		l:    newTypeLexer(expr.Src),
		base: diagnostics.Position{File: file, Line: expr.Line, Column: expr.Column},
	}
	p.nextToken()
	p.nextToken()
	if p.cur.typ == tokEOF {
		return nil, p.errorf(diagnostics.ErrP001, "empty type")
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokEOF {
		return nil, p.errorf(diagnostics.ErrP001, "unexpected %q after type", p.cur.lexeme)
	}
	return t, nil
}

func (p *typeParser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.next()
}

func (p *typeParser) errorf(code diagnostics.ErrorCode, format string, args ...any) error {
	pos := p.base
	if pos.IsValid() {
		pos.Column += p.cur.column
	}
	return diagnostics.Errorf(code, pos, format, args...)
}

func (p *typeParser) expect(t tokenType, what string) error {
	if p.cur.typ != t {
		if p.cur.typ == tokEOF {
			return p.errorf(diagnostics.ErrP001, "expected %s, got end of type", what)
		}
		return p.errorf(diagnostics.ErrP001, "expected %s, got %q", what, p.cur.lexeme)
	}
	p.nextToken()
	return nil
}

func (p *typeParser) parseType() (typesystem.Type, error) {
	switch p.cur.typ {
	case tokQuestion:
		p.nextToken()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return typesystem.NewOption(inner), nil
	case tokAt:
		return p.parseSym()
	case tokLBracket:
		return p.parseArray()
	case tokLParen:
		return p.parseTuple()
	case tokIdent:
		return p.parseNamed()
	case tokEOF:
		return nil, p.errorf(diagnostics.ErrP001, "expected a type, got end of type")
	}
	return nil, p.errorf(diagnostics.ErrP001, "expected a type, got %q", p.cur.lexeme)
}

func (p *typeParser) parseSym() (typesystem.Type, error) {
	p.nextToken()
	tag, tagged := "", false
	if p.cur.typ == tokIdent {
		tag, tagged = p.cur.lexeme, true
		p.nextToken()
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	payload, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	if tagged {
		return typesystem.NewTaggedSym(tag, payload), nil
	}
	return typesystem.NewSym(payload), nil
}

func (p *typeParser) parseArray() (typesystem.Type, error) {
	p.nextToken()
	if p.cur.typ == tokRBracket {
		p.nextToken()
		return typesystem.ArrayEmpty, nil
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.cur.typ == tokRBracket {
		p.nextToken()
		return typesystem.NewArrayUnsized(elem), nil
	}
	if err := p.expect(tokSemicolon, "; or ]"); err != nil {
		return nil, err
	}
	if p.cur.typ == tokLe {
		p.nextToken()
		limit, err := p.parseConst(typesystem.Int)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRBracket, "]"); err != nil {
			return nil, err
		}
		return typesystem.NewArrayCapped(elem, limit), nil
	}
	var dims []*typesystem.Const
	for {
		d, err := p.parseConst(typesystem.Int)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
		if p.cur.typ != tokComma {
			break
		}
		p.nextToken()
	}
	if err := p.expect(tokRBracket, "]"); err != nil {
		return nil, err
	}
	return typesystem.NewArrayFixed(elem, dims...), nil
}

func (p *typeParser) parseTuple() (typesystem.Type, error) {
	p.nextToken()
	if p.cur.typ == tokRParen {
		p.nextToken()
		return typesystem.NewTuple(), nil
	}
	first, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.cur.typ == tokRParen {
		p.nextToken()
		return first, nil
	}
	if err := p.expect(tokComma, ", or )"); err != nil {
		return nil, err
	}
	elems := []typesystem.Type{first}
	for p.cur.typ != tokRParen {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
		if p.cur.typ != tokComma {
			break
		}
		p.nextToken()
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return typesystem.NewTuple(elems...), nil
}

func (p *typeParser) parseNamed() (typesystem.Type, error) {
	name := p.cur.lexeme
	if param, ok := p.env.params[name]; ok {
		if param.IsConst() {
			return nil, p.errorf(diagnostics.ErrP001, "%s is a const parameter, not a type", name)
		}
		p.nextToken()
		return typesystem.NewParamType(param), nil
	}
	if p.peek.typ != tokLt && p.env.resolve != nil {
		if t, ok := p.env.resolve(name); ok {
			p.nextToken()
			return t, nil
		}
	}
	id, ok := p.env.adts.Lookup(name)
	if !ok {
		return nil, p.errorf(diagnostics.ErrT003, "unknown type %s", name)
	}
	def := p.env.adts.Def(id)
	if def.IsPlain() {
		p.nextToken()
		if p.cur.typ == tokLt {
			return nil, p.errorf(diagnostics.ErrP001, "%s takes no generic arguments", name)
		}
		return p.env.adts.Plain(id), nil
	}
	p.nextToken()
	var (
		types  []typesystem.Type
		consts []*typesystem.Const
	)
	want := len(def.Generics.Types) + len(def.Generics.Consts)
	if want > 0 {
		if err := p.expect(tokLt, "< after "+name); err != nil {
			return nil, err
		}
		for i := 0; i < want; i++ {
			if i > 0 {
				if err := p.expect(tokComma, ","); err != nil {
					return nil, err
				}
			}
			if i < len(def.Generics.Types) {
				t, err := p.parseType()
				if err != nil {
					return nil, err
				}
				types = append(types, t)
				continue
			}
			c, err := p.parseConst(def.Generics.Consts[i-len(def.Generics.Types)].Ty)
			if err != nil {
				return nil, err
			}
			consts = append(consts, c)
		}
		if err := p.expect(tokGt, ">"); err != nil {
			return nil, err
		}
	}
	t, err := p.env.adts.New(id, types, consts)
	if err != nil {
		return nil, p.errorf(diagnostics.ErrP001, "%v", err)
	}
	return t, nil
}

// parseConst reads a literal or a const parameter of type ty.
func (p *typeParser) parseConst(ty typesystem.Type) (*typesystem.Const, error) {
	tok := p.cur
	switch {
	case tok.typ == tokInt && ty == typesystem.Int:
		n, err := strconv.ParseInt(tok.lexeme, 10, 64)
		if err != nil {
			return nil, p.errorf(diagnostics.ErrP001, "invalid integer %q", tok.lexeme)
		}
		p.nextToken()
		return typesystem.IntConst(n), nil
	case tok.typ == tokIdent && ty == typesystem.Bool && (tok.lexeme == "true" || tok.lexeme == "false"):
		p.nextToken()
		return typesystem.BoolConst(tok.lexeme == "true"), nil
	case tok.typ == tokIdent:
		param, ok := p.env.params[tok.lexeme]
		if !ok || !param.IsConst() {
			return nil, p.errorf(diagnostics.ErrP001, "%s is not a const parameter", tok.lexeme)
		}
		if param.ConstType() != ty {
			return nil, p.errorf(diagnostics.ErrP001, "%s is a %s parameter, expected %s", tok.lexeme, param.ConstType(), ty)
		}
		p.nextToken()
		return typesystem.ParamConst(param), nil
	}
	return nil, p.errorf(diagnostics.ErrP001, "expected a %s const, got %q", ty, tok.lexeme)
}

// constType maps the name written for a const generic to its type.
func constType(name string) (typesystem.Type, error) {
	switch name {
	case config.IntTypeName:
		return typesystem.Int, nil
	case config.BoolTypeName:
		return typesystem.Bool, nil
	case config.NumTypeName:
		return typesystem.Num, nil
	}
	return nil, fmt.Errorf("unknown const type %s", name)
}

// ParseType reads a type written outside any manifest, such as on a
// command line, against the types installed in ctx.
func ParseType(ctx *pipeline.PipelineContext, src string) (typesystem.Type, error) {
	env := &typeEnv{resolve: ctx.Scope.ResolveType, adts: ctx.Adts}
	return parseType(env, TypeExpr{Src: src}, "")
}
