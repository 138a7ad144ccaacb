package parser

import (
	"strings"

	"github.com/sdforge/sdengine/errs"
)

// Origin identifies where an equation came from, for error locators.
type Origin struct {
	Model    string
	Variable string
}

// Parse tokenizes and parses an equation string into an AST. Errors carry
// byte offsets into src and are tagged with one of the stable lexical/parse
// kinds from spec.md §4.2.
func Parse(src string, origin Origin) (Expr, *errs.Error) {
	if strings.TrimSpace(src) == "" {
		return nil, errs.New(errs.EmptyEquation, "equation is empty").At(origin.Model, origin.Variable, 0, 0)
	}
	p := &parser{lex: newLexer(src, origin.Model, origin.Variable), origin: origin}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, errs.Newf(errs.ExtraToken, "unexpected trailing token %q", p.cur.text).
			At(origin.Model, origin.Variable, p.cur.start, p.cur.end)
	}
	return expr, nil
}

type parser struct {
	lex    *lexer
	cur    token
	origin Origin
}

func (p *parser) advance() *errs.Error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) unexpected() *errs.Error {
	if p.cur.kind == tokEOF {
		return errs.New(errs.UnrecognizedEof, "unexpected end of equation").
			At(p.origin.Model, p.origin.Variable, p.cur.start, p.cur.end)
	}
	return errs.Newf(errs.UnrecognizedToken, "unexpected token %q", p.cur.text).
		At(p.origin.Model, p.origin.Variable, p.cur.start, p.cur.end)
}

func (p *parser) expect(k tokenKind, label string) (token, *errs.Error) {
	if p.cur.kind != k {
		if p.cur.kind == tokEOF {
			return token{}, errs.Newf(errs.UnrecognizedEof, "expected %s, got end of equation", label).
				At(p.origin.Model, p.origin.Variable, p.cur.start, p.cur.end)
		}
		return token{}, errs.Newf(errs.UnrecognizedToken, "expected %s, got %q", label, p.cur.text).
			At(p.origin.Model, p.origin.Variable, p.cur.start, p.cur.end)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return tok, nil
}

func (p *parser) parseExpr() (Expr, *errs.Error) {
	if p.cur.kind == tokIf {
		start := p.cur.start
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokThen, "'then'"); err != nil {
			return nil, err
		}
		thenE, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokElse, "'else'"); err != nil {
			return nil, err
		}
		elseE, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		_, end := elseE.Span()
		return If{span: span{start, end}, Cond: cond, Then: thenE, Else: elseE}, nil
	}
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, *errs.Error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		s, _ := left.Span()
		_, e := right.Span()
		left = Binary{span: span{s, e}, Op: Or, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, *errs.Error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		s, _ := left.Span()
		_, e := right.Span()
		left = Binary{span: span{s, e}, Op: And, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, *errs.Error) {
	if p.cur.kind == tokNot {
		start := p.cur.start
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		_, end := x.Span()
		return Unary{span: span{start, end}, Op: Not, X: x}, nil
	}
	return p.parseCmp()
}

var cmpOps = map[tokenKind]BinaryOp{
	tokEq: Eq, tokNeq: Neq, tokLt: Lt, tokLte: Lte, tokGt: Gt, tokGte: Gte,
}

func (p *parser) parseCmp() (Expr, *errs.Error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if op, ok := cmpOps[p.cur.kind]; ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		s, _ := left.Span()
		_, e := right.Span()
		left = Binary{span: span{s, e}, Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAdd() (Expr, *errs.Error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := Add
		if p.cur.kind == tokMinus {
			op = Sub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		s, _ := left.Span()
		_, e := right.Span()
		left = Binary{span: span{s, e}, Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseMul() (Expr, *errs.Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash || p.cur.kind == tokMod {
		var op BinaryOp
		switch p.cur.kind {
		case tokStar:
			op = Mul
		case tokSlash:
			op = Div
		default:
			op = Mod
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		s, _ := left.Span()
		_, e := right.Span()
		left = Binary{span: span{s, e}, Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, *errs.Error) {
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		start := p.cur.start
		op := Positive
		if p.cur.kind == tokMinus {
			op = Negative
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		_, end := x.Span()
		return Unary{span: span{start, end}, Op: op, X: x}, nil
	}
	return p.parsePow()
}

func (p *parser) parsePow() (Expr, *errs.Error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokCaret {
		if err := p.advance(); err != nil {
			return nil, err
		}
		exp, err := p.parseUnary() // right-associative
		if err != nil {
			return nil, err
		}
		s, _ := base.Span()
		_, e := exp.Span()
		return Binary{span: span{s, e}, Op: Pow, L: base, R: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Expr, *errs.Error) {
	switch p.cur.kind {
	case tokNumber:
		t := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Const{span: span{t.start, t.end}, Value: t.num}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent, tokQuotedIdent:
		return p.parseIdentOrCall()
	}
	return nil, p.unexpected()
}

func (p *parser) parseIdentOrCall() (Expr, *errs.Error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []Expr
		if p.cur.kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.kind == tokComma {
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
		}
		closeTok, err := p.expect(tokRParen, "')'")
		if err != nil {
			return nil, err
		}
		return Call{span: span{t.start, closeTok.end}, Func: t.text, Args: args}, nil
	}
	if p.cur.kind == tokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var subs []Expr
		for {
			sub, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
			if p.cur.kind == tokComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		closeTok, err := p.expect(tokRBracket, "']'")
		if err != nil {
			return nil, err
		}
		return Var{span: span{t.start, closeTok.end}, Name: t.text, Subscripts: subs}, nil
	}
	return Var{span: span{t.start, t.end}, Name: t.text}, nil
}
