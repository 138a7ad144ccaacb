package units

import (
	"strings"

	"github.com/sdforge/sdengine/errs"
)

// ParseUnitExpr parses a unit declaration string (e.g. "kg*m/s^2",
// "widgets/tribble", "1") into a Vector. Any identifier not already known
// to the caller is simply a base symbol; units has no notion of a "known"
// unit registry of its own; it treats every bare identifier as a fresh
// generator, per §4.3 ("unknown base symbols are treated as fresh
// generators and carried through unchanged").
func ParseUnitExpr(src, model, variable string) (Vector, *errs.Error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" || trimmed == "1" {
		return Dimensionless(), nil
	}
	p := &unitParser{lex: newUnitLexer(trimmed), model: model, variable: variable}
	if err := p.advance(); err != nil {
		return nil, err
	}
	v, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != uTokEOF {
		return nil, errs.Newf(errs.UnitDefinitionErrors, "unexpected trailing token %q in unit expression", p.cur.text).
			At(model, variable, p.cur.start, p.cur.end)
	}
	return v, nil
}

type unitTokenKind int

const (
	uTokEOF unitTokenKind = iota
	uTokIdent
	uTokNumber
	uTokStar
	uTokSlash
	uTokCaret
	uTokLParen
	uTokRParen
)

type unitToken struct {
	kind       unitTokenKind
	text       string
	num        int
	start, end int
}

type unitLexer struct {
	src string
	pos int
}

func newUnitLexer(src string) *unitLexer { return &unitLexer{src: src} }

func (l *unitLexer) next(model, variable string) (unitToken, *errs.Error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return unitToken{kind: uTokEOF, start: l.pos, end: l.pos}, nil
	}
	start := l.pos
	c := l.src[l.pos]
	single := func(k unitTokenKind) (unitToken, *errs.Error) {
		l.pos++
		return unitToken{kind: k, text: l.src[start:l.pos], start: start, end: l.pos}, nil
	}
	switch c {
	case '*':
		return single(uTokStar)
	case '/':
		return single(uTokSlash)
	case '^':
		return single(uTokCaret)
	case '(':
		return single(uTokLParen)
	case ')':
		return single(uTokRParen)
	}
	if c >= '0' && c <= '9' {
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
		text := l.src[start:l.pos]
		n := 0
		for _, d := range text {
			n = n*10 + int(d-'0')
		}
		return unitToken{kind: uTokNumber, text: text, num: n, start: start, end: l.pos}, nil
	}
	if isUnitIdentStart(c) {
		for l.pos < len(l.src) && isUnitIdentCont(l.src[l.pos]) {
			l.pos++
		}
		return unitToken{kind: uTokIdent, text: l.src[start:l.pos], start: start, end: l.pos}, nil
	}
	l.pos++
	return unitToken{}, errs.Newf(errs.UnitDefinitionErrors, "invalid character %q in unit expression", c).
		At(model, variable, start, l.pos)
}

func isUnitIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isUnitIdentCont(c byte) bool {
	return isUnitIdentStart(c) || (c >= '0' && c <= '9')
}

type unitParser struct {
	lex              *unitLexer
	cur              unitToken
	model, variable  string
}

func (p *unitParser) advance() *errs.Error {
	tok, err := p.lex.next(p.model, p.variable)
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *unitParser) parseMul() (Vector, *errs.Error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == uTokStar || p.cur.kind == uTokSlash {
		div := p.cur.kind == uTokSlash
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		if div {
			left = left.Div(right)
		} else {
			left = left.Mul(right)
		}
	}
	return left, nil
}

func (p *unitParser) parsePow() (Vector, *errs.Error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == uTokCaret {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != uTokNumber {
			return nil, errs.New(errs.UnitDefinitionErrors, "exponent must be an integer literal").
				At(p.model, p.variable, p.cur.start, p.cur.end)
		}
		exp := p.cur.num
		if err := p.advance(); err != nil {
			return nil, err
		}
		return base.Pow(exp), nil
	}
	return base, nil
}

func (p *unitParser) parseAtom() (Vector, *errs.Error) {
	switch p.cur.kind {
	case uTokNumber:
		if p.cur.num != 1 {
			return nil, errs.Newf(errs.UnitDefinitionErrors, "unexpected numeric literal %q in unit expression", p.cur.text).
				At(p.model, p.variable, p.cur.start, p.cur.end)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Dimensionless(), nil
	case uTokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return Vector{name: 1}, nil
	case uTokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != uTokRParen {
			return nil, errs.New(errs.UnitDefinitionErrors, "expected ')' in unit expression").
				At(p.model, p.variable, p.cur.start, p.cur.end)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, errs.Newf(errs.UnitDefinitionErrors, "unexpected token %q in unit expression", p.cur.text).
		At(p.model, p.variable, p.cur.start, p.cur.end)
}
