package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders an AST back into equation source. It is the right-inverse
// used by §8 invariant 3 (parse(format(ast)) == ast up to whitespace
// normalization): re-parsing Format's output always reproduces a
// structurally identical AST, though Format does not attempt to reproduce
// the original token spacing or number formatting.
func Format(e Expr) string {
	var b strings.Builder
	formatExpr(&b, e, 0)
	return b.String()
}

// precedence levels, lowest to highest, used to decide when Format needs
// parens to preserve structure on re-parse.
const (
	precIf = iota
	precOr
	precAnd
	precNot
	precCmp
	precAdd
	precMul
	precUnary
	precPow
	precAtom
)

func binPrec(op BinaryOp) int {
	switch op {
	case Or:
		return precOr
	case And:
		return precAnd
	case Eq, Neq, Lt, Lte, Gt, Gte:
		return precCmp
	case Add, Sub:
		return precAdd
	case Mul, Div, Mod:
		return precMul
	case Pow:
		return precPow
	}
	return precAtom
}

func binSymbol(op BinaryOp) string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "mod"
	case Pow:
		return "^"
	case Eq:
		return "="
	case Neq:
		return "<>"
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Gt:
		return ">"
	case Gte:
		return ">="
	case And:
		return "and"
	case Or:
		return "or"
	}
	return "?"
}

func formatExpr(b *strings.Builder, e Expr, parentPrec int) {
	switch v := e.(type) {
	case Const:
		b.WriteString(formatNumber(v.Value))
	case Var:
		b.WriteString(identText(v.Name, false))
		if len(v.Subscripts) > 0 {
			b.WriteByte('[')
			for i, s := range v.Subscripts {
				if i > 0 {
					b.WriteString(", ")
				}
				formatExpr(b, s, precIf)
			}
			b.WriteByte(']')
		}
	case Call:
		b.WriteString(identText(v.Func, true))
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			formatExpr(b, a, precIf)
		}
		b.WriteByte(')')
	case Unary:
		prec := precUnary
		if v.Op == Not { // 'not' binds looser than comparisons, like the parser's parseNot
			prec = precNot
		}
		wrap := prec < parentPrec
		if wrap {
			b.WriteByte('(')
		}
		switch v.Op {
		case Positive:
			b.WriteByte('+')
		case Negative:
			b.WriteByte('-')
		case Not:
			b.WriteString("not ")
		}
		formatExpr(b, v.X, prec)
		if wrap {
			b.WriteByte(')')
		}
	case Binary:
		prec := binPrec(v.Op)
		wrap := prec < parentPrec
		if wrap {
			b.WriteByte('(')
		}
		// Left-assoc ops need a strictly-higher prec on the right to force
		// parens on equal precedence; right-assoc Pow needs it on the left;
		// non-associative comparisons need it on both sides.
		leftPrec, rightPrec := prec, prec+1
		switch {
		case v.Op == Pow:
			leftPrec, rightPrec = prec+1, prec
		case prec == precCmp:
			leftPrec = prec + 1
		}
		formatExpr(b, v.L, leftPrec)
		b.WriteByte(' ')
		b.WriteString(binSymbol(v.Op))
		b.WriteByte(' ')
		formatExpr(b, v.R, rightPrec)
		if wrap {
			b.WriteByte(')')
		}
	case If:
		wrap := precIf < parentPrec
		if wrap {
			b.WriteByte('(')
		}
		b.WriteString("if ")
		formatExpr(b, v.Cond, precIf)
		b.WriteString(" then ")
		formatExpr(b, v.Then, precIf)
		b.WriteString(" else ")
		formatExpr(b, v.Else, precIf)
		if wrap {
			b.WriteByte(')')
		}
	default:
		b.WriteString(fmt.Sprintf("<?%T?>", e))
	}
}

// identText renders name so the lexer reads it back as one identifier:
// bare when it already lexes that way, double-quoted otherwise ("mod"
// lexes as an identifier only when a '(' follows, as in a call).
func identText(name string, isCall bool) string {
	bare := name != "" && isIdentStart(name[0])
	for i := 1; bare && i < len(name); i++ {
		bare = isIdentCont(name[i]) || (name[i] == '.' && i+1 < len(name) && isIdentStart(name[i+1]))
	}
	if kind, kw := keywords[strings.ToLower(name)]; bare && (!kw || (isCall && kind == tokMod)) {
		return name
	}
	return `"` + name + `"`
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
