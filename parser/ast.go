// Package parser tokenizes and parses SD equation strings into an AST with
// per-node source byte offsets, per spec.md §4.2. It is grounded on the
// minimal Expr/Op2/Op1 shape kept in original_source/engine-v2/src/ast.rs,
// extended with Go-idiomatic offset tracking and a Call/Subscript form.
package parser

// BinaryOp enumerates the binary operators the grammar recognizes.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Pow
	Eq
	Neq
	Lt
	Lte
	Gt
	Gte
	And
	Or
)

// UnaryOp enumerates the unary operators the grammar recognizes.
type UnaryOp int

const (
	Positive UnaryOp = iota
	Negative
	Not
)

// Expr is the tagged union of AST node variants. Every node carries its
// byte span [Start, End) into the original equation string.
type Expr interface {
	Span() (start, end int)
	isExpr()
}

type span struct{ Start, End int }

func (s span) Span() (int, int) { return s.Start, s.End }

// Const is a numeric literal.
type Const struct {
	span
	Value float64
}

func (Const) isExpr() {}

// Var is an identifier reference, optionally subscripted.
type Var struct {
	span
	Name       string
	Subscripts []Expr // empty when unsubscripted
}

func (Var) isExpr() {}

// Unary is a prefix unary operation.
type Unary struct {
	span
	Op UnaryOp
	X  Expr
}

func (Unary) isExpr() {}

// Binary is an infix binary operation.
type Binary struct {
	span
	Op   BinaryOp
	L, R Expr
}

func (Binary) isExpr() {}

// If is `if A then B else C`.
type If struct {
	span
	Cond, Then, Else Expr
}

func (If) isExpr() {}

// Call is a builtin or graphical-function call: `NAME(arg, arg, ...)`.
type Call struct {
	span
	Func string
	Args []Expr
}

func (Call) isExpr() {}
