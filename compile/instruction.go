// Package compile lowers datamodel variables (already parsed into
// parser.Expr ASTs) into instruction streams over a dense per-model
// register file, per spec.md §4.5. Grounded on the teacher's layered
// value-object style; the instruction set itself follows the abstract
// listing in spec.md §4.5 directly, since no example repo in the
// retrieval pack ships a comparable bytecode compiler to imitate.
package compile

import "github.com/sdforge/sdengine/parser"

// OpCode is the tag of one instruction in a compiled stream.
type OpCode int

const (
	OpLoadConst OpCode = iota
	OpLoadOff
	OpStoreOff
	OpBinary
	OpUnary
	OpCall
	OpIf
	OpLookupGF
	OpReturn
)

// Instruction is one step of a compiled stream. Only the fields relevant
// to Op are meaningful; the rest are zero.
type Instruction struct {
	Op OpCode

	Const float64 // OpLoadConst
	Off   int     // OpLoadOff / OpStoreOff

	BinOp parser.BinaryOp // OpBinary
	UnOp  parser.UnaryOp  // OpUnary

	BuiltinID int // OpCall
	Argc      int // OpCall
	StateID   int // OpCall: base index into the VM's stateful-builtin register file;
	// -1 for stateless builtins. INTEG/SMTH1/SMTH3/DELAY1/DELAY3 each reserve
	// one or more consecutive state slots (statefulWidth), assigned once per
	// call site at compile time so repeated steps read/write the same cell.

	ThenLen int // OpIf: length of the "then" block that follows immediately
	ElseLen int // OpIf: length of the "else" block that follows the "then" block

	TableID int // OpLookupGF
}
