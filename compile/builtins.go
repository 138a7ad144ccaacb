package compile

import "sort"

// arity describes the accepted argument-count range for a builtin. Max -1
// means unbounded (e.g. MIN/MAX accept two or more operands).
type arity struct{ Min, Max int }

// builtinArity is the authoritative builtin table the compiler's Call
// instruction dispatches on, naming exactly the surface listed in §4.5
// plus SPEC_FULL's expression-parser additions.
var builtinArity = map[string]arity{
	"MIN":     {2, -1},
	"MAX":     {2, -1},
	"SQRT":    {1, 1},
	"EXP":     {1, 1},
	"LN":      {1, 1},
	"SIN":     {1, 1},
	"COS":     {1, 1},
	"TAN":     {1, 1},
	"ABS":     {1, 1},
	"INT":     {1, 1},
	"ARCSIN":  {1, 1},
	"ARCCOS":  {1, 1},
	"ARCTAN":  {1, 1},
	"MOD":     {2, 2},
	"SAFEDIV": {2, 3},
	"PULSE":   {2, 3},
	"STEP":    {2, 2},
	"RAMP":    {2, 3},
	"LOOKUP":  {2, 2},
	"INTEG":   {2, 2},
	"SMTH1":   {2, 3},
	"SMTH3":   {2, 4},
	"DELAY1":  {2, 3},
	"DELAY3":  {2, 4},
	"TIME":    {0, 0},
	"RANDOM":  {0, 2},
}

// statefulWidth names the builtins whose evaluation carries persistent
// state across simulation steps (smoothing/delay stages, plus INTEG when
// it appears outside its usual role as a Stock's top-level constructor —
// see DESIGN.md), and how many consecutive register-file cells each
// call site needs. Every other builtin is a pure function of its operands
// and `time`.
var statefulWidth = map[string]int{
	"INTEG":  1,
	"SMTH1":  1,
	"SMTH3":  3,
	"DELAY1": 1,
	"DELAY3": 3,
}

// builtinID is a stable numeric identifier for each builtin, used by the
// Call instruction instead of carrying the name string at runtime.
var builtinID = map[string]int{}

// BuiltinNames maps a builtin id (Instruction.BuiltinID) back to its name,
// in the same order builtinID assigns them, so the VM's builtin dispatcher
// can switch on name without duplicating this package's id assignment.
var BuiltinNames []string

func init() {
	names := make([]string, 0, len(builtinArity))
	for n := range builtinArity {
		names = append(names, n)
	}
	// deterministic id assignment independent of map iteration order.
	sort.Strings(names)
	BuiltinNames = names
	for i, n := range names {
		builtinID[n] = i
	}
}
