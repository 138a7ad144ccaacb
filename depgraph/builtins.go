package depgraph

// builtinNames is the set of call-target identifiers that never denote a
// variable reference, mirroring the builtin table the compiler's Call
// instruction dispatches on (§4.5) plus the additional forms listed in
// SPEC_FULL's expression-parser section.
var builtinNames = map[string]bool{
	"MIN": true, "MAX": true, "SQRT": true, "EXP": true, "LN": true,
	"SIN": true, "COS": true, "TAN": true, "ABS": true, "INT": true,
	"PULSE": true, "STEP": true, "RAMP": true, "LOOKUP": true, "INTEG": true,
	"SMTH1": true, "SMTH3": true, "DELAY1": true, "DELAY3": true,
	"MOD": true, "ARCCOS": true, "ARCSIN": true, "ARCTAN": true,
	"SAFEDIV": true, "RANDOM": true,
}

// timeIdent is the special always-available identifier that never counts
// as a dependency edge (its value is supplied by the VM's state, not
// computed from other variables).
const timeIdent = "time"
