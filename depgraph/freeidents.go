package depgraph

import (
	"github.com/sdforge/sdengine/ident"
	"github.com/sdforge/sdengine/parser"
)

// FreeIdents walks an equation AST and returns the canonicalized,
// deduplicated set of variable identifiers it references, excluding
// builtin call names and the special `time` identifier, per §4.4.
func FreeIdents(e parser.Expr) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(parser.Expr)
	walk = func(n parser.Expr) {
		if n == nil {
			return
		}
		switch v := n.(type) {
		case parser.Const:
		case parser.Var:
			canon := ident.Canonical(v.Name)
			if canon != timeIdent && !seen[canon] {
				seen[canon] = true
				order = append(order, canon)
			}
			for _, s := range v.Subscripts {
				walk(s)
			}
		case parser.Unary:
			walk(v.X)
		case parser.Binary:
			walk(v.L)
			walk(v.R)
		case parser.If:
			walk(v.Cond)
			walk(v.Then)
			walk(v.Else)
		case parser.Call:
			if !builtinNames[v.Func] {
				canon := ident.Canonical(v.Func)
				if canon != timeIdent && !seen[canon] {
					seen[canon] = true
					order = append(order, canon)
				}
			}
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return order
}
