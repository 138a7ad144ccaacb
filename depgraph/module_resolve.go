package depgraph

import (
	"strings"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/ident"
)

// ModelLookup resolves a submodel by name, as Project.GetModel does.
type ModelLookup func(name string) (*datamodel.Model, bool)

// ResolveDependency rewrites a free identifier collected from an equation
// into the canonical name of the variable it truly depends on, walking
// module (src, dst) bindings per §4.4. A dotted reference `a.b` names
// module instance `a`'s child input `b`; when `b` matches the Dst side of
// one of `a`'s bindings, the real dependency is the binding's Src (a
// parent-exposed variable, possibly itself dotted one level further up).
// When no such binding matches, the reference denotes one of the child
// submodel's own outputs, which the compiler reaches only by inlining the
// module, so the dependency collapses to the module variable itself.
func ResolveDependency(model *datamodel.Model, raw string) string {
	if !strings.Contains(raw, ".") {
		return ident.Canonical(raw)
	}
	segments := strings.SplitN(raw, ".", 2)
	head := ident.Canonical(segments[0])
	rest := segments[1]

	v := model.GetVariable(head)
	mod, ok := v.(*datamodel.Module)
	if !ok {
		// not actually a module reference (e.g. a quoted name containing a
		// literal dot); treat the whole thing as one opaque identifier.
		return ident.Canonical(raw)
	}
	childHead := rest
	if idx := strings.Index(rest, "."); idx >= 0 {
		childHead = rest[:idx]
	}
	childHeadCanon := ident.Canonical(childHead)
	for _, b := range mod.Bindings {
		if ident.Canonical(b.Dst) == childHeadCanon {
			// the child input is fed by a parent-exposed variable; resolve
			// that, recursing in case Src is itself dotted.
			return ResolveDependency(model, b.Src)
		}
	}
	return head
}
