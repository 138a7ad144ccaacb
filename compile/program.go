package compile

import (
	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/depgraph"
	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/ident"
)

// Program is a fully compiled model: a dense register file (Slots f64
// values per running instance) plus one instruction stream per variable.
type Program struct {
	ModelName string

	Slots      int
	TimeOffset int

	// StateSlots is the number of cells a running VM must allocate in its
	// stateful-builtin register file (one per INTEG/SMTH/DELAY call site;
	// see compile.Instruction.StateID).
	StateSlots int

	Offsets      map[string]int // variable -> value slot
	DerivOffsets map[string]int // stock -> derivative temp slot

	Initial        map[string][]Instruction // stock -> initial-value stream
	FlowAuxStreams map[string][]Instruction // non-stock variable -> value stream
	DerivStreams   map[string][]Instruction // stock -> net-flow (dS/dt) stream

	Tables []*datamodel.GraphicalFunction

	Stocks        []string
	FlowsOrder    []string
	InitialsOrder []string

	// StockOutflows and StockNonNegative carry the declarative metadata
	// §4.6 step 5's non-negativity clamp needs (which flows to attenuate,
	// and which stocks the clamp even applies to) alongside the compiled
	// derivative streams.
	StockOutflows    map[string][]string
	StockNonNegative map[string]bool

	Submodules map[string]*Submodule
}

// Submodule is a module instance: its own independently compiled child
// Program, plus the parent-slot -> child-slot copies that run before the
// child's streams each time the parent evaluates its flows. The VM runs
// only the child's flow/aux streams, in a fresh child register file each
// time (see DESIGN.md): the child's Stocks are not initialized or
// integrated, and no child value is written back to the parent's slots.
type Submodule struct {
	Child    *Program
	Bindings []ResolvedBinding
}

// ResolvedBinding is a module (src, dst) binding with both sides already
// resolved to slot offsets.
type ResolvedBinding struct {
	ParentOffset int
	ChildOffset  int
}

// Compile lowers model (within project, for dimension/unit context) into a
// Program. Equation parse errors, builtin-arity violations, bad
// subscripts, and circular dependencies are collected into the returned
// error list rather than aborting on the first one.
func Compile(project *datamodel.Project, model *datamodel.Model) (*Program, *errs.List) {
	errList := &errs.List{}

	var dims *datamodel.DimensionSet
	if project != nil {
		dims = datamodel.NewDimensionSet(project.Dimensions)
	}
	expanded, dimensionsOf := expandModel(model, dims)

	g, gerr := depgraph.Build(expanded)
	if gerr != nil {
		errList.Errors = append(errList.Errors, gerr.Errors...)
	}
	if g != nil {
		if cyc := depgraph.DetectCycles(g, expanded.Name); cyc != nil {
			errList.Errors = append(errList.Errors, cyc.Errors...)
		}
	}

	p := &Program{
		ModelName:        model.Name,
		Offsets:          map[string]int{},
		DerivOffsets:     map[string]int{},
		Initial:          map[string][]Instruction{},
		FlowAuxStreams:   map[string][]Instruction{},
		DerivStreams:     map[string][]Instruction{},
		StockOutflows:    map[string][]string{},
		StockNonNegative: map[string]bool{},
		Submodules:       map[string]*Submodule{},
	}
	p.TimeOffset = p.Slots
	p.Slots++

	for _, v := range expanded.Variables {
		name := ident.Canonical(v.Ident())
		p.Offsets[name] = p.Slots
		p.Slots++
		if _, ok := v.(*datamodel.Stock); ok {
			p.Stocks = append(p.Stocks, name)
			p.DerivOffsets[name] = p.Slots
			p.Slots++
		}
	}

	gfOf := map[string]*datamodel.GraphicalFunction{}
	for _, v := range expanded.Variables {
		name := ident.Canonical(v.Ident())
		switch t := v.(type) {
		case *datamodel.Stock:
			if t.GF != nil {
				gfOf[name] = t.GF
			}
		case *datamodel.Flow:
			if t.GF != nil {
				gfOf[name] = t.GF
			}
		case *datamodel.Aux:
			if t.GF != nil {
				gfOf[name] = t.GF
			}
		}
	}

	ctx := &codegenCtx{
		model:        expanded,
		offsets:      p.Offsets,
		timeOffset:   p.TimeOffset,
		dimensionsOf: dimensionsOf,
		gfOf:         gfOf,
		tables:       &p.Tables,
		tableIDs:     map[string]int{},
		stateSlots:   &p.StateSlots,
		errs:         errList,
	}

	for _, v := range expanded.Variables {
		name := ident.Canonical(v.Ident())
		switch t := v.(type) {
		case *datamodel.Stock:
			p.Initial[name] = ctx.compileEquation(name, t.Init, t.GF, p.Offsets[name])
			p.DerivStreams[name] = ctx.compileStockDerivative(name, t, p.DerivOffsets[name])
			canonOutflows := make([]string, len(t.Outflows))
			for i, o := range t.Outflows {
				canonOutflows[i] = ident.Canonical(o)
			}
			p.StockOutflows[name] = canonOutflows
			p.StockNonNegative[name] = t.NonNegative
		case *datamodel.Flow:
			p.FlowAuxStreams[name] = ctx.compileEquation(name, t.Eqn, t.GF, p.Offsets[name])
		case *datamodel.Aux:
			p.FlowAuxStreams[name] = ctx.compileEquation(name, t.Eqn, t.GF, p.Offsets[name])
		case *datamodel.Module:
			if project == nil {
				continue
			}
			sub, err := compileModule(project, expanded, t, p.Offsets)
			if err != nil {
				errList.Add(err)
				continue
			}
			p.Submodules[name] = sub
		}
	}

	if g != nil {
		p.FlowsOrder = depgraph.FlowsOrder(g)
		p.InitialsOrder = depgraph.InitialsOrder(g)
	}

	if errList.Empty() {
		return p, nil
	}
	return p, errList
}

// compileModule recursively compiles a module instance's referenced
// submodel into its own independent Program and resolves its (src, dst)
// bindings to slot offsets on both sides.
func compileModule(project *datamodel.Project, parentModel *datamodel.Model, mod *datamodel.Module, parentOffsets map[string]int) (*Submodule, *errs.Error) {
	childModel := project.GetModel(mod.ModelName)
	if childModel == nil {
		return nil, errs.Newf(errs.BadModuleInputSrc, "module %q references unknown model %q", mod.Name, mod.ModelName).
			At(parentModel.Name, mod.Name, 0, 0)
	}
	childProgram, childErrs := Compile(project, childModel)
	if childErrs != nil {
		return nil, errs.Newf(errs.BadModuleInputDst, "module %q's submodel %q failed to compile: %s", mod.Name, mod.ModelName, childErrs.Error()).
			At(parentModel.Name, mod.Name, 0, 0)
	}
	sub := &Submodule{Child: childProgram}
	for _, b := range mod.Bindings {
		srcName := depgraph.ResolveDependency(parentModel, b.Src)
		parentOff, ok := parentOffsets[srcName]
		if !ok {
			return nil, errs.Newf(errs.BadModuleInputSrc, "module %q binding references unknown parent variable %q", mod.Name, b.Src).
				At(parentModel.Name, mod.Name, 0, 0)
		}
		childOff, ok := childProgram.Offsets[ident.Canonical(b.Dst)]
		if !ok {
			return nil, errs.Newf(errs.BadModuleInputDst, "module %q binding references unknown submodel input %q", mod.Name, b.Dst).
				At(parentModel.Name, mod.Name, 0, 0)
		}
		sub.Bindings = append(sub.Bindings, ResolvedBinding{ParentOffset: parentOff, ChildOffset: childOff})
	}
	return sub, nil
}
