// Package datamodel defines the canonical in-memory project/model/variable
// types that every other package in this module operates on. A Project is
// immutable once constructed: edits produce a new Project rather than
// mutating one in place (§5 "Shared-resource policy").
package datamodel

import (
	"sort"

	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/ident"
	"golang.org/x/mod/semver"
)

// DefaultSchemaVersion is assigned to a Project whose SchemaVersion is
// left blank.
const DefaultSchemaVersion = "v1.0.0"

// AIInformation records optional provenance about AI involvement in
// producing or editing a project, mirrored from the "optional AI
// provenance" field named in spec.md §3.
type AIInformation struct {
	Kind     string
	Metadata map[string]string
}

// LoopMetadata is persisted loop bookkeeping: the degraded-mode source the
// layout engine falls back to when LTM-based loop detection cannot run
// (model fails to compile or simulate). See SPEC_FULL.md.
type LoopMetadata struct {
	ID        string
	Name      string
	Variables []string
	Deleted   bool
}

// Project is the root container for an entire model hierarchy.
type Project struct {
	Name          string
	SchemaVersion string
	SimSpecs      SimSpec
	Dimensions    []Dimension
	Units         map[string]string // unit name -> defining expression, unparsed
	Models        []*Model
	AIInformation *AIInformation
}

// NewProject validates and returns a Project. Model name uniqueness and the
// presence of exactly one "main" model (or the first by declaration order)
// are enforced here; everything else is validated lazily by the stage that
// needs it (units by the units package, equations by the parser, etc).
func NewProject(p Project) (*Project, error) {
	if p.SchemaVersion == "" {
		p.SchemaVersion = DefaultSchemaVersion
	}
	if !semver.IsValid(p.SchemaVersion) {
		return nil, errs.Newf(errs.Generic, "invalid project schema version %q", p.SchemaVersion).At(p.Name, "", 0, 0)
	}
	seen := make(map[string]bool, len(p.Models))
	for _, m := range p.Models {
		key := ident.Canonical(m.Name)
		if seen[key] {
			return nil, errs.Newf(errs.BadModelName, "duplicate model name %q", m.Name).At(p.Name, "", 0, 0)
		}
		seen[key] = true
	}
	if p.Units == nil {
		p.Units = map[string]string{}
	}
	out := p
	return &out, nil
}

// MainModel returns the model named "main", or the first declared model if
// none is named "main", matching spec.md §3's invariant.
func (p *Project) MainModel() *Model {
	for _, m := range p.Models {
		if ident.Canonical(m.Name) == "main" {
			return m
		}
	}
	if len(p.Models) > 0 {
		return p.Models[0]
	}
	return nil
}

// GetModel looks up a model by name (case/space-insensitive).
func (p *Project) GetModel(name string) *Model {
	key := ident.Canonical(name)
	for _, m := range p.Models {
		if ident.Canonical(m.Name) == key {
			return m
		}
	}
	return nil
}

// Clone performs a shallow copy for edit-then-rebuild workflows: the
// Models slice, the Dimensions slice and the Units map are copied, but the
// *Model values they point to (with their variables, equations and views)
// are shared.
func (p *Project) Clone() *Project {
	out := *p
	out.Models = make([]*Model, len(p.Models))
	copy(out.Models, p.Models)
	out.Dimensions = append([]Dimension(nil), p.Dimensions...)
	out.Units = make(map[string]string, len(p.Units))
	for k, v := range p.Units {
		out.Units[k] = v
	}
	return &out
}

// Model is one hierarchical unit of a project: an ordered list of typed
// variables plus an optional diagram view.
type Model struct {
	Name         string
	Variables    []Variable
	Views        []*View
	LoopMetadata []LoopMetadata
	SimSpecs     *SimSpec // overrides Project.SimSpecs when non-nil
}

// EffectiveSimSpecs returns the model's own SimSpecs override, or the
// project's, if the model does not declare one.
func (m *Model) EffectiveSimSpecs(project *Project) SimSpec {
	if m.SimSpecs != nil {
		return *m.SimSpecs
	}
	return project.SimSpecs
}

// GetVariable looks up a variable by name (case/space-insensitive).
func (m *Model) GetVariable(name string) Variable {
	key := ident.Canonical(name)
	for _, v := range m.Variables {
		if ident.Canonical(v.Ident()) == key {
			return v
		}
	}
	return nil
}

// Validate checks the invariant that every variable's canonical identifier
// is unique within the model (§8 invariant 1).
func (m *Model) Validate() *errs.List {
	var list errs.List
	seen := make(map[string][]string, len(m.Variables))
	for _, v := range m.Variables {
		key := ident.Canonical(v.Ident())
		seen[key] = append(seen[key], v.Ident())
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(seen[k]) > 1 {
			list.Add(errs.Newf(errs.DuplicateVariable, "variable %q declared %d times", seen[k][0], len(seen[k])).At(m.Name, seen[k][0], 0, 0))
		}
	}
	return &list
}
