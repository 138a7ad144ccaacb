// Package persist streams a finished simulation run to disk or object
// storage. It mirrors the teacher's storage access pattern (analyzer.fs,
// inspector/repository's afs.New()) — a thin afs.Service field plus a
// handful of URL-addressed Upload calls — applied to the series and
// layout artifacts spec.md §4.6/§4.8 produce rather than to source files.
package persist

import (
	"github.com/viant/afs"
)

// defaultFS constructs the real afs.Service the teacher's analyzer.New and
// inspector/repository.extractGoModuleName both use (afs.New()); the
// writer constructors call it when the caller passes a nil fs.
func defaultFS() afs.Service { return afs.New() }
