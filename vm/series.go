package vm

import (
	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/datamodel"
)

// Series is the output capture buffer built up over one simulation run:
// one time-stamped row per save step, columns addressable by variable
// name. Reset rebuilds it from scratch; a completed Series is what
// persist.SeriesWriter streams to disk/object storage as CSV.
type Series struct {
	Time  []float64
	Names []string
	cols  map[string]int
	data  [][]float64 // data[col][row]
}

func newSeries(p *compile.Program, spec datamodel.SimSpec) *Series {
	names := make([]string, 0, len(p.Offsets))
	cols := make(map[string]int, len(p.Offsets))
	for name := range p.Offsets {
		cols[name] = len(names)
		names = append(names, name)
	}
	steps := spec.Steps()/spec.SaveStride() + 2
	data := make([][]float64, len(names))
	for i := range data {
		data[i] = make([]float64, 0, steps)
	}
	return &Series{Names: names, cols: cols, data: data, Time: make([]float64, 0, steps)}
}

func (s *Series) capture(p *compile.Program, t float64, slots []float64) {
	s.Time = append(s.Time, t)
	for name, off := range p.Offsets {
		col := s.cols[name]
		s.data[col] = append(s.data[col], slots[off])
	}
}

// get returns the full captured time series for name.
func (s *Series) get(name string) ([]float64, bool) {
	col, ok := s.cols[name]
	if !ok {
		return nil, false
	}
	return s.data[col], true
}

// At returns name's value at save index i.
func (s *Series) At(name string, i int) (float64, bool) {
	series, ok := s.get(name)
	if !ok || i < 0 || i >= len(series) {
		return 0, false
	}
	return series[i], true
}

// Len returns the number of captured save steps.
func (s *Series) Len() int { return len(s.Time) }

// TimeAt returns the save-step timestamp at row i, or 0 if i is out of
// range. persist.SeriesWriter uses this rather than indexing the Time
// field directly so it depends only on a narrow interface, not on vm.
func (s *Series) TimeAt(i int) float64 {
	if i < 0 || i >= len(s.Time) {
		return 0
	}
	return s.Time[i]
}
