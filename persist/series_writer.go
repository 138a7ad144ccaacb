package persist

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/viant/afs"
)

// seriesSource is the read side of vm.Series this package depends on,
// defined locally so persist never imports vm (vm already depends on
// compile/datamodel; persist stays a leaf the way the teacher's inspector
// packages stay leaves under analyzer).
type seriesSource interface {
	Len() int
	At(name string, i int) (float64, bool)
	TimeAt(i int) float64
}

// SeriesWriter streams a completed run to a CSV file through afs.Service,
// so a caller gets disk/object-storage export without a separate
// command-line export step (SPEC_FULL.md's VM additions).
type SeriesWriter struct {
	fs afs.Service
}

// NewSeriesWriter returns a writer backed by fs. A nil fs defaults to
// afs.New(), matching analyzer.New's "fs: afs.New()" construction.
func NewSeriesWriter(fs afs.Service) *SeriesWriter {
	if fs == nil {
		fs = defaultFS()
	}
	return &SeriesWriter{fs: fs}
}

// Write uploads series as a CSV file to URL: one "time" column, then one
// column per name, in the order given. Rows are written in save-step
// order with no reordering, so the file is a direct reflection of
// vm.Series's capture buffer.
func (w *SeriesWriter) Write(ctx context.Context, url string, series seriesSource, names []string) error {
	var buf bytes.Buffer
	buf.WriteString("time")
	for _, n := range names {
		buf.WriteByte(',')
		buf.WriteString(n)
	}
	buf.WriteByte('\n')

	for i := 0; i < series.Len(); i++ {
		buf.WriteString(strconv.FormatFloat(series.TimeAt(i), 'g', -1, 64))
		for _, n := range names {
			v, ok := series.At(n, i)
			buf.WriteByte(',')
			if ok {
				buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		buf.WriteByte('\n')
	}

	if err := w.fs.Upload(ctx, url, os.FileMode(0644), bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("persist: uploading series to %s: %w", url, err)
	}
	return nil
}
