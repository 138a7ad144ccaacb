package persist

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// LayoutWriter streams a generated View to yaml through afs.Service, the
// same storage abstraction SeriesWriter uses, so a generated layout can be
// persisted or re-loaded without a bespoke file format.
type LayoutWriter struct {
	fs afs.Service
}

// NewLayoutWriter returns a writer backed by fs, defaulting to afs.New()
// when fs is nil.
func NewLayoutWriter(fs afs.Service) *LayoutWriter {
	if fs == nil {
		fs = defaultFS()
	}
	return &LayoutWriter{fs: fs}
}

// Write marshals view to yaml and uploads it to url.
func (w *LayoutWriter) Write(ctx context.Context, url string, view interface{}) error {
	data, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("persist: marshaling layout: %w", err)
	}
	if err := w.fs.Upload(ctx, url, os.FileMode(0644), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("persist: uploading layout to %s: %w", url, err)
	}
	return nil
}

// Read downloads url and unmarshals it into out (typically a
// *datamodel.View), the inverse of Write.
func (w *LayoutWriter) Read(ctx context.Context, url string, out interface{}) error {
	data, err := w.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return fmt.Errorf("persist: downloading layout from %s: %w", url, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("persist: parsing layout from %s: %w", url, err)
	}
	return nil
}
