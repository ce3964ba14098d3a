package snapshot

import (
	"path/filepath"

	"modbase/internal/fileutil"
	"modbase/internal/services"
)

// Writer validates and persists documents.
type Writer struct {
	validator *Validator
}

// NewWriter compiles the schema once for all writes.
func NewWriter() (*Writer, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Writer{validator: v}, nil
}

// Write renders meta, validates it, and replaces the file at path.
func (w *Writer) Write(path string, meta Metadata) error {
	data, err := Marshal(meta)
	if err != nil {
		return services.Wrap(services.ErrFormat, "snapshot", "marshal", "", err)
	}
	if err := w.validator.Validate(data); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrPrecondition, "snapshot", "write", filepath.Base(path), err)
	}
	return nil
}
