package timeline

import (
	"errors"
	"fmt"
)

// ErrFocalNotFound is returned when no group in a detail view carries the focal id.
var ErrFocalNotFound = errors.New("focal tweet not found in timeline")

// SchemaError reports a node whose shape was recognised but which lacks a
// field that shape requires.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("schema: %s", e.Path)
	}
	return fmt.Sprintf("schema: %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ClassificationError reports a node with an unknown or missing type tag.
type ClassificationError struct {
	Tag string
}

func (e *ClassificationError) Error() string {
	if e.Tag == "" {
		return "classify: node has no type discriminant"
	}
	return fmt.Sprintf("classify: unknown node type %q", e.Tag)
}

func schemaErr(path string, err error) error {
	return &SchemaError{Path: path, Err: err}
}
