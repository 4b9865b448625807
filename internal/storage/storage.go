// Package storage persists uploaded resume files.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no object is stored under a name.
var ErrNotFound = errors.New("object not found")

// Object is an open stored file. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Backend stores files under flat names.
type Backend interface {
	Save(ctx context.Context, name string, data []byte, contentType string) error
	Open(ctx context.Context, name string) (*Object, error)
	Remove(ctx context.Context, name string) error
}

// validName rejects names that would escape the flat namespace.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
