package object

import (
	"context"
	"io"
)

// Object describes a staged upload.
type Object struct {
	Key         string
	FileName    string
	SniffedType string
	Size        int64
}

// ObjectStore stages uploaded documents for the duration of a request.
type ObjectStore interface {
	Save(ctx context.Context, owner string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Release deletes a staged object. Releasing a missing object is not an error.
	Release(ctx context.Context, key string) error
}
