package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"careerlift-backend/internal/shared/storage/object"
	"careerlift-backend/internal/shared/util"
)

// bucket is the subset of *storage.BucketHandle the store needs.
type bucket interface {
	newWriter(ctx context.Context, key, contentType string) io.WriteCloser
	newReader(ctx context.Context, key string) (io.ReadCloser, error)
	delete(ctx context.Context, key string) error
}

type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b gcsBucket) newWriter(ctx context.Context, key, contentType string) io.WriteCloser {
	w := b.handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

func (b gcsBucket) newReader(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.handle.Object(key).NewReader(ctx)
}

func (b gcsBucket) delete(ctx context.Context, key string) error {
	return b.handle.Object(key).Delete(ctx)
}

// Store implements ObjectStore using Google Cloud Storage.
type Store struct {
	bucket bucket
	name   string
	prefix string
}

// New creates a GCS-backed object store using application default credentials.
func New(ctx context.Context, bucketName, prefix string) (*Store, error) {
	if strings.TrimSpace(bucketName) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return newWithBucket(gcsBucket{handle: client.Bucket(bucketName)}, bucketName, prefix), nil
}

func newWithBucket(b bucket, name, prefix string) *Store {
	return &Store{bucket: b, name: name, prefix: strings.Trim(strings.TrimSpace(prefix), "/")}
}

// Save uploads the reader contents under the owner's namespace.
func (s *Store) Save(ctx context.Context, owner string, fileName string, r io.Reader) (object.Object, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return object.Object{}, fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	key := path.Join(util.OwnerDir(owner), fmt.Sprintf("%s_%s", uuid.NewString(), sanitizedName))
	objectKey := s.objectKey(key)

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return object.Object{}, fmt.Errorf("read sniff: %w", readErr)
	}
	mimeType := http.DetectContentType(sniff[:n])

	w := s.bucket.newWriter(ctx, objectKey, mimeType)
	written, err := io.Copy(w, io.MultiReader(bytes.NewReader(sniff[:n]), r))
	if err != nil {
		_ = w.Close()
		return object.Object{}, fmt.Errorf("gcs write gs://%s/%s: %w", s.name, objectKey, err)
	}
	if err := w.Close(); err != nil {
		return object.Object{}, fmt.Errorf("gcs finalize gs://%s/%s: %w", s.name, objectKey, err)
	}
	return object.Object{Key: key, FileName: fileName, SniffedType: mimeType, Size: written}, nil
}

// Open streams a staged object.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	objectKey := s.objectKey(key)
	rc, err := s.bucket.newReader(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("gcs read gs://%s/%s: %w", s.name, objectKey, err)
	}
	return rc, nil
}

// Release deletes the staged object; a missing object counts as released.
func (s *Store) Release(ctx context.Context, key string) error {
	objectKey := s.objectKey(key)
	err := s.bucket.delete(context.WithoutCancel(ctx), objectKey)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete gs://%s/%s: %w", s.name, objectKey, err)
	}
	return nil
}

func (s *Store) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

var _ object.ObjectStore = (*Store)(nil)
