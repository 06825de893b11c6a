package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const (
	BucketProducts        = "products"
	BucketVendorDocuments = "vendor-documents"
)

var ErrUnknownBucket = errors.New("unknown bucket")

// ErrNotFound is returned by Open for missing objects.
var ErrNotFound = errors.New("object not found")

// Store holds one blob bucket per logical bucket name and resolves public URLs
// under BaseURL/<bucket>/<key>.
type Store struct {
	buckets map[string]*blob.Bucket
	BaseURL string
}

// Open opens the product and vendor-document buckets. driver is "file"
// (one directory per bucket under dir) or "mem".
func Open(driver, dir, baseURL string) (*Store, error) {
	s := &Store{buckets: map[string]*blob.Bucket{}, BaseURL: strings.TrimRight(baseURL, "/")}
	for _, name := range []string{BucketProducts, BucketVendorDocuments} {
		var (
			b   *blob.Bucket
			err error
		)
		switch driver {
		case "mem":
			b = memblob.OpenBucket(nil)
		case "file", "":
			b, err = fileblob.OpenBucket(filepath.Join(dir, name), &fileblob.Options{CreateDir: true})
		default:
			err = errors.Errorf("unsupported storage driver %q", driver)
		}
		if err != nil {
			_ = s.Close()
			return nil, errors.Wrapf(err, "open bucket %s", name)
		}
		s.buckets[name] = b
	}
	return s, nil
}

// NewMemory is an in-memory store, used by tests.
func NewMemory(baseURL string) *Store {
	s, _ := Open("mem", "", baseURL)
	return s
}

func (s *Store) bucket(name string) (*blob.Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownBucket, name)
	}
	return b, nil
}

func (s *Store) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	w, err := b.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrapf(err, "open writer %s/%s", bucket, key)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "write %s/%s", bucket, key)
	}
	return errors.Wrapf(w.Close(), "close %s/%s", bucket, key)
}

func (s *Store) PublicURL(bucket, key string) string {
	return s.BaseURL + "/" + bucket + "/" + key
}

// Object is an open stored object.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

func (s *Store) Open(ctx context.Context, bucket, key string) (*Object, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	r, err := b.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "read %s/%s", bucket, key)
	}
	return &Object{ReadCloser: r, ContentType: r.ContentType(), Size: r.Size()}, nil
}

func (s *Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return false, err
	}
	return b.Exists(ctx, key)
}

func (s *Store) Close() error {
	var first error
	for _, b := range s.buckets {
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
