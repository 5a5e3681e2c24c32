package tcaws

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// ObjectStore is the client of an S3-compatible object store.
// Implementations are expected to be safe for concurrent use.
//
// All methods accept a context for cancellation and timeout control; the
// adapter itself enforces neither.
type ObjectStore interface {
	// GetObject retrieves the object stored under bucket and key.
	//
	// Returns ErrNotFound if the key does not exist, ErrPermission if access
	// is denied, and ErrNetwork or ErrUpstream for transport and server failures.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// PutObject stores obj, overwriting any existing object under the same key.
	PutObject(ctx context.Context, obj PutObject) (PutResult, error)

	// DeleteObject removes the object stored under bucket and key.
	DeleteObject(ctx context.Context, bucket, key string) error

	// PresignObject returns a time limited URL granting req.Method on the object.
	// Backends that cannot presign return ErrUnsupported.
	PresignObject(ctx context.Context, req PresignRequest) (string, error)
}

// Adapter forwards object operations to an ObjectStore on an Executor.
// Every key passes through CleanKey before it reaches the store.
type Adapter struct {
	store       ObjectStore
	exec        Executor
	logger      *slog.Logger
	contentType ContentTypeDetector
}

type AdapterOption func(*Adapter)

func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithContentTypeDetector replaces DetectContentType for puts.
func WithContentTypeDetector(detect ContentTypeDetector) AdapterOption {
	return func(a *Adapter) {
		a.contentType = detect
	}
}

func NewAdapter(store ObjectStore, exec Executor, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		store:       store,
		exec:        exec,
		logger:      slog.Default(),
		contentType: DetectContentType,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Executor returns the executor the adapter dispatches on.
func (a *Adapter) Executor() Executor {
	return a.exec
}

func (a *Adapter) cleanKey(key string) string {
	cleaned := CleanKey(key)
	if cleaned != key {
		a.logger.Debug("cleaned key", "key", key, "cleaned", cleaned)
	}
	return cleaned
}

// Get fetches the object at bucket/key.
// The future fails with ErrNotFound if the key does not exist.
func (a *Adapter) Get(ctx context.Context, bucket, key string) *Future[Object] {
	if bucket == "" {
		return Completed(Object{}, fmt.Errorf("get object: %w: bucket cannot be empty", ErrInvalidInput))
	}
	key = a.cleanKey(key)

	return dispatch(a.exec, func() (Object, error) {
		obj, err := a.store.GetObject(ctx, bucket, key)
		if err != nil {
			return Object{}, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
		}
		return obj, nil
	})
}

// Put stores in.Data at in.Bucket/in.Key. The content type is detected from
// the payload's magic bytes; the storage class and server side encryption
// follow in.ReducedRedundancy and in.Encrypt.
func (a *Adapter) Put(ctx context.Context, in PutInput) *Future[PutResult] {
	if in.Bucket == "" {
		return Completed(PutResult{}, fmt.Errorf("put object: %w: bucket cannot be empty", ErrInvalidInput))
	}

	obj := PutObject{
		Bucket:               in.Bucket,
		Key:                  a.cleanKey(in.Key),
		Body:                 slices.Clone(in.Data),
		ContentType:          a.contentType(in.Data),
		Metadata:             maps.Clone(in.Metadata),
		StorageClass:         StorageClassFor(in.ReducedRedundancy),
		ServerSideEncryption: in.Encrypt,
	}
	if obj.Metadata == nil {
		obj.Metadata = map[string]string{}
	}

	return dispatch(a.exec, func() (PutResult, error) {
		res, err := a.store.PutObject(ctx, obj)
		if err != nil {
			return PutResult{}, fmt.Errorf("put object %s/%s: %w", obj.Bucket, obj.Key, err)
		}
		return res, nil
	})
}

func (a *Adapter) Delete(ctx context.Context, bucket, key string) *Future[struct{}] {
	if bucket == "" {
		return Completed(struct{}{}, fmt.Errorf("delete object: %w: bucket cannot be empty", ErrInvalidInput))
	}
	key = a.cleanKey(key)

	return dispatch(a.exec, func() (struct{}, error) {
		if err := a.store.DeleteObject(ctx, bucket, key); err != nil {
			return struct{}{}, fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
		}
		return struct{}{}, nil
	})
}

// Presign generates a URL granting method on bucket/key for expiry.
// An empty method means GET and a non-positive expiry means DefaultPresignExpiry.
func (a *Adapter) Presign(ctx context.Context, bucket, key, method string, expiry time.Duration) *Future[string] {
	if bucket == "" {
		return Completed("", fmt.Errorf("presign object: %w: bucket cannot be empty", ErrInvalidInput))
	}

	m, err := ParsePresignMethod(method)
	if err != nil {
		return Completed("", fmt.Errorf("presign object: %w", err))
	}

	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	if expiry > MaxPresignExpiry {
		return Completed("", fmt.Errorf("presign object: %w: expiry %s exceeds %s", ErrInvalidInput, expiry, MaxPresignExpiry))
	}

	req := PresignRequest{
		Bucket: bucket,
		Key:    a.cleanKey(key),
		Method: m,
		Expiry: expiry,
	}

	return dispatch(a.exec, func() (string, error) {
		url, err := a.store.PresignObject(ctx, req)
		if err != nil {
			return "", fmt.Errorf("presign object %s/%s: %w", req.Bucket, req.Key, err)
		}
		return url, nil
	})
}
