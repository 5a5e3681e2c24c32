// Package miniostore implements tcaws.ObjectStore with minio-go, for MinIO
// and other S3-compatible servers.
package miniostore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"

	"github.com/sagarc03/tcaws"
)

// Options configures New.
type Options struct {
	// Endpoint is either a bare host ("localhost:9000") or a URL whose scheme
	// decides whether TLS is used.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// Secure forces TLS for bare host endpoints.
	Secure bool
}

// Store provides object store operations backed by a minio client.
type Store struct {
	client *minio.Client
}

func NewStore(client *minio.Client) *Store {
	return &Store{client: client}
}

// New builds a minio client for opts. Without a static key pair the
// credentials are read from AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY or
// MINIO_ROOT_USER/MINIO_ROOT_PASSWORD.
func New(opts Options) (*Store, error) {
	host, secure, err := parseEndpoint(opts.Endpoint, opts.Secure)
	if err != nil {
		return nil, err
	}

	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
	})
	if opts.AccessKey != "" {
		creds = credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, "")
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        creds,
		Secure:       secure,
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return NewStore(client), nil
}

func parseEndpoint(endpoint string, secure bool) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("minio endpoint: %w: endpoint cannot be empty", tcaws.ErrInvalidInput)
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, secure, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("minio endpoint: %w: %w", tcaws.ErrInvalidInput, err)
	}
	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("minio endpoint: %w: unsupported scheme %q", tcaws.ErrInvalidInput, u.Scheme)
	}
}

func (s *Store) GetObject(ctx context.Context, bucket, key string) (tcaws.Object, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return tcaws.Object{}, classify(err)
	}
	defer func() { _ = obj.Close() }()

	// minio defers the request until the first read or stat.
	info, err := obj.Stat()
	if err != nil {
		return tcaws.Object{}, classify(err)
	}

	body, err := io.ReadAll(obj)
	if err != nil {
		return tcaws.Object{}, classify(err)
	}

	return tcaws.Object{
		Bucket:       bucket,
		Key:          key,
		Body:         body,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		Size:         int64(len(body)),
		LastModified: info.LastModified,
		Metadata:     info.UserMetadata,
	}, nil
}

func (s *Store) PutObject(ctx context.Context, obj tcaws.PutObject) (tcaws.PutResult, error) {
	opts := minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		UserMetadata: obj.Metadata,
		StorageClass: string(obj.StorageClass),
	}
	if obj.ServerSideEncryption {
		opts.ServerSideEncryption = encrypt.NewSSE()
	}

	info, err := s.client.PutObject(ctx, obj.Bucket, obj.Key, bytes.NewReader(obj.Body), int64(len(obj.Body)), opts)
	if err != nil {
		return tcaws.PutResult{}, classify(err)
	}

	return tcaws.PutResult{
		Bucket:      obj.Bucket,
		Key:         obj.Key,
		ETag:        info.ETag,
		ContentType: obj.ContentType,
		Size:        int64(len(obj.Body)),
	}, nil
}

func (s *Store) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) PresignObject(ctx context.Context, req tcaws.PresignRequest) (string, error) {
	var (
		u   *url.URL
		err error
	)
	switch req.Method {
	case http.MethodGet, "":
		u, err = s.client.PresignedGetObject(ctx, req.Bucket, req.Key, req.Expiry, url.Values{})
	case http.MethodHead:
		u, err = s.client.PresignedHeadObject(ctx, req.Bucket, req.Key, req.Expiry, url.Values{})
	case http.MethodPut:
		u, err = s.client.PresignedPutObject(ctx, req.Bucket, req.Key, req.Expiry)
	case http.MethodDelete:
		u, err = s.client.Presign(ctx, http.MethodDelete, req.Bucket, req.Key, req.Expiry, url.Values{})
	default:
		return "", fmt.Errorf("%w: cannot presign method %s", tcaws.ErrInvalidInput, req.Method)
	}
	if err != nil {
		return "", classify(err)
	}

	return u.String(), nil
}

// classify maps minio errors onto the tcaws error taxonomy.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %w", tcaws.ErrNotFound, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %w", tcaws.ErrPermission, err)
	case "InvalidArgument", "InvalidBucketName", "XMinioInvalidObjectName":
		return fmt.Errorf("%w: %w", tcaws.ErrInvalidInput, err)
	}

	switch resp.StatusCode {
	case 0:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", tcaws.ErrNotFound, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", tcaws.ErrPermission, err)
	default:
		return fmt.Errorf("%w: %w", tcaws.ErrUpstream, err)
	}

	if resp.Code != "" {
		return fmt.Errorf("%w: %w", tcaws.ErrUpstream, err)
	}

	return fmt.Errorf("%w: %w", tcaws.ErrNetwork, err)
}
