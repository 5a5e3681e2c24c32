// Package s3 implements tcaws.ObjectStore with the AWS SDK for Go v2.
// It works against AWS S3 and any S3-compatible endpoint.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/tcaws"
)

// API is the subset of *s3.Client used by Client.
type API interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// Presigner is the subset of *s3.PresignClient used by Client.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignHeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignDeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ API       = (*awss3.Client)(nil)
	_ Presigner = (*awss3.PresignClient)(nil)
)

// Options configures New.
type Options struct {
	Region string
	// Endpoint overrides the AWS endpoint, e.g. "http://localhost:9000" for MinIO.
	Endpoint string
	// UsePathStyle addresses buckets as http://host/bucket/key.
	UsePathStyle bool
	// Credentials overrides the default credential chain when set.
	Credentials aws.CredentialsProvider
}

// Client provides object store operations backed by S3.
type Client struct {
	api       API
	presigner Presigner
}

// NewClient wraps an existing SDK client. presigner may be nil, in which
// case PresignObject returns tcaws.ErrUnsupported.
func NewClient(api API, presigner Presigner) *Client {
	return &Client{api: api, presigner: presigner}
}

// New loads the default AWS configuration for opts.Region and builds a Client.
func New(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.Credentials != nil {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(opts.Credentials))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return NewClient(client, awss3.NewPresignClient(client)), nil
}

// GetObject reads the whole object into memory.
func (c *Client) GetObject(ctx context.Context, bucket, key string) (tcaws.Object, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return tcaws.Object{}, classify(err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return tcaws.Object{}, fmt.Errorf("read body: %w: %w", tcaws.ErrNetwork, err)
	}

	size := int64(len(body))
	if out.ContentLength != nil {
		size = *out.ContentLength
	}

	return tcaws.Object{
		Bucket:       bucket,
		Key:          key,
		Body:         body,
		ContentType:  aws.ToString(out.ContentType),
		ETag:         trimETag(aws.ToString(out.ETag)),
		Size:         size,
		LastModified: aws.ToTime(out.LastModified),
		Metadata:     out.Metadata,
	}, nil
}

func (c *Client) PutObject(ctx context.Context, obj tcaws.PutObject) (tcaws.PutResult, error) {
	if obj.StorageClass != "" && !obj.StorageClass.IsValid() {
		return tcaws.PutResult{}, fmt.Errorf("s3 put: %w: storage class %q", tcaws.ErrInvalidInput, obj.StorageClass)
	}

	in := &awss3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
		Metadata:      obj.Metadata,
		StorageClass:  types.StorageClass(obj.StorageClass),
	}
	if obj.ServerSideEncryption {
		in.ServerSideEncryption = types.ServerSideEncryption(tcaws.ServerSideEncryptionAES256)
	}

	out, err := c.api.PutObject(ctx, in)
	if err != nil {
		return tcaws.PutResult{}, classify(err)
	}

	return tcaws.PutResult{
		Bucket:      obj.Bucket,
		Key:         obj.Key,
		ETag:        trimETag(aws.ToString(out.ETag)),
		ContentType: obj.ContentType,
		Size:        int64(len(obj.Body)),
	}, nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (c *Client) PresignObject(ctx context.Context, req tcaws.PresignRequest) (string, error) {
	if c.presigner == nil {
		return "", tcaws.ErrUnsupported
	}

	bucket, key := aws.String(req.Bucket), aws.String(req.Key)
	expires := awss3.WithPresignExpires(req.Expiry)

	var (
		signed *v4.PresignedHTTPRequest
		err    error
	)
	switch req.Method {
	case http.MethodGet, "":
		signed, err = c.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{Bucket: bucket, Key: key}, expires)
	case http.MethodHead:
		signed, err = c.presigner.PresignHeadObject(ctx, &awss3.HeadObjectInput{Bucket: bucket, Key: key}, expires)
	case http.MethodPut:
		signed, err = c.presigner.PresignPutObject(ctx, &awss3.PutObjectInput{Bucket: bucket, Key: key}, expires)
	case http.MethodDelete:
		signed, err = c.presigner.PresignDeleteObject(ctx, &awss3.DeleteObjectInput{Bucket: bucket, Key: key}, expires)
	default:
		return "", fmt.Errorf("%w: cannot presign method %s", tcaws.ErrInvalidInput, req.Method)
	}
	if err != nil {
		return "", classify(err)
	}

	return signed.URL, nil
}

// classify maps SDK errors onto the tcaws error taxonomy.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		noSuchKey    *types.NoSuchKey
		notFound     *types.NotFound
		noSuchBucket *types.NoSuchBucket
	)
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %w", tcaws.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return fmt.Errorf("%w: %w", tcaws.ErrNotFound, err)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %w", tcaws.ErrPermission, err)
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", tcaws.ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", tcaws.ErrPermission, err)
		}
		return fmt.Errorf("%w: %w", tcaws.ErrUpstream, err)
	}

	if apiErr != nil {
		return fmt.Errorf("%w: %w", tcaws.ErrUpstream, err)
	}

	return fmt.Errorf("%w: %w", tcaws.ErrNetwork, err)
}

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}
