package tcaws

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Location identifies an object inside an object store.
type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (l Location) String() string {
	return l.Bucket + "/" + l.Key
}

type Object struct {
	Bucket       string            `json:"bucket"`
	Key          string            `json:"key"`
	Body         []byte            `json:"-"`
	ContentType  string            `json:"content_type"`
	ETag         string            `json:"etag"`
	Size         int64             `json:"size"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// PutInput is what callers hand to Adapter.Put.
type PutInput struct {
	Bucket            string
	Key               string
	Data              []byte
	Metadata          map[string]string
	ReducedRedundancy bool
	Encrypt           bool
}

// PutObject is the prepared request an ObjectStore receives: the key is
// already cleaned and the content type and storage class are resolved.
type PutObject struct {
	Bucket               string
	Key                  string
	Body                 []byte
	ContentType          string
	Metadata             map[string]string
	StorageClass         StorageClass
	ServerSideEncryption bool
}

type PutResult struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	ETag        string `json:"etag"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type PresignRequest struct {
	Bucket string
	Key    string
	Method string
	Expiry time.Duration
}

type StorageClass string

const (
	StorageClassStandard          StorageClass = "STANDARD"
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"
)

func (c StorageClass) IsValid() bool {
	switch c {
	case StorageClassStandard, StorageClassReducedRedundancy:
		return true
	default:
		return false
	}
}

// StorageClassFor maps the reduced redundancy flag to a storage class.
func StorageClassFor(reducedRedundancy bool) StorageClass {
	if reducedRedundancy {
		return StorageClassReducedRedundancy
	}
	return StorageClassStandard
}

// ServerSideEncryptionAES256 is the only server side encryption mode requested by the adapter.
const ServerSideEncryptionAES256 = "AES256"

const (
	// DefaultPresignExpiry is used when a presign request carries no expiry.
	DefaultPresignExpiry = time.Hour
	// MaxPresignExpiry is the longest validity S3 accepts for a presigned URL.
	MaxPresignExpiry = 7 * 24 * time.Hour
)

// ParsePresignMethod normalizes an HTTP method for presigning.
// An empty method means GET.
func ParsePresignMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch m {
	case "":
		return http.MethodGet, nil
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("parse presign method %q: %w", method, ErrInvalidInput)
	}
}
