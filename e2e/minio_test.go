package e2e_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

var (
	minioOnce      sync.Once
	minioErr       error
	minioEndpoint  string
	minioContainer testcontainers.Container
)

// getSharedMinio returns the endpoint of a MinIO server shared by all tests.
// The container is started on first use and terminated in TestMain.
func getSharedMinio(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MinIO e2e test in short mode")
	}

	minioOnce.Do(func() {
		ctx := context.Background()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "minio/minio:latest",
				ExposedPorts: []string{"9000/tcp"},
				Env: map[string]string{
					"MINIO_ROOT_USER":     minioUser,
					"MINIO_ROOT_PASSWORD": minioPassword,
				},
				Cmd: []string{"server", "/data"},
				WaitingFor: wait.ForHTTP("/minio/health/live").
					WithPort("9000/tcp").
					WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			minioErr = fmt.Errorf("start minio container: %w", err)
			return
		}
		minioContainer = container

		endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "http")
		if err != nil {
			minioErr = fmt.Errorf("get minio endpoint: %w", err)
			return
		}
		minioEndpoint = endpoint
	})

	if minioErr != nil {
		t.Fatalf("minio: %v", minioErr)
	}

	return minioEndpoint
}

func stopSharedMinio() {
	if minioContainer == nil {
		return
	}
	if err := testcontainers.TerminateContainer(minioContainer); err != nil {
		fmt.Printf("failed to terminate container: %s\n", err)
	}
}

// createBuckets creates buckets on the shared MinIO server using the admin credentials.
func createBuckets(t *testing.T, endpoint string, buckets ...string) {
	t.Helper()

	host := endpoint[len("http://"):]
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(minioUser, minioPassword, ""),
		Region: "us-east-1",
	})
	if err != nil {
		t.Fatalf("create minio client: %v", err)
	}

	ctx := context.Background()
	for _, bucket := range buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			t.Fatalf("check bucket %s: %v", bucket, err)
		}
		if exists {
			continue
		}
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
			t.Fatalf("create bucket %s: %v", bucket, err)
		}
	}
}
