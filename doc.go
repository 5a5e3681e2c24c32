// Package tcaws resolves image request paths into S3 bucket/key pairs and
// forwards object operations to an S3-compatible object store.
//
// The package is split into a pure part and an asynchronous part.
//
// # Path Resolution
//
// Resolve, CleanKey and UseHTTPLoader are side-effect free and safe to call
// from any goroutine:
//
//	cfg := tcaws.LoaderConfig{
//	    AllowedBuckets: []string{"photos"},
//	    DefaultBucket:  "fallback",
//	}
//
//	tcaws.Resolve(cfg, "/photos/a/b.jpg") // {photos a/b.jpg}
//	tcaws.Resolve(cfg, "/other/a/b.jpg")  // {fallback other/a/b.jpg}
//
// When the first path segment is not an allowed bucket, the whole path
// (including that segment) becomes the key in the default bucket.
//
// # Store Adapter
//
// Adapter dispatches get, put, delete and presign calls to an ObjectStore on
// an Executor and hands back a Future. Callers never block on network I/O:
//
//	pool := tcaws.NewPool(10)
//	defer pool.Close()
//
//	adapter := tcaws.NewAdapter(store, pool)
//	obj, err := adapter.Get(ctx, "photos", "a/b.jpg").Wait(ctx)
//	if errors.Is(err, tcaws.ErrNotFound) {
//	    // missing key
//	}
//
// # Backends
//
// ObjectStore implementations live in sub packages: s3 (AWS SDK for Go v2),
// miniostore (minio-go) and filesystem (local directory, for development).
//
// Loader and Storage combine the resolver and the adapter into the two entry
// points a media server needs: loading source images and storing results.
package tcaws
