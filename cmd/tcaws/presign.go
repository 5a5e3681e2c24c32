package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/tcaws"
)

var (
	presignMethod  string
	presignExpires time.Duration
	presignStorage bool
)

var presignCmd = &cobra.Command{
	Use:   "presign <path>",
	Short: "Generate a presigned URL",
	Long: `Generate a presigned URL for a request path.

By default the path is resolved like a loader request. With --storage it is
placed under the storage bucket and root path instead.

Examples:
  tcaws presign photos/a/b.jpg
  tcaws presign --method PUT --expires 10m --storage thumbs/a/b.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runPresign,
}

func init() {
	presignCmd.Flags().StringVarP(&presignMethod, "method", "m", http.MethodGet, "HTTP method: GET, HEAD, PUT, DELETE")
	presignCmd.Flags().DurationVarP(&presignExpires, "expires", "e", 0, "validity (default: presign.expiry from config)")
	presignCmd.Flags().BoolVar(&presignStorage, "storage", false, "presign under the storage bucket")
}

func runPresign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	method, err := tcaws.ParsePresignMethod(presignMethod)
	if err != nil {
		return err
	}

	a, err := appFromCommand(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	var loc tcaws.Location
	if presignStorage {
		loc = a.storage.Location(path)
	} else {
		var useHTTP bool
		loc, useHTTP = a.loader.Locate(path)
		if useHTTP {
			return fmt.Errorf("presign %s: %w: http loader paths cannot be presigned", path, tcaws.ErrInvalidInput)
		}
	}

	expiry := presignExpires
	if expiry <= 0 {
		expiry = a.cfg.PresignExpiry()
	}

	url, err := a.adapter.Presign(ctx, loc.Bucket, loc.Key, method, expiry).Wait(ctx)
	if err != nil {
		return err
	}

	return getFormatter().FormatPresign(os.Stdout, PresignResult{
		Bucket:  loc.Bucket,
		Key:     loc.Key,
		Method:  method,
		URL:     url,
		Expires: time.Now().Add(expiry).UTC(),
	})
}
