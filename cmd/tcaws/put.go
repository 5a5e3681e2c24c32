package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var putMetadata map[string]string

var putCmd = &cobra.Command{
	Use:   "put <local-path> <path>",
	Short: "Store a file in the storage bucket",
	Long: `Store a local file under the storage bucket and root path.

The content type is detected from the file contents. Reduced redundancy and
server side encryption follow the storage section of the configuration.

Examples:
  tcaws put ./thumb.jpg thumbs/a/b.jpg
  tcaws put --meta owner=alice --meta source=upload ./a.png a.png`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringToStringVar(&putMetadata, "meta", nil, "user metadata as key=value (repeatable)")
}

func runPut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	localPath := args[0]
	remotePath := args[1]

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}

	a, err := appFromCommand(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	res, err := a.storage.Put(ctx, remotePath, data, putMetadata).Wait(ctx)
	if err != nil {
		return err
	}

	return getFormatter().FormatPut(os.Stdout, PutResult{LocalPath: localPath, PutResult: res})
}
