package main

import (
	"fmt"
	"net/url"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/sagarc03/tcaws"
)

var (
	getOutput string
	getStdout bool
)

var getCmd = &cobra.Command{
	Use:   "get <path> [local-path]",
	Short: "Load a source object",
	Long: `Load the object a request path resolves to and write it to a file.

The path is resolved exactly like an HTTP GET request: allowed buckets,
the default bucket fallback and, when enabled, the HTTP loader.

Examples:
  tcaws get photos/a/b.jpg
  tcaws get photos/a/b.jpg ./b.jpg
  tcaws get --stdout photos/a/b.jpg > b.jpg`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "output file path")
	getCmd.Flags().BoolVar(&getStdout, "stdout", false, "write to stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	remotePath := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if getOutput != "" {
		localPath = getOutput
	}
	if getStdout {
		localPath = "-"
	}

	a, err := appFromCommand(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	loaded, err := a.loader.Load(ctx, remotePath).Wait(ctx)
	if err != nil {
		return err
	}

	if localPath == "" {
		localPath = defaultLocalName(loaded)
	}

	result := GetResult{
		Path:        remotePath,
		Source:      loaded.Source,
		Bucket:      loaded.Location.Bucket,
		Key:         loaded.Location.Key,
		URL:         loaded.URL,
		LocalPath:   localPath,
		ContentType: loaded.Object.ContentType,
		ETag:        loaded.Object.ETag,
		Size:        int64(len(loaded.Object.Body)),
	}

	formatter := getFormatter()

	if localPath == "-" {
		if _, err := os.Stdout.Write(loaded.Object.Body); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		// Don't print metadata when writing to stdout (unless JSON mode)
		if jsonOutput {
			return formatter.FormatGet(os.Stderr, result)
		}
		return nil
	}

	if err := os.WriteFile(localPath, loaded.Object.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", localPath, err)
	}

	return formatter.FormatGet(os.Stdout, result)
}

// defaultLocalName derives a file name from the key or URL that was loaded.
func defaultLocalName(loaded tcaws.Loaded) string {
	name := loaded.Location.Key
	if loaded.Source == tcaws.SourceHTTP {
		if u, err := url.Parse(loaded.URL); err == nil {
			name = u.Path
		}
	}

	base := path.Base(name)
	if base == "." || base == "/" || base == "" {
		return "download"
	}
	return base
}
