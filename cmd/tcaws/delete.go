package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/tcaws"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <path> [path...]",
	Short: "Remove objects from the storage bucket",
	Long: `Remove one or more objects from the storage bucket.

Deletes run concurrently on the worker pool.

Examples:
  tcaws delete thumbs/a/b.jpg
  tcaws delete old/a.jpg old/b.jpg old/c.jpg
  tcaws delete -q temp/file.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := appFromCommand(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	futures := make([]*tcaws.Future[struct{}], len(args))
	for i, path := range args {
		futures[i] = a.storage.Remove(ctx, path)
	}

	results := make([]DeleteResult, len(args))
	for i, path := range args {
		loc := a.storage.Location(path)
		_, err := futures[i].Wait(ctx)
		results[i] = DeleteResult{
			Path:    path,
			Bucket:  loc.Bucket,
			Key:     loc.Key,
			Deleted: err == nil,
			Err:     err,
		}
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if hasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}

func hasDeleteErrors(results []DeleteResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// exitError is returned when we want to exit with a specific code
// but don't want to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}
