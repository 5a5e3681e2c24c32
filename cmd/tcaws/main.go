package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/tcaws/config"
)

var (
	version = "dev"

	cfgFile    string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "tcaws",
	Short:   "S3 source image loader and result storage for thumbnail servers",
	Long: `tcaws resolves image request paths to S3 buckets and keys, loads the
source objects and stores processed results back into S3, MinIO or a local
directory.

Run "tcaws serve" to expose the loader and storage over HTTP, or use the
object commands (resolve, get, put, delete, presign) directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if cfgFile != "" {
			files = []string{cfgFile}
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path (default: ./tcaws.yaml)")
	flags.String("backend", "", "object store backend: aws, minio, filesystem (env: TC_AWS_BACKEND)")
	flags.String("region", "", "S3 region (default: eu-west-1, env: TC_AWS_REGION)")
	flags.String("endpoint", "", "S3 compatible endpoint URL (env: TC_AWS_ENDPOINT)")
	flags.String("bucket", "", "default loader bucket (env: TC_AWS_LOADER_BUCKET)")
	flags.String("storage-bucket", "", "bucket results are stored in (env: TC_AWS_STORAGE_BUCKET)")
	flags.String("data", "", "data directory for the filesystem backend (default: ./data)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&jsonOutput, "json", false, "output as JSON")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(presignCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getFormatter returns the formatter selected by the global output flags.
func getFormatter() Formatter {
	return NewFormatter(jsonOutput, quiet)
}
