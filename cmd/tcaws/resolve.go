package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/tcaws"
	"github.com/sagarc03/tcaws/config"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path> [path...]",
	Short: "Show the bucket and key a request path maps to",
	Long: `Resolve request paths without touching the object store.

A leading segment naming an allowed bucket selects that bucket; anything else
is looked up in the default bucket under the loader root path.

Examples:
  tcaws resolve photos/a/b.jpg
  tcaws --bucket images resolve unknown/x.png
  tcaws --json resolve https://example.com/a.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	resolver := tcaws.NewResolver(cfg.LoaderConfig(), nil)

	results := make([]ResolveResult, 0, len(args))
	for _, path := range args {
		if resolver.UseHTTPLoader(path) {
			results = append(results, ResolveResult{Path: path, HTTPLoader: true})
			continue
		}
		loc := resolver.Resolve(path)
		results = append(results, ResolveResult{Path: path, Bucket: loc.Bucket, Key: loc.Key})
	}

	return getFormatter().FormatResolve(os.Stdout, results)
}
