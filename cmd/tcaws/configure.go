package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/tcaws/config"
)

const defaultConfigFile = "tcaws.yaml"

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Create or inspect the configuration file",
	Long: `Create or inspect the tcaws configuration file.

Without a subcommand you are prompted for the backend, buckets and paths,
and the answers are written to ./tcaws.yaml (or the file named by --config).`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

var configureShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
environment variables and flags.

Secrets are hidden by default; use --show-secrets to reveal them.`,
	Args: cobra.NoArgs,
	RunE: runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureShowCmd)
	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	current, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	cfg := *current

	configPath := cfgFile
	if configPath == "" {
		configPath = defaultConfigFile
	}

	if _, statErr := os.Stat(configPath); statErr == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", configPath),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	backendSelect := promptui.Select{
		Label: "Object store backend",
		Items: []string{config.BackendAWS, config.BackendMinio, config.BackendFilesystem},
	}
	_, backend, err := backendSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Store.Backend = backend

	switch backend {
	case config.BackendFilesystem:
		if cfg.Store.Path, err = promptString("Data directory", cfg.Store.Path, required("data directory")); err != nil {
			return handlePromptError(err)
		}
	default:
		if cfg.Store.Region, err = promptString("Region", cfg.Store.Region, required("region")); err != nil {
			return handlePromptError(err)
		}

		validateEndpoint := optionalURL
		if backend == config.BackendMinio {
			validateEndpoint = func(input string) error {
				if input == "" {
					return errors.New("endpoint is required for minio")
				}
				return optionalURL(input)
			}
		}
		if cfg.Store.Endpoint, err = promptString("Endpoint URL", cfg.Store.Endpoint, validateEndpoint); err != nil {
			return handlePromptError(err)
		}

		if cfg.Store.AccessKey, err = promptString("Access Key (empty for the default chain)", cfg.Store.AccessKey, nil); err != nil {
			return handlePromptError(err)
		}
		if cfg.Store.AccessKey != "" {
			secretPrompt := promptui.Prompt{
				Label: "Secret Key",
				Mask:  '*',
			}
			if cfg.Store.SecretKey, err = secretPrompt.Run(); err != nil {
				return handlePromptError(err)
			}
		}
	}

	if cfg.Loader.Bucket, err = promptString("Default loader bucket", cfg.Loader.Bucket, nil); err != nil {
		return handlePromptError(err)
	}

	allowed, err := promptString("Allowed buckets (comma separated)", strings.Join(cfg.Loader.AllowedBuckets, ","), nil)
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Loader.AllowedBuckets = splitCSV(allowed)

	if cfg.Loader.RootPath, err = promptString("Loader root path", cfg.Loader.RootPath, nil); err != nil {
		return handlePromptError(err)
	}

	if cfg.Storage.Bucket, err = promptString("Storage bucket", cfg.Storage.Bucket, nil); err != nil {
		return handlePromptError(err)
	}

	if cfg.Storage.RootPath, err = promptString("Storage root path", cfg.Storage.RootPath, nil); err != nil {
		return handlePromptError(err)
	}

	port, err := promptString("HTTP server port", strconv.Itoa(cfg.Server.Port), validPort)
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Server.Port, _ = strconv.Atoi(port)

	if err := writeConfigFile(configPath, &cfg); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s.\n", configPath)
	return nil
}

func runConfigureShow(cmd *cobra.Command, _ []string) error {
	current, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	cfg := *current

	if !showSecrets {
		cfg.Store.SecretKey = maskSecret(cfg.Store.SecretKey)
	}

	if jsonOutput {
		return writeJSON(os.Stdout, cfg)
	}
	return encodeYAML(os.Stdout, &cfg)
}

// writeConfigFile writes cfg as YAML, readable again by config.Load.
func writeConfigFile(path string, cfg *config.Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}

	if err := encodeYAML(f, cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close config file: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func promptString(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func required(name string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func optionalURL(input string) error {
	if input == "" {
		return nil
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

func validPort(input string) error {
	port, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
