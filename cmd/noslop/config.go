package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/noslop/internal/output"
	"github.com/panbanda/noslop/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	cmd.AddCommand(newConfigValidateCmd(opts))
	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a configuration file",
		Long: `Validates a noslop configuration file for syntax errors and invalid values.

Examples:
  noslop config validate                  # Validates default config locations
  noslop config validate -c noslop.toml   # Validates specific file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := messages(cmd)
			result, err := loadConfig(opts, rootPath(args))
			if err != nil {
				f.Error("Configuration validation failed:")
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", err)
				return err
			}
			if result.Source != "" {
				f.Success("Configuration valid: %s", result.Source)
			} else {
				f.Warning("No config file found. Default configuration is valid.")
			}
			return nil
		},
	}
}

func newConfigShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Show the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadConfig(opts, rootPath(args))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if result.Source != "" {
				fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
			} else {
				fmt.Fprintln(w, "# Default configuration (no config file found)")
			}

			content, err := toml.Marshal(result.Config)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = w.Write(content)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var (
		outputPath string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a noslop.toml with the default settings",
		Long: `Creates a noslop.toml configuration file with the default settings.

Examples:
  noslop config init                       # Creates noslop.toml in current directory
  noslop config init -o .noslop/noslop.toml
  noslop config init --force               # Overwrite existing config file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(outputPath); err == nil && !force {
				return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
			}

			if dir := filepath.Dir(outputPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create directory %q: %w", dir, err)
				}
			}

			content, err := defaultConfigTOML()
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			messages(cmd).Success("Created %s", outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "noslop.toml", "Output file path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	return cmd
}

func defaultConfigTOML() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# noslop configuration\n\n")
	buf.Write(content)
	return buf.String(), nil
}

// messages returns a formatter for status lines on the command's stdout.
func messages(cmd *cobra.Command) *output.Formatter {
	w := cmd.OutOrStdout()
	f, _ := output.NewFormatter(output.WithWriter(w), output.WithColor(isTerminal(w)))
	return f
}
