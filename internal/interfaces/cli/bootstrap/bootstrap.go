// Package bootstrap holds the setup shared by the CLI commands.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/infrastructure/config"
	"singmerge/internal/shared/logger"
)

// Flags are the persistent flags every command accepts
type Flags struct {
	Env        string
	ConfigPath string
}

// Bind registers the flags on cmd
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Env, "env", "e", "", "Server mode override (debug, release, test)")
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Load reads the config and initializes the process logger from it.
func (f *Flags) Load() (*config.Config, logger.Interface, error) {
	cfg, err := config.LoadFile(f.Env, f.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.IsDebug()); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// ReadLinks reads newline-separated links from path, or from stdin when path is "" or "-".
func ReadLinks(path string, stdin io.Reader) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}
	return usecases.SplitLinks(string(data)), nil
}

// ReadTemplate reads the template file at path.
func ReadTemplate(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("no template given; pass --template or set merge.template_path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return data, nil
}

// WriteOutput writes content to path, or to stdout when path is "" or "-".
func WriteOutput(path string, stdout io.Writer, content string) error {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// StringsFlag returns the flag value when the user set it, otherwise fallback.
func StringsFlag(cmd *cobra.Command, name string, value, fallback []string) []string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// StringFlag is StringsFlag for a single value
func StringFlag(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// BoolFlag is StringsFlag for a boolean
func BoolFlag(cmd *cobra.Command, name string, value, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}
