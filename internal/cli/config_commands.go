package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/filedrop/filedrop/internal/api"
	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/constants"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage filedrop client configuration",
		Long: `Configuration management commands for filedrop.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Check the server is reachable
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// readLine prints prompt and returns the trimmed answer, or def when empty.
func readLine(r *bufio.Reader, w io.Writer, prompt, def string) string {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(w, "%s: ", prompt)
	}
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for filedrop.

The configuration will be saved to ~/.config/filedrop/config

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()

			path, err := configPath()
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "filedrop Configuration Setup")
			fmt.Fprintln(out, "============================")
			fmt.Fprintln(out)

			reader := bufio.NewReader(cmd.InOrStdin())
			cfg := config.NewConfig()

			for {
				cfg.ServerURL = readLine(reader, out, "Server URL", constants.DefaultServerURL)
				err := cfg.Validate()
				if err == nil {
					break
				}
				fmt.Fprintf(out, "  Error: %v\n", err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Transfer Settings (press Enter for defaults)")
			fmt.Fprintln(out, "--------------------------------------------")

			delayInput := readLine(reader, out, "Settle delay", cfg.SettleDelay.String())
			if d, err := time.ParseDuration(delayInput); err == nil && d >= 0 {
				cfg.SettleDelay = d
			}
			retriesInput := readLine(reader, out, "Max retries for list/delete", strconv.Itoa(cfg.MaxRetries))
			if v, err := strconv.Atoi(retriesInput); err == nil && v >= 0 && v <= constants.MaxMaxRetries {
				cfg.MaxRetries = v
			}
			cfg.DownloadDir = readLine(reader, out, "Download directory", cfg.DownloadDir)

			fmt.Fprintln(out)
			proxyInput := strings.ToLower(readLine(reader, out, "Configure proxy? [y/N]", ""))
			if proxyInput == "y" || proxyInput == "yes" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Proxy Configuration")
				fmt.Fprintln(out, "-------------------")
				fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
				cfg.ProxyMode = readLine(reader, out, "Proxy mode", "system")

				if cfg.ProxyMode != "no-proxy" {
					cfg.ProxyHost = readLine(reader, out, "Proxy host", "")
					cfg.ProxyPort = 8080
					if v, err := strconv.Atoi(readLine(reader, out, "Proxy port", "8080")); err == nil && v > 0 {
						cfg.ProxyPort = v
					}
					if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
						cfg.ProxyUser = readLine(reader, out, "Proxy user", "")
					}
				}
			} else {
				cfg.ProxyMode = "no-proxy"
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			logger.Info().Str("path", path).Msg("Configuration saved")

			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
			if cfg.ProxyUser != "" {
				fmt.Fprintln(out, "The proxy password is asked for when a command runs.")
			}
			fmt.Fprintln(out, "Test your configuration with: filedrop config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")
	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/filedrop/config)
  2. Environment variables (` + config.EnvServerURL + `)
  3. Command-line flags (--server-url)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if serverURL != "" {
				cfg.ServerURL = serverURL
			}

			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Server:")
			if cfg.ServerURL != "" {
				fmt.Fprintf(out, "  URL: %s\n", cfg.ServerURL)
			} else {
				fmt.Fprintln(out, "  URL: <not set>")
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Transfer Settings:")
			fmt.Fprintf(out, "  Settle Delay: %s\n", cfg.SettleDelay)
			fmt.Fprintf(out, "  Max Retries:  %d\n", cfg.MaxRetries)
			fmt.Fprintf(out, "  Download Dir: %s\n", cfg.DownloadDir)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy Settings:")
			fmt.Fprintf(out, "  Proxy Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Fprintf(out, "  Proxy Host: %s\n", cfg.ProxyHost)
				fmt.Fprintf(out, "  Proxy Port: %d\n", cfg.ProxyPort)
			}
			if cfg.ProxyUser != "" {
				fmt.Fprintf(out, "  Proxy User: %s\n", cfg.ProxyUser)
				if cfg.ProxyPassword != "" {
					fmt.Fprintln(out, "  Proxy Password: <set>")
				}
			}
			if cfg.NoProxy != "" {
				fmt.Fprintf(out, "  No Proxy:   %s\n", cfg.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the server connection",
		Long: `Check that the configured server is reachable and healthy.

Use this to verify the server URL and proxy settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Server URL: %s\n", cfg.ServerURL)
			fmt.Fprintln(out, "Testing connection...")

			client, err := api.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			if err := client.Health(ctx); err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "✗ Connection FAILED")
				fmt.Fprintf(out, "  Error: %v\n", err)
				return fmt.Errorf("connection test failed")
			}

			logger.Info().Msg("Connection test successful")
			fmt.Fprintln(out, "✓ Connection SUCCESSFUL")
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := configPath()
			if err != nil {
				return err
			}
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: filedrop config init")
			}
			return nil
		},
	}
}
