package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"postergeist/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set instagram.username and instagram.password before running postergeist.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			windows := make([]string, 0, len(cfg.Schedule.Windows))
			for _, pair := range cfg.Schedule.Windows {
				windows = append(windows, strings.Join(pair, "-"))
			}

			rows := [][]string{
				{"Image directory", cfg.Paths.ImageDir},
				{"Work directory", cfg.Paths.WorkDir},
				{"History", cfg.Paths.HistoryPath},
				{"Account", cfg.Instagram.Username},
				{"Default city", cfg.Instagram.DefaultCity},
				{"Location range (km)", fmt.Sprintf("%g", cfg.Instagram.LocationRangeKm)},
				{"Posts per slot", fmt.Sprintf("%d", cfg.Instagram.PostLimitPerSlot)},
				{"Theme tag", cfg.Instagram.ThemeTag},
				{"Windows", strings.Join(windows, ", ")},
				{"Delay (s)", fmt.Sprintf("%d-%d", cfg.Schedule.MinDelaySeconds, cfg.Schedule.MaxDelaySeconds)},
				{"Vision", yesNo(cfg.Vision.Enabled)},
				{"OpenAI captions", yesNo(cfg.OpenAI.Enabled)},
				{"Log format", cfg.Logging.Format},
				{"Log level", cfg.Logging.Level},
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
