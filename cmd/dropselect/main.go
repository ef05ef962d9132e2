package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/dropselect/internal/config"
	"github.com/jask/dropselect/internal/keys"
	"github.com/jask/dropselect/internal/logging"
	"github.com/jask/dropselect/internal/store"
	"github.com/jask/dropselect/internal/tui"
)

var version = "0.1.0"

var (
	flagConfig   string
	flagRemember bool
	flagOutput   string
	flagForce    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dropselect",
	Short: "Pick values from two dropdown selectors",
	Long: `dropselect shows a multi-select and a single-select dropdown over the same
option list and prints the final selections on exit.

Examples:
  dropselect                         # Default five options
  dropselect --config opts.toml      # Options and key bindings from a file
  dropselect --remember -o json      # Restore last run, print JSON
  dropselect init                    # Write an editable config file`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch flagOutput {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (want text, json or yaml)", flagOutput)
		}
		return run(cmd.Context())
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration, including every key binding",
	Long: `Write the current configuration to --config, $DROPSELECT_CONFIG or
~/.config/dropselect/config.toml. The file lists the options and every key
binding as [[keys]] tables, ready to edit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := writeConfig(flagConfig, flagForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (default ~/.config/dropselect/config.toml)")
	initCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
	rootCmd.Flags().BoolVar(&flagRemember, "remember", false, "restore and persist selections between runs")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "output format: text, json, yaml")
}

func run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if flagRemember {
		cfg.State.Enabled = true
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logger.Close()

	registry := keys.NewRegistry()
	if err := registry.ApplyOverrides(cfg.KeyOverrides()); err != nil {
		return fmt.Errorf("keys: %w", err)
	}

	options, err := cfg.SelectorOptions()
	if err != nil {
		return fmt.Errorf("options: %w", err)
	}

	params := tui.Params{
		Options: options,
		Keys:    registry,
		Logger:  logger,
		Width:   cfg.UI.Width,
	}
	params.Multi, params.Single = tui.DefaultSelection(options)

	if cfg.State.Enabled {
		st, err := store.Open(cfg.State.Path)
		if err != nil {
			return fmt.Errorf("state: %w", err)
		}
		defer st.Close()

		params.Multi, params.Single, err = tui.RestoreSelection(ctx, st, options)
		if err != nil {
			// A broken state file should not block the picker.
			logger.Printf("warn: %v", err)
			params.Multi, params.Single = tui.DefaultSelection(options)
		}
		params.Store = st
	}

	logger.Printf("start: %d options, state=%v", len(options), cfg.State.Enabled)

	h := tui.New(ctx, params)
	p := tea.NewProgram(h, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	multi, single := h.Selections()
	out, err := formatOutput(newResult(multi, single), flagOutput)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	fmt.Println(out)
	return nil
}
