package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const configHeader = "# kind2 configuration\n" +
	"#\n" +
	"# stack_size  minimum stack size for compilation and reduction (e.g. 64MiB)\n" +
	"# max_nodes   engine memory budget in cells, 0 = unlimited\n" +
	"# debug       print diagnostics for run and check by default\n\n"

func newConfigCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the kind2 config file",
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(g))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: "Create the config directory and write " + configFileName + " with the\n" +
			"default settings.\n\n" +
			"The default config directory is resolved with this priority:\n" +
			"  $KIND2_CONFIG_DIR > $XDG_CONFIG_HOME/kind2 > ~/.config/kind2",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				var err error
				dir, err = resolveConfigDir()
				if err != nil {
					return err
				}
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dir, err)
			}

			var buf bytes.Buffer
			buf.WriteString(configHeader)
			if err := encodeConfig(&buf, defaultConfig()); err != nil {
				return err
			}
			path := filepath.Join(dir, configFileName)
			if err := writeConfigFile(path, buf.Bytes(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "initialised %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&dir, "dir", "", "target config directory (default: auto-resolved)")
	return cmd
}

func writeConfigFile(path string, content []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func newConfigShowCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(g.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("stack-size") {
				cfg.StackSize = g.stackSize
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			return encodeConfig(cmd.OutOrStdout(), cfg)
		},
	}
}
