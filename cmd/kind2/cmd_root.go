package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kind2/cmd/kind2/driver"
	"kind2/cmd/kind2/prelude"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	stackSize  ByteSize
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{stackSize: driver.DefaultStackSize}

	root := &cobra.Command{
		Use:   appName,
		Short: "Run, check and compile Kind2 programs",
		Long: `Run, check and compile Kind2 programs.

Each command compiles the embedded Kind2 program together with the given file,
calls one of its entry points on the text of the file and prints the result.

Settings are read from config.yml in the config directory:
  $KIND2_CONFIG_DIR > $XDG_CONFIG_HOME/kind2 > ~/.config/kind2`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "",
		"config file (default: <config dir>/"+configFileName+")")
	root.PersistentFlags().Var(&g.stackSize, "stack-size",
		"minimum stack size for compilation and reduction, e.g. 128MiB")

	root.AddCommand(newExecCommand(g, driver.CmdRun, "Run a program's Main", true))
	root.AddCommand(newExecCommand(g, driver.CmdCheck, "Check a program", true))
	root.AddCommand(newExecCommand(g, driver.CmdCompile, "Compile a program", false))
	root.AddCommand(newConfigCommand(g))
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the driver and prelude versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (prelude %s)\n", appName, version, prelude.Version)
		},
	}
}
