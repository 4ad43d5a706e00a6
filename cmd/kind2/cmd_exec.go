package main

import (
	"github.com/spf13/cobra"

	"kind2/cmd/kind2/driver"
	"kind2/cmd/kind2/prelude"
)

// newExecCommand builds the subcommand for one entry point. run and check
// take --debug; compile does not.
func newExecCommand(g *globalFlags, command driver.Command, short string, withDebug bool) *cobra.Command {
	var debug bool
	entry, _ := command.Entry()

	cmd := &cobra.Command{
		Use:   command.String() + " [file]",
		Short: short,
		Long: short + ".\n\n" +
			"Calls " + entry + " on the text of the file. Without a file, a fuzzy\n" +
			"finder lists the .kind2 and .hvm files below the working directory.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(g.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("stack-size") {
				cfg.StackSize = g.stackSize
				if err := cfg.validate(); err != nil {
					return err
				}
			}
			showDebug := withDebug && cfg.Debug
			if cmd.Flags().Changed("debug") {
				showDebug = debug
			}

			var file string
			if len(args) == 1 {
				file = args[0]
			} else if file, err = pickSource(); err != nil {
				return err
			}

			rep := newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), showDebug)
			rep.config(path, cfg)
			d := &driver.Driver{
				Prelude: prelude.Source,
				NewEngine: func() driver.Engine {
					return &driver.HVM{NodeLimit: cfg.MaxNodes}
				},
				StackSize: uint64(cfg.StackSize),
				Report:    rep,
			}
			res, err := d.Exec(cmd.Context(), command, file)
			if err != nil {
				return err
			}
			rep.stats(res)
			return nil
		},
	}

	if withDebug {
		cmd.Flags().BoolVarP(&debug, "debug", "d", false, "print diagnostics to stderr")
	}
	return cmd
}
