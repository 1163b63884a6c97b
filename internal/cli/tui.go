package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/sagtrack/internal/app"
)

var errNoTerminal = errors.New("the TUI needs a terminal; use a subcommand such as `sagtrack history` for scripted output")

func newTUICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, rt)
		},
	}
}

func runTUI(cmd *cobra.Command, rt *runtime) error {
	if !stdoutIsTerminal() {
		return errNoTerminal
	}
	return app.Run(cmd.Context(), app.Options{
		Config:    rt.cfg,
		PrefsPath: rt.flags.prefsPath,
		Lang:      rt.tr.Lang(),
		Logger:    rt.logger,
	})
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
