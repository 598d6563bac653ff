package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/techdufus/axon/internal/app"
	"github.com/techdufus/axon/internal/config"
)

var (
	cfgFile     string
	sessionName string
)

var rootCmd = &cobra.Command{
	Use:   "axon",
	Short: "Terminal multiplexer with a hybrid in-process shell",
	Long: `Axon multiplexes shell sessions across tabs and split panes in one
window. Each pane runs a hybrid shell: built-ins execute in-process,
interactive programs get a real PTY behind a VT100 grid, and everything
else is captured into block-structured scrollback with smart history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return errors.New("axon needs an interactive terminal")
		}
		if _, _, err := term.GetSize(int(os.Stdout.Fd())); err != nil {
			return fmt.Errorf("cannot determine terminal size: %w", err)
		}

		cfg, result, err := config.LoadWithValidation(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var warnings string
		if result.HasErrors() {
			warnings += result.FormatErrors()
		}
		if result.HasWarnings() {
			warnings += result.FormatWarnings()
		}

		return app.Run(cfg, warnings, sessionName)
	},
}

// Execute runs the CLI. Fatal startup errors print to stderr and yield a
// non-zero exit.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/axon/config.json)")
	rootCmd.PersistentFlags().StringVarP(&sessionName, "session", "s", "", "named session to restore and persist")

	rootCmd.AddCommand(themesCmd)
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listThemes(os.Stdout)
	},
}
