package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/techdufus/axon/internal/theme"
	"github.com/techdufus/axon/internal/update"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var checkUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("axon %s\n", Version)
		if !checkUpdate {
			return nil
		}
		result, err := update.NewChecker(Version).Check()
		if err != nil {
			return err
		}
		if result.UpdateAvailable {
			fmt.Printf("update available: %s (%s)\n", result.Latest, result.Hint())
		} else {
			fmt.Println("up to date")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&checkUpdate, "check", false, "check for a newer release")
	rootCmd.AddCommand(versionCmd)
}

func listThemes(w io.Writer) error {
	active := theme.Default
	for _, name := range theme.Names() {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
	return nil
}
