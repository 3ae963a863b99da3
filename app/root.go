// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exiled-panel",
	Short: "ExiledRP Panel is the web panel for the ExiledRP community",
	Long: `ExiledRP Panel is the web panel for the ExiledRP roleplay community.
Members sign in with Discord, staff manage notes, sanctions and absences,
and players handle mail, emergency calls, animations and jobs.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
