// Package commands implements the CLI commands for the remotefs client.
package commands

import (
	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "remotefs",
	Short: "Remote file I/O over a secure session",
	Long: `remotefs is a command-line client for file operations on a remote
server over a single secure session.

Connection settings come from config.yaml (see --config) and can be
overridden with REMOTEFS_* environment variables or the global flags.

Use "remotefs [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Directory containing config.yaml")
	rootCmd.PersistentFlags().String("host", "", "Server host (overrides config)")
	rootCmd.PersistentFlags().Int("port", 0, "Server port (overrides config)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Username (overrides config)")
	rootCmd.PersistentFlags().Bool("insecure", false, "Skip host key verification")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(lnCmd)
	rootCmd.AddCommand(realpathCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("remotefs %s (commit: %s)\n", Version, Commit)
		return nil
	},
}
