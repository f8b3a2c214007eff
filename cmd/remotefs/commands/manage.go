package commands

import (
	"github.com/spf13/cobra"

	"github.com/charlesng35/remotefs/pkg/filesystem"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Remove a remote file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		recursive, _ := cmd.Flags().GetBool("recursive")

		if recursive {
			count, err := fs.RemoveAll(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("removed %d files\n", count)
			return nil
		}

		removed, err := fs.Remove(args[0])
		if err != nil {
			return err
		}
		if !removed {
			cmd.Printf("%s does not exist\n", args[0])
		}
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a remote directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		created, err := fs.Mkdir(args[0])
		if err != nil {
			return err
		}
		if !created {
			cmd.Printf("%s already exists\n", args[0])
		}
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <source> <destination>",
	Short: "Move or rename a remote file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		behaviour := filesystem.PreventOverwrite
		if force, _ := cmd.Flags().GetBool("force"); force {
			behaviour = filesystem.AllowOverwrite
		}

		return fs.Rename(args[0], args[1], behaviour)
	},
}

var lnCmd = &cobra.Command{
	Use:   "ln <target> <link>",
	Short: "Create a remote symbolic link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		return fs.Symlink(args[0], args[1])
	},
}

var realpathCmd = &cobra.Command{
	Use:   "realpath <path>",
	Short: "Canonicalise a remote path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		resolved, err := fs.RealPath(args[0])
		if err != nil {
			return err
		}
		cmd.Println(resolved)
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolP("recursive", "r", false, "Remove directories and their contents")
	mvCmd.Flags().BoolP("force", "f", false, "Replace the destination if it exists")
}
