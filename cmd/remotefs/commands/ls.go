package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls <path>",
	Short: "List a remote directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		it, err := fs.ReadDir(args[0])
		if err != nil {
			return err
		}
		defer it.Close()

		long, _ := cmd.Flags().GetBool("long")

		for {
			entry, err := it.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			if entry.Name == "." || entry.Name == ".." {
				continue
			}

			if long {
				cmd.Printf("%s %12d %s %s\n",
					entry.Info.Mode(), entry.Info.Size(),
					entry.Info.ModTime().Format("Jan _2 15:04"), entry.Name)
			} else {
				cmd.Println(entry.Name)
			}
		}
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show attributes of a remote file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		follow, _ := cmd.Flags().GetBool("follow")
		info, err := fs.Attributes(args[0], follow)
		if err != nil {
			return err
		}

		cmd.Printf("Name:    %s\n", info.Name())
		cmd.Printf("Size:    %d\n", info.Size())
		cmd.Printf("Mode:    %s\n", info.Mode())
		cmd.Printf("ModTime: %s\n", info.ModTime())
		cmd.Printf("IsDir:   %t\n", info.IsDir())
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolP("long", "l", false, "Show attributes alongside names")
	statCmd.Flags().Bool("follow", false, "Follow symbolic links")
}
