package commands

import (
	"io"
	"os"
	gopath "path"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/charlesng35/remotefs/pkg/filesystem"
)

var getCmd = &cobra.Command{
	Use:   "get <remote> [local]",
	Short: "Download a remote file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote := args[0]
		local := gopath.Base(remote)
		if len(args) == 2 {
			local = args[1]
		}

		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		src, err := fs.OpenInput(remote, 0)
		if err != nil {
			return err
		}

		dst, err := os.Create(local)
		if err != nil {
			_ = src.Close()
			return err
		}

		n, err := io.Copy(dst, src)
		err = multierr.Combine(err, src.Close(), dst.Close())
		if err != nil {
			return err
		}

		cmd.Printf("downloaded %s (%d bytes)\n", remote, n)
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put <local> [remote]",
	Short: "Upload a file to the remote server",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local := args[0]
		remote := filepath.Base(local)
		if len(args) == 2 {
			remote = args[1]
		}

		noReplace, _ := cmd.Flags().GetBool("no-replace")

		fs, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		src, err := os.Open(local)
		if err != nil {
			return err
		}

		var intent filesystem.Intent
		if noReplace {
			intent |= filesystem.NoReplace
		}

		dst, err := fs.OpenOutput(remote, intent)
		if err != nil {
			_ = src.Close()
			return err
		}

		n, err := io.Copy(dst, src)
		err = multierr.Combine(err, dst.Close(), src.Close())
		if err != nil {
			return err
		}

		cmd.Printf("uploaded %s (%d bytes)\n", remote, n)
		return nil
	},
}

func init() {
	putCmd.Flags().Bool("no-replace", false, "Fail if the remote file already exists")
}
