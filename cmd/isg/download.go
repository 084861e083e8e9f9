package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lessuseless-systems/infinite-storage-glitch/orchestrator"
)

func newDownloadCmd() *cobra.Command {
	var (
		output   string
		password string
	)

	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "reassemble and write out a cataloged file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if output == "" {
				return fmt.Errorf("isg: -o/--output is required")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			bar := progressbar.Default(-1, "downloading "+path)

			data, err := a.orch.Download(cmd.Context(), path, orchestrator.DownloadOptions{
				Password: password,
				Progress: bar,
			})
			if err != nil {
				return err
			}
			_ = bar.Finish()

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}

			fmt.Printf("downloaded %s -> %s (%d bytes)\n", path, output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file path")
	cmd.Flags().StringVar(&password, "password", "", "decryption password")

	return cmd
}
