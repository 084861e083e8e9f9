package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lessuseless-systems/infinite-storage-glitch/orchestrator"
)

func newUploadCmd() *cobra.Command {
	var (
		encoding     string
		encrypt      bool
		compress     bool
		password     string
		dataShards   int
		parityShards int
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "encode, disperse, and catalog a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if encrypt && password == "" {
				fmt.Print("password: ")
				fmt.Scanln(&password)
			}

			bar := progressbar.Default(-1, "uploading "+path)

			opts := orchestrator.UploadOptions{
				Encrypt:      encrypt,
				Password:     password,
				Compress:     compress,
				Encoding:     orchestrator.Encoding(encoding),
				DataShards:   dataShards,
				ParityShards: parityShards,
				Progress:     bar,
			}

			f, err := a.orch.Upload(cmd.Context(), path, data, opts)
			if err != nil {
				return err
			}
			_ = bar.Finish()

			fmt.Printf("uploaded %s (%d bytes, %d blocks, root %s)\n", path, len(data), f.BlockCount(), f.RootFingerprint.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", string(orchestrator.EncodingNone), "visual codec to run: none|pixel|color|qr")
	cmd.Flags().BoolVarP(&encrypt, "encrypt", "e", false, "encrypt the file before storing")
	cmd.Flags().BoolVar(&compress, "compress", false, "zstd-compress the file before storing")
	cmd.Flags().StringVar(&password, "password", "", "encryption password (prompted if --encrypt is set and this is omitted)")
	cmd.Flags().IntVar(&dataShards, "data-shards", 0, "erasure-coding data shard count (requires --parity-shards)")
	cmd.Flags().IntVar(&parityShards, "parity-shards", 0, "erasure-coding parity shard count (requires --data-shards)")

	return cmd
}
