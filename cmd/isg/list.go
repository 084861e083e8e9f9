package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "print every cataloged file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			files, err := a.store.ListFiles()
			if err != nil {
				return err
			}

			if len(files) == 0 {
				fmt.Println("no files cataloged")
				return nil
			}

			for _, f := range files {
				if detailed {
					fmt.Printf("%s\t%d bytes\troot=%x\tcreated=%s\n", f.Path, f.Size, f.RootFingerprint, f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
				} else {
					fmt.Printf("%s\t%d bytes\n", f.Path, f.Size)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "show root fingerprint and creation time")
	return cmd
}
