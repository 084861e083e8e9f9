package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lessuseless-systems/infinite-storage-glitch/storage"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "create the storage root directory and ready the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := storage.NewLocalBackend(storageDir); err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Printf("initialized index %s and storage root %s\n", dbPath, storageDir)
			return nil
		},
	}
}
