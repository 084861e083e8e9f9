package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "remove a file from the index and best-effort delete its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.orch.Delete(cmd.Context(), path); err != nil {
				return err
			}

			fmt.Printf("deleted %s\n", path)
			return nil
		},
	}
}
