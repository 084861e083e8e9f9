package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "print file count and total size across the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.store.ComputeStats()
			if err != nil {
				return err
			}

			fmt.Printf("files:        %d\n", s.FileCount)
			fmt.Printf("logical size: %d bytes\n", s.TotalLogical)
			fmt.Printf("stored size:  %d bytes\n", s.TotalStored)

			platforms := make([]string, 0, len(s.StoredByPlatform))
			for p := range s.StoredByPlatform {
				platforms = append(platforms, p)
			}
			sort.Strings(platforms)
			for _, p := range platforms {
				fmt.Printf("  %s: %d bytes\n", p, s.StoredByPlatform[p])
			}
			return nil
		},
	}
}
