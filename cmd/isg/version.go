package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lessuseless-systems/infinite-storage-glitch/build"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the isg version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Infinite Storage Glitch v%s\n", build.Version)
			if build.GitRevision != "" {
				fmt.Printf("Git Revision: %s\n", build.GitRevision)
			}
			if build.BuildTime != "" {
				fmt.Printf("Build Time:   %s\n", build.BuildTime)
			}
		},
	}
}
