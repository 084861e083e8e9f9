// Command isg is the command-line front-end for the storage pipeline: it
// wires the index, a storage dispatcher, and the orchestrator together and
// exposes them as the init/upload/download/list/delete/stats commands of
// §6. Everything it does is a thin shell over the orchestrator package;
// there is no unique engineering here beyond flag parsing and output
// formatting.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lessuseless-systems/infinite-storage-glitch/build"
)

// Exit codes, inspired by sysexits.h, matching the convention the teacher's
// own CLI used.
const (
	exitCodeGeneral = 1
	exitCodeUsage   = 64
)

var (
	// Global flags (§6).
	dbPath     string
	storageDir string
	attachment string
	logLevel   string
)

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func die(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(exitCodeGeneral)
}

func main() {
	root := &cobra.Command{
		Use:           "isg",
		Short:         "Infinite Storage Glitch v" + build.Version,
		Long:          "Infinite Storage Glitch v" + build.Version + " — content-addressed file storage dispersed across heterogeneous backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "isg.db", "path to the relational index database")
	root.PersistentFlags().StringVar(&storageDir, "storage", "isg_storage", "root directory for the local storage backend")
	root.PersistentFlags().StringVar(&attachment, "attachment-webhook", os.Getenv("ISG_ATTACHMENT_WEBHOOK"), "webhook URL for the attachment storage backend")
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("ISG_LOG", "info"), "log level: trace|debug|info|warn|error")

	root.AddCommand(
		newInitCmd(),
		newUploadCmd(),
		newDownloadCmd(),
		newListCmd(),
		newDeleteCmd(),
		newStatsCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		die(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
