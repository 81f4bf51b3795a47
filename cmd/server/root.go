package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd serves the API when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "notes-server",
	Short: "Multi-user notes API backed by CouchDB",
	Long: `notes-server stores per-user notes behind a JSON HTTP API.
Users sign up and log in for a bearer token; updates carry a version
number so concurrent edits never silently overwrite each other.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
