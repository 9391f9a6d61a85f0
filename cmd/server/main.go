package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "quill",
		Short: "A minimal blog with an authenticated admin area",
		// Running the bare binary starts the server
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the blog server",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in serve.go
	}

	hashPasswordCmd = &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for an auth.users entry of the config file",
		Args:  cobra.ExactArgs(1),
		RunE:  runHashPassword, // Defined in hash.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (default quill.yaml when present)")
	rootCmd.AddCommand(serveCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
