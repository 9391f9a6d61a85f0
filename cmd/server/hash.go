package main

import (
	"fmt"

	"github.com/dfryer1193/quill/internal/auth"
	"github.com/spf13/cobra"
)

func runHashPassword(cmd *cobra.Command, args []string) error {
	hash, err := auth.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
