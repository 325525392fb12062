package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of wayfinder",
		// The version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wayfinder version %s\n", strings.TrimSpace(wayfinder.Version))
		},
	}
}
