package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for footprint.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "footprint",
		Short: "Find where a username, phone number or domain shows up",
		Long: `footprint probes a catalog of public endpoints concurrently for one subject
and reports where the subject appears to exist.

Subjects can be usernames, phone numbers, domains (subdomain enumeration)
or web sites (common path discovery). Every finished search is stored in a
local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and progress output")

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewVariationsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCatalogCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parents.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}
