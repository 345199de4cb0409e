package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/footprint/internal/catalog"
	"github.com/nao1215/footprint/internal/config"
	"github.com/nao1215/footprint/internal/model"
)

// NewVariationsCmd creates the variations command.
func NewVariationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variations <username>",
		Short: "Print likely alternative handles for a username",
		Long: `Variations prints handles a person is likely to use besides the given one:
case changes, digit and word affixes, year suffixes, separator swaps and
stripped forms. The list is sorted and includes the username itself.

Use "footprint search username --variations" to search all of them.`,
		Example: `  footprint variations john.doe
  footprint variations alice --limit 0`,
		Args: cobra.ExactArgs(1),
		RunE: runVariationsCmd,
	}

	cmd.Flags().Int("limit", config.DefaultVariationLimit, "Maximum number of variations (0 means no limit)")

	return cmd
}

func runVariationsCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return config.ErrInvalidVariationLimit
	}

	username, err := catalog.Normalize(model.KindUsername, args[0])
	if err != nil {
		return err
	}

	for _, v := range catalog.Variations(username, time.Now(), limit) {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
