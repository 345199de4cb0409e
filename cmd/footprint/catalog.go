package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nao1215/footprint/internal/catalog"
	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/report"
)

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect built-in catalogs and validate custom ones",
		Long: `Catalog lists the endpoints probed for each subject kind
(username, phone, subdomain, directory), exports them as YAML to use as a
starting point for a custom catalog, and validates catalog files.`,
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogExportCmd())
	cmd.AddCommand(newCatalogValidateCmd())

	return cmd
}

func kindsUsage() string {
	kinds := model.SubjectKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newCatalogListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list <kind>",
		Short:   "List the built-in endpoints of a subject kind",
		Long:    "List prints the built-in endpoints for one of: " + kindsUsage() + ".",
		Example: "  footprint catalog list username --category gaming",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseSubjectKind(args[0])
			if err != nil {
				return err
			}
			categories, err := cmd.Flags().GetStringSlice("category")
			if err != nil {
				return err
			}

			c, err := catalog.Build(kind, catalog.BuildOptions{Categories: categories})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := tablewriter.NewTable(out)
			table.Header("Name", "Category", "URL", "Scrapable")
			for _, ep := range c.Endpoints {
				if err := table.Append(ep.Name, report.CategoryDisplayName(ep.Category), ep.URLTemplate, strconv.FormatBool(ep.Scrapable)); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%d endpoints in %d categories\n", c.Len(), len(c.Categories()))
			return nil
		},
	}

	cmd.Flags().StringSlice("category", nil, "Only list endpoints in these categories")

	return cmd
}

func newCatalogExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "export <kind>",
		Short:   "Print a built-in catalog as YAML",
		Example: "  footprint catalog export directory > my-paths.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseSubjectKind(args[0])
			if err != nil {
				return err
			}
			c, err := catalog.Builtin(kind)
			if err != nil {
				return err
			}
			data, err := catalog.Marshal(c)
			if err != nil {
				return fmt.Errorf("failed to encode catalog: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog YAML file",
		Long: `Validate parses a catalog file and checks that every endpoint has a name,
a URL with exactly one {} slot, and that no two endpoints share a name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s catalog with %d endpoints in %d categories\n",
				args[0], c.Kind, c.Len(), len(c.Categories()))
			return nil
		},
	}
}
