package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

var importPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-load catalog entries from CSV",
	Long: `Bulk-load catalog entries from a CSV file with a header row.

Rows that fail validation or duplicate an existing entry are reported and
skipped; the rest are created.`,
}

var importIngredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Import ingredients from a 'name,measurement_unit' CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runImport(cmd, (*service.CatalogService).ImportIngredientsCSV)
	},
}

var importTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Import tags from a 'name,color[,slug]' CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runImport(cmd, (*service.CatalogService).ImportTagsCSV)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importIngredientsCmd, importTagsCmd)

	importCmd.PersistentFlags().StringVarP(&importPath, "path", "p", "", "CSV file to import (required)")
	_ = importCmd.MarkPersistentFlagRequired("path") //nolint:errcheck // flag is defined above
}

type importFunc func(*service.CatalogService, context.Context, domain.Actor, io.Reader) (*service.ImportReport, error)

func runImport(cmd *cobra.Command, run importFunc) error {
	f, err := os.Open(importPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", importPath, err)
	}
	defer f.Close()

	return withInjector(func(i do.Injector) error {
		catalog := do.MustInvoke[*service.CatalogService](i)

		report, err := run(catalog, cmd.Context(), domain.System(), f)
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), report, func(w io.Writer) {
			fmt.Fprintf(w, "created %d, skipped %d\n", report.Created, len(report.Skipped))
			for _, skipped := range report.Skipped {
				fmt.Fprintf(w, "  line %d (%s): %s\n", skipped.Line, skipped.Row, skipped.Reason)
			}
		})
	})
}
