package commands

import (
	"fmt"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Maintain the recipe search index",
}

var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withInjector(func(i do.Injector) error {
			admin := do.MustInvoke[*service.AdminService](i)

			n, err := admin.ReindexSearch(cmd.Context(), domain.System())
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), map[string]int{"indexed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "indexed %d recipes\n", n)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.AddCommand(searchReindexCmd)
}
