// Package commands implements the foodgramctl subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/foodgramapp/foodgram-server/internal/config"
	"github.com/foodgramapp/foodgram-server/internal/di"
)

var (
	// Global flags
	dataPath   string
	envFile    string
	logLevel   string
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "foodgramctl",
	Short: "Foodgram administration tool",
	Long: `foodgramctl manages a Foodgram data directory without going through the
HTTP API: bulk-loading the ingredient and tag catalogs, granting the admin
role and rebuilding the search index.

Stop the server before running commands that write to the database.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Data directory (default: $DATA_PATH or ~/Foodgram/data)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// newInjector loads configuration from the global flags and registers the
// core services. The caller must shut the injector down.
func newInjector() (*do.RootScope, error) {
	args := []string{"-env-file", envFile, "-log-level", logLevel}
	if dataPath != "" {
		args = append(args, "-data-path", dataPath)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	di.RegisterCore(injector)
	return injector, nil
}

// withInjector runs fn against a fresh injector and shuts it down after.
func withInjector(fn func(do.Injector) error) error {
	injector, err := newInjector()
	if err != nil {
		return err
	}
	runErr := fn(injector)
	if err := injector.Shutdown(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// printResult writes v as indented JSON with --json, or calls text otherwise.
func printResult(w io.Writer, v any, text func(io.Writer)) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
