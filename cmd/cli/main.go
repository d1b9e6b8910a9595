package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dlozanor/finanzas/internal/ai"
	"github.com/dlozanor/finanzas/internal/categorize"
	"github.com/dlozanor/finanzas/internal/importer"
	infraBQ "github.com/dlozanor/finanzas/internal/infra/bigquery"
	"github.com/dlozanor/finanzas/internal/logger"
	"github.com/dlozanor/finanzas/internal/parser"
	"github.com/dlozanor/finanzas/internal/storage"
	"github.com/dlozanor/finanzas/internal/storage/memory"
)

var (
	flagProject string
	flagDataset string
	flagLocal   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finanzas",
		Short: "Importador de extractos bancarios",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagProject, "project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "Google Cloud project id")
	rootCmd.PersistentFlags().StringVar(&flagDataset, "dataset", infraBQ.DefaultDatasetID, "BigQuery dataset id")
	rootCmd.PersistentFlags().BoolVar(&flagLocal, "local", false, "use in-memory storage instead of BigQuery")

	rootCmd.AddCommand(newBanksCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newCategoriesCommand())
	rootCmd.AddCommand(newRecategorizeCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore picks the BigQuery repo or the seeded in-memory store. The
// returned closer is a no-op for the in-memory case.
func openStore(ctx context.Context) (storage.Store, func(), error) {
	if flagLocal {
		return memory.NewSeededStore(), func() {}, nil
	}
	if flagProject == "" {
		return nil, nil, fmt.Errorf("project id is required (use --project or GOOGLE_CLOUD_PROJECT)")
	}
	repo, err := infraBQ.NewRepo(ctx, flagProject, flagDataset)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}

func newBanksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range parser.DefaultRegistry().Banks() {
				fmt.Printf("%-20s %s — %s\n", b.ID, b.Name, b.Description)
			}
			return nil
		},
	}
}

func newImportCommand() *cobra.Command {
	var (
		bank     string
		model    string
		throttle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Parse, categorize and store a bank statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.New()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			registry := parser.DefaultRegistry()
			parsed, err := registry.ParseFile(args[0], bank)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d movimientos, %d filas descartadas\n", parsed.Bank, parsed.Count, len(parsed.Skipped))
			for _, s := range parsed.Skipped {
				fmt.Printf("  línea %d: %s\n", s.Line, s.Reason)
			}

			engine := categorize.NewEngine(store, ai.NewGeminiClassifier(model), log)
			imp := importer.New(engine, store, throttle, log)

			res := imp.ImportBatch(ctx, parsed.Bank, parsed.Transactions)
			fmt.Printf("Importados %d movimientos\n", res.Imported)
			for _, e := range res.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			if res.Imported == 0 && len(res.Errors) > 0 {
				return fmt.Errorf("no se importó ningún movimiento")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "bank id (see 'finanzas banks')")
	cmd.Flags().StringVar(&model, "model", ai.DefaultModelName, "Gemini model used for categorization")
	cmd.Flags().DurationVar(&throttle, "throttle", time.Second, "pause between AI-categorized rows")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			categories, err := store.Categories(ctx)
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Printf("%3d  %-20s %s\n", c.ID, c.Name, c.Type)
			}
			return nil
		},
	}
}

func newRecategorizeCommand() *cobra.Command {
	var categoryID int64

	cmd := &cobra.Command{
		Use:   "recategorize <description>",
		Short: "Move every transaction with the description to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.New()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			cat, err := store.CategoryByID(ctx, categoryID)
			if err != nil {
				return err
			}
			if cat == nil {
				return fmt.Errorf("categoría %d no existe", categoryID)
			}

			engine := categorize.NewEngine(store, ai.NewGeminiClassifier(""), log)
			updated, err := engine.Correct(ctx, args[0], categoryID)
			if err != nil {
				return err
			}

			fmt.Printf("Actualizados %d movimientos a %q\n", updated, cat.Name)
			return nil
		},
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "target category id")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
