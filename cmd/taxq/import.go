package main

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/xbrlmap/internal/admin"
	"github.com/JonMunkholm/xbrlmap/internal/logging"
	"github.com/JonMunkholm/xbrlmap/internal/source"
)

func (a *app) importCmd() *cobra.Command {
	var (
		databaseURL string
		reset       bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store the documents below --dir in PostgreSQL",
		Long: `Validate every document below --dir and store it in the
taxonomy_documents table served by TAXONOMY_SOURCE=postgres.

Example:
  taxq import --dir taxonomies --database-url postgres://localhost/xbrl
  taxq import --dir taxonomies --reset`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			ctx := cmd.Context()

			from, err := source.NewDirSource(a.dir, a.glob)
			if err != nil {
				return err
			}

			pool, err := pgxpool.New(ctx, databaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			to := source.NewPostgresSource(pool)
			if err := to.EnsureSchema(ctx); err != nil {
				return err
			}

			imp := &admin.Importer{
				From:   from,
				To:     to,
				Logger: logging.New(a.errOut, a.logLevel, "text"),
			}
			result, err := imp.ImportAll(ctx, reset)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete every stored document first")
	return cmd
}
