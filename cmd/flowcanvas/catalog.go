package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/catalog/sqlite"
	"flowcanvas/internal/config"
)

var errNoDatabase = errors.New("no catalog database configured (set catalog.database or pass --db)")

// loadCatalog builds the operator catalog from the configured sources. The
// built-in schemas are replaced by the YAML file, and both by a non-empty database.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.New(catalog.Defaults())
	if err != nil {
		return nil, err
	}
	source := "built-in"

	if cfg.Path != "" {
		schemas, err := catalog.LoadYAMLFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("catalog file: %w", err)
		}
		if len(schemas) > 0 {
			if err := cat.Replace(schemas); err != nil {
				return nil, fmt.Errorf("catalog file: %w", err)
			}
			source = cfg.Path
		}
	}

	if cfg.Database != "" {
		store, err := sqlite.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("catalog database: %w", err)
		}
		defer store.Close()
		n, err := store.Load(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("catalog database: %w", err)
		}
		if n > 0 {
			source = cfg.Database
		}
	}

	logger.Info("operator catalog loaded", "source", source, "operator_types", cat.Len())
	return cat, nil
}

func newCatalogCmd(a *app) *cobra.Command {
	var dbPath string

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage operator schemas",
	}
	catalogCmd.PersistentFlags().StringVar(&dbPath, "db", "", "catalog database (overrides catalog.database)")

	database := func() (string, error) {
		if dbPath != "" {
			return dbPath, nil
		}
		if a.cfg.Catalog.Database != "" {
			return a.cfg.Catalog.Database, nil
		}
		return "", errNoDatabase
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the operator types that can be dropped on the canvas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Catalog
			if dbPath != "" {
				cfg.Database = dbPath
			}
			cat, err := loadCatalog(cmd.Context(), cfg, a.logger)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tNAME\tGROUP\tIN\tOUT")
			for _, s := range cat.Schemas() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
					s.OperatorType, s.UserFriendlyName, s.OperatorGroupName, s.NumInputPorts, s.NumOutputPorts)
			}
			return tw.Flush()
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the effective catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Catalog
			if dbPath != "" {
				cfg.Database = dbPath
			}
			cat, err := loadCatalog(cmd.Context(), cfg, a.logger)
			if err != nil {
				return err
			}
			return catalog.WriteYAML(cmd.OutOrStdout(), cat.Schemas())
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store the schemas of a YAML catalog file in the catalog database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := database()
			if err != nil {
				return err
			}
			schemas, err := catalog.LoadYAMLFile(args[0])
			if err != nil {
				return err
			}

			store, err := sqlite.New(path)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.ImportSchemas(cmd.Context(), schemas); err != nil {
				return err
			}
			a.logger.Info("catalog imported", "file", args[0], "database", path, "operator_types", len(schemas))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d operator types\n", len(schemas))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete TYPE",
		Short: "Remove an operator type from the catalog database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := database()
			if err != nil {
				return err
			}
			store, err := sqlite.New(path)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.DeleteSchema(cmd.Context(), args[0])
		},
	}

	catalogCmd.AddCommand(listCmd, exportCmd, importCmd, deleteCmd)
	return catalogCmd
}
