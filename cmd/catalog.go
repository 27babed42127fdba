package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/catalog"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

var (
	catalogOrgID      string
	catalogType       string
	catalogImportPath string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the organization entity catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		orgID := catalogOrgID
		if orgID == "" {
			orgID = cfg.Org.ID
		}

		var entries []model.CatalogEntry
		if catalogType != "" {
			t, err := model.ParseEntityType(catalogType)
			if err != nil {
				return err
			}
			entries, err = e.Store.ListEntries(ctx, orgID, t)
			if err != nil {
				return eris.Wrap(err, "list entries")
			}
		} else {
			entries, err = e.Store.LoadEntries(ctx, orgID)
			if err != nil {
				return eris.Wrap(err, "load entries")
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog entries from a CSV, XLSX, or YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		orgID := catalogOrgID
		if orgID == "" {
			orgID = cfg.Org.ID
		}

		entries, err := readCatalogFile(catalogImportPath, orgID)
		if err != nil {
			return err
		}

		if err := e.Store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}

		n, err := e.Store.ImportEntries(ctx, entries)
		if err != nil {
			return eris.Wrap(err, "import entries")
		}

		zap.L().Info("import complete",
			zap.Int64("upserted", n),
			zap.Int("parsed", len(entries)),
			zap.String("file", catalogImportPath),
		)
		return nil
	},
}

func readCatalogFile(path, orgID string) ([]model.CatalogEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return catalog.ReadCSV(f, orgID)
	case ".xlsx":
		return catalog.ReadXLSX(path, orgID)
	case ".yaml", ".yml":
		return catalog.ReadYAML(path, orgID)
	default:
		return nil, eris.Errorf("unsupported catalog file %s (want .csv, .xlsx, or .yaml)", path)
	}
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogOrgID, "org", "", "organization id (default from config)")
	catalogListCmd.Flags().StringVar(&catalogType, "type", "", "filter by entity type")
	catalogImportCmd.Flags().StringVar(&catalogImportPath, "file", "", "path to catalog file (required)")
	_ = catalogImportCmd.MarkFlagRequired("file")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}
