package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/classify"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/resolve"
)

var resolveOrgID string

var resolveCmd = &cobra.Command{
	Use:   "resolve <description>",
	Short: "Extract and resolve entity mentions from a task description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		description := args[0]

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		orgID := resolveOrgID
		if orgID == "" {
			orgID = cfg.Org.ID
		}

		entries, err := e.Store.LoadEntries(ctx, orgID)
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}
		snap := resolve.NewSnapshot(entries)

		ex, err := e.extractor(entries)
		if err != nil {
			return err
		}
		candidates, err := ex.Extract(ctx, description)
		if err != nil {
			return eris.Wrap(err, "extract candidates")
		}
		zap.L().Info("extraction complete",
			zap.Int("candidates", len(candidates)),
			zap.Int("catalog_entries", snap.Len()),
		)

		verdicts, err := e.Resolver.Batch(ctx, candidates, snap, cfg.Resolver.Concurrency)
		if err != nil {
			return eris.Wrap(err, "resolve batch")
		}

		suggestions, err := classify.SuggestAll(verdicts, e.Policies)
		if err != nil {
			return eris.Wrap(err, "classify verdicts")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveOrgID, "org", "", "organization id (default from config)")
	rootCmd.AddCommand(resolveCmd)
}
