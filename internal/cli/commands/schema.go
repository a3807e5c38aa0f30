package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prodigyview/helium/internal/cli/ui"
)

func (r *runner) newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Database schema commands",
	}
	cmd.AddCommand(r.newSchemaSyncCommand())
	return cmd
}

func (r *runner) newSchemaSyncCommand() *cobra.Command {
	var force, yes bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create missing tables and columns for every model",
		Long: `Check the schema of every registered model against the active database
connection, creating missing tables and adding missing columns.

Models whose configuration disables table creation or column checks are
skipped unless --force is given. Existing columns are never altered.`,
		Example: `  helium schema sync
  helium schema sync --force --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			success, info, warn, _ := r.colors()

			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}
			a, err := r.newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			names := a.Definitions().Names()
			if len(names) == 0 {
				warn.Fprintln(out, "No models registered")
				return nil
			}

			if !yes {
				message := fmt.Sprintf("Sync the schema of %d model(s) on connection %q?", len(names), a.Storage().Connection())
				if force {
					message = fmt.Sprintf("Force a schema sync of %d model(s) on connection %q, ignoring model settings?", len(names), a.Storage().Connection())
				}
				ok, err := r.opts.Confirm(message)
				if err != nil {
					return err
				}
				if !ok {
					info.Fprintln(out, "Schema sync cancelled")
					return nil
				}
			}

			results, syncErr := a.SyncSchemas(ctx, force)

			table := ui.NewTable(out, r.noColor, "MODEL", "TABLE", "STATUS")
			for _, res := range results {
				if res.Err != nil {
					table.AddStatusRow(ui.Fail, res.Model, res.Table, "failed: "+res.Err.Error())
					continue
				}
				table.AddStatusRow(ui.OK, res.Model, res.Table, "ok")
			}
			table.Render()

			if syncErr != nil {
				return fmt.Errorf("schema sync failed: %w", syncErr)
			}
			success.Fprintf(out, "✓ %d model(s) in sync\n", len(results))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Create tables and check columns regardless of model settings")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
