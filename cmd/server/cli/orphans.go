package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"passgate/internal/registration/models"
)

func newOrphansCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List accounts created without a profile",
		Long: `Lists identity accounts whose profile write failed after the account was
created. Each one needs its profile recreated or the account removed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPostgresApp(cmd.Context(), func(ctx context.Context, a *app) error {
				orphans, err := a.orphans.ListUnresolved(ctx, limit)
				if err != nil {
					return err
				}
				return printOrphans(cmd.OutOrStdout(), orphans, jsonOutput)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func printOrphans(w io.Writer, orphans []models.OrphanedAccount, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(orphans)
	}
	if len(orphans) == 0 {
		fmt.Fprintln(w, "No unresolved orphaned accounts.")
		return nil
	}

	fmt.Fprintf(w, "%-36s %-32s %-20s %s\n", "USER ID", "EMAIL", "DETECTED", "REASON")
	for _, o := range orphans {
		fmt.Fprintf(w, "%-36s %-32s %-20s %s\n", o.UserID, o.Email, o.DetectedAt.Format(time.DateTime), o.Reason)
	}
	return nil
}
