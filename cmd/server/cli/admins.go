package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"passgate/internal/registration/models"
)

func newAdminsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage admins and their registration passcodes",
	}

	cmd.AddCommand(newAdminsCreateCmd())
	cmd.AddCommand(newAdminsListCmd())

	return cmd
}

func newAdminsCreateCmd() *cobra.Command {
	var (
		id       string
		name     string
		passcode string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an active admin with a registration passcode",
		Example: `  passgate admins create --name "Coach Carter" --passcode team42
  passgate admins create --id 9f1c... --passcode TEAM42  # replaces that admin's passcode`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPostgresApp(cmd.Context(), func(ctx context.Context, a *app) error {
				if id == "" {
					id = uuid.NewString()
				}
				admin, err := models.NewAdminRecord(id, name, passcode, time.Now().UTC())
				if err != nil {
					return err
				}
				if err := a.admins.Save(ctx, admin); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved admin %s with passcode %s\n", admin.ID, admin.RegistrationPasscode)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "admin id (generated when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().StringVar(&passcode, "passcode", "", "registration passcode (required)")
	_ = cmd.MarkFlagRequired("passcode")

	return cmd
}

func newAdminsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active admins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPostgresApp(cmd.Context(), func(ctx context.Context, a *app) error {
				admins, err := a.admins.ListActive(ctx)
				if err != nil {
					return err
				}
				return printAdmins(cmd.OutOrStdout(), admins, jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func printAdmins(w io.Writer, admins []*models.AdminRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}
	if len(admins) == 0 {
		fmt.Fprintln(w, "No active admins. Use 'passgate admins create' to add one.")
		return nil
	}

	fmt.Fprintf(w, "%-36s %-24s %-12s %s\n", "ID", "NAME", "PASSCODE", "CREATED")
	for _, a := range admins {
		fmt.Fprintf(w, "%-36s %-24s %-12s %s\n", a.ID, a.DisplayName(), a.RegistrationPasscode, a.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// withPostgresApp runs fn against the durable stores and closes them after.
func withPostgresApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requirePostgres(); err != nil {
		return err
	}
	return fn(ctx, a)
}
