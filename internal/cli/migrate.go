package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bendis/internal/app"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move a legacy .bendis staging directory to the current location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), cmd)
		},
	}
}

func runMigrate(ctx context.Context, cmd *cobra.Command) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Migrate(ctx, app.MigrateRequest{
		Root:       projectRoot(),
		StagingDir: stagingDir(),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !result.Migrated {
		fmt.Fprintln(out, okStyle.Render("nothing to migrate"))
		return nil
	}
	printTitle(out, "staging directory migrated")
	printField(out, "from", pathStyle.Render(result.From))
	printField(out, "to", pathStyle.Render(result.To))
	fmt.Fprintln(out, hintStyle.Render("  run `bendis update` to regenerate the root files"))
	return nil
}
