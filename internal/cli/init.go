package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bendis/internal/app"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the staging directory with a blank manifest and override file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd)
		},
	}
}

func runInit(ctx context.Context, cmd *cobra.Command) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Init(ctx, app.InitRequest{
		Root:       projectRoot(),
		StagingDir: stagingDir(),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printTitle(out, "workspace initialized")
	printField(out, "staging", pathStyle.Render(result.StagingDir))
	printList(out, "written", result.Created)
	fmt.Fprintln(out, hintStyle.Render("  declare dependencies in the staging Bender.yml, then run `bendis update`"))
	return nil
}
