package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bendis/internal/app"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show how staging dependencies map onto the derived root files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd)
		},
	}
}

func runInspect(ctx context.Context, cmd *cobra.Command) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Inspect(ctx, app.InspectRequest{
		Root:       projectRoot(),
		StagingDir: stagingDir(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printTitle(out, "package "+result.Package)
	printField(out, "staging", pathStyle.Render(result.StagingDir))
	printField(out, "staging lock", strconv.Itoa(result.StagingLocked)+" packages")
	printField(out, "root lock", strconv.Itoa(result.RootLocked)+" packages")
	if !result.RootDerived {
		fmt.Fprintln(out, warnStyle.Render("  ! root Bender.yml is missing or was not generated by bendis"))
	}
	fmt.Fprintln(out, labelStyle.Render("  dependencies:"))
	for _, dep := range result.Dependencies {
		fmt.Fprintf(out, "    - %s (%s)\n", dep.Name, dep.Origin)
		if dep.Declared != "" && dep.Declared != dep.Derived {
			fmt.Fprintf(out, "        %s\n", labelStyle.Render(dep.Declared))
		}
		fmt.Fprintf(out, "        %s\n", pathStyle.Render(dep.Derived))
	}
	printList(out, "managed at root", result.ManagedRoot)
	printList(out, "managed in staging", result.ManagedStaging)
	for _, path := range result.StaleArtifacts {
		fmt.Fprintln(out, warnStyle.Render("  ! leftover of an interrupted run: "+path))
	}
	return nil
}
