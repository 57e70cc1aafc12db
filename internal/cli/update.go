package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bendis/internal/app"
)

type updateOptions struct {
	Force bool
}

func newUpdateCommand() *cobra.Command {
	opts := updateOptions{}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Resolve the staging manifest and derive the root files for the mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace root manifests that bendis did not generate")
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))
	return cmd
}

func runUpdate(ctx context.Context, cmd *cobra.Command, opts updateOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Update(ctx, app.UpdateRequest{
		Root:       projectRoot(),
		StagingDir: stagingDir(),
		Force:      resolveBool(cmd, opts.Force, "force", "force"),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printTitle(out, "workspace updated")
	printField(out, "dependencies", strconv.Itoa(result.Dependencies))
	printField(out, "locked at root", strconv.Itoa(result.RootLocked))
	for _, dep := range result.PathDependencies {
		where := "external"
		if dep.IsRootLocal {
			where = "root-local"
		}
		printField(out, "path "+dep.Name, fmt.Sprintf("%s (%s)", pathStyle.Render(dep.Reference()), where))
	}
	if len(result.Changed) == 0 {
		fmt.Fprintln(out, okStyle.Render("  root files already up to date"))
	}
	printList(out, "rewritten", result.Changed)
	for _, drift := range result.Drift {
		root := drift.Root
		if root == "" {
			root = "missing"
		}
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  ! %s: upstream %s, mirror %s", drift.Name, drift.Staging, root)))
	}
	if !result.CachePresent {
		fmt.Fprintln(out, warnStyle.Render("  ! no dependency cache at the root; bender did not check anything out"))
	}
	return nil
}
