package cli

import (
	"context"

	"github.com/spf13/cobra"

	"bendis/internal/app"
	"bendis/internal/ports"
)

func newBenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   passthroughCmd + " [args...]",
		Short: "Run bender at the project root; unknown commands end up here",
		Example: "  bendis sources --flatten\n" +
			"  bendis bender -- checkout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBender(cmd.Context(), cmd, args)
		},
	}
}

func runBender(ctx context.Context, cmd *cobra.Command, args []string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	code, err := service.Passthrough(ctx, app.PassthroughRequest{
		Root: projectRoot(),
		Args: args,
		Stdio: ports.Stdio{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		},
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
