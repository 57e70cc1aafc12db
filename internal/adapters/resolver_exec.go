package adapters

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"mvdan.cc/sh/v3/shell"

	"bendis/internal/ports"
	"bendis/internal/shared"
	"bendis/internal/types"
)

// ResolverExecAdapter runs the external resolver as a subprocess with an
// explicit working directory.
type ResolverExecAdapter struct {
	Command []string
	// Silent captures the output of update runs and only reports it on
	// failure.
	Silent bool
	Stdout io.Writer
	Stderr io.Writer
}

// NewResolverExecAdapter splits command with shell quoting rules, so a
// configured resolver may carry its own arguments.
func NewResolverExecAdapter(command string, silent bool) (ResolverExecAdapter, error) {
	fields, err := shell.Fields(command, nil)
	if err != nil {
		return ResolverExecAdapter{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid resolver command " + command).
			WithCause(err)
	}
	if len(fields) == 0 {
		return ResolverExecAdapter{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver command is empty")
	}
	return ResolverExecAdapter{
		Command: fields,
		Silent:  silent,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}, nil
}

func (a ResolverExecAdapter) Update(ctx context.Context, dir string) error {
	cmd := a.command(ctx, dir, "update")
	log.Ctx(ctx).Debug().
		Str("dir", dir).
		Str("command", strings.Join(cmd.Args, " ")).
		Bool("silent", a.Silent).
		Msg("running resolver")

	if a.Silent {
		output, err := cmd.CombinedOutput()
		if err != nil {
			return types.NewError(
				types.ErrResolutionFailure,
				"resolver update failed in "+dir+": "+shared.CommandError(output, err).Error(),
				err,
			)
		}
		return nil
	}
	cmd.Stdout = a.Stdout
	cmd.Stderr = a.Stderr
	if err := cmd.Run(); err != nil {
		return types.NewError(types.ErrResolutionFailure, "resolver update failed in "+dir, err)
	}
	return nil
}

func (a ResolverExecAdapter) Passthrough(ctx context.Context, dir string, args []string, stdio ports.Stdio) (int, error) {
	cmd := a.command(ctx, dir, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	log.Ctx(ctx).Debug().
		Str("dir", dir).
		Strs("args", args).
		Msg("forwarding to resolver")

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, types.NewError(types.ErrResolutionFailure, "failed to start resolver "+a.Command[0], err)
}

func (a ResolverExecAdapter) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	argv := append(append([]string(nil), a.Command[1:]...), args...)
	cmd := exec.CommandContext(ctx, a.Command[0], argv...)
	cmd.Dir = dir
	return cmd
}

var _ ports.ResolverPort = ResolverExecAdapter{}
