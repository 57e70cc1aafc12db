package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"mvdan.cc/sh/v3/shell"

	"bendis/internal/app"
)

const defaultEditor = "nano"

type configOptions struct {
	Print bool
}

func newConfigCommand() *cobra.Command {
	opts := configOptions{}
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Edit the bendis configuration file",
		Long: "Writes a default .bendis.toml in the project root when none exists, opens it\n" +
			"in $VISUAL or $EDITOR and validates the result.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Print, "print", false, "Print the effective configuration instead of editing")
	return cmd
}

func runConfig(ctx context.Context, cmd *cobra.Command, opts configOptions) error {
	if opts.Print {
		settings, err := currentSettings()
		if err != nil {
			return err
		}
		data, err := toml.Marshal(settings)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode configuration").
				WithCause(err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	service, err := newAppService()
	if err != nil {
		return err
	}
	path := configPath(cmd)
	if _, err := service.EnsureConfig(ctx, app.ConfigRequest{Path: path}); err != nil {
		return err
	}
	if err := openEditor(ctx, cmd, path); err != nil {
		return err
	}
	result, err := service.ValidateConfig(ctx, app.ConfigRequest{Path: path})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printTitle(out, "configuration valid")
	printField(out, "file", pathStyle.Render(result.Path))
	printField(out, "staging", result.Settings.StagingDir)
	printField(out, "resolver", result.Settings.Resolver)
	return nil
}

// configPath is the file named by --config, or .bendis.toml in the
// project root.
func configPath(cmd *cobra.Command) string {
	if flag := cmd.Flags().Lookup("config"); flag != nil && flag.Value.String() != "" {
		return flag.Value.String()
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(projectRoot(), configName+"."+configType)
}

func openEditor(ctx context.Context, cmd *cobra.Command, path string) error {
	editor := strings.TrimSpace(os.Getenv("VISUAL"))
	if editor == "" {
		editor = strings.TrimSpace(os.Getenv("EDITOR"))
	}
	if editor == "" {
		editor = defaultEditor
	}
	argv, err := shell.Fields(editor, nil)
	if err != nil || len(argv) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cannot parse editor command " + editor).
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Strs("editor", argv).Str("path", path).Msg("opening configuration")
	editorCmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	editorCmd.Stdin = cmd.InOrStdin()
	editorCmd.Stdout = cmd.OutOrStdout()
	editorCmd.Stderr = cmd.ErrOrStderr()
	if err := editorCmd.Run(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("editor " + argv[0] + " failed").
			WithCause(err)
	}
	return nil
}
