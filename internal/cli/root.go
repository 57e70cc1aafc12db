package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bendis/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	envPrefix      = "BENDIS"
	configName     = ".bendis"
	configType     = "toml"
	passthroughCmd = "bender"
)

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	Root       string
	StagingDir string
}

func Execute() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

// run executes the command line and returns the process exit code.
// Arguments that do not start with a bendis command are forwarded to the
// resolver.
func run(ctx context.Context, args []string) int {
	root := newRootCommand()
	root.SetArgs(dispatchArgs(root, args))
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return exitErr.Code
	}
	fmt.Fprintln(root.ErrOrStderr(), renderError(err))
	return exitCodeForError(err)
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:   "bendis",
		Short: "Mirror-aware workspace manager for the bender HDL dependency resolver",
		Long: "bendis keeps the dependency declarations in a staging directory and derives the\n" +
			"root Bender.yml, .bender.yml and Bender.lock from them, rewriting upstream git\n" +
			"remotes to mirrors. Commands bendis does not know are passed to bender.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile, viper.GetString("root")); err != nil {
				return err
			}
			logger := setupLogging(viper.GetString("log_level"))
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path (default: .bendis.toml in the project root, then ~/.config/bendis)")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&cfg.Root, "root", ".", "Project root")
	cmd.PersistentFlags().StringVar(&cfg.StagingDir, "staging-dir", "", "Staging directory, relative to the project root")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("root", cmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("staging_dir", cmd.PersistentFlags().Lookup("staging-dir"))

	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newBenderCommand())
	return cmd
}

func initConfig(configFile string, root string) error {
	setDefaults()
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName(configName)
	viper.SetConfigType(configType)
	viper.AddConfigPath(root)
	viper.AddConfigPath("$HOME/.config/bendis")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read config file").
			WithCause(err)
	}
	return nil
}

func setDefaults() {
	defaults := types.DefaultSettings()
	viper.SetDefault("root", ".")
	viper.SetDefault("staging_dir", defaults.StagingDir)
	viper.SetDefault("resolver", defaults.Resolver)
	viper.SetDefault("silent", defaults.Silent)
	viper.SetDefault("manage_gitignore", defaults.ManageGitignore)
	viper.SetDefault("log_level", defaults.LogLevel)
	rules := make([]map[string]any, 0, len(defaults.RewriteRules))
	for _, rule := range defaults.RewriteRules {
		rules = append(rules, map[string]any{"pattern": rule.Pattern, "target": rule.Target})
	}
	viper.SetDefault("rewrite_rules", rules)
}

func setupLogging(level string) zerolog.Logger {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return log.Logger
}

// dispatchArgs rewrites a command line whose first positional argument is
// not a bendis command into an invocation of the bender passthrough
// command. Global flags in front of it are kept.
func dispatchArgs(root *cobra.Command, args []string) []string {
	valueFlags := map[string]bool{}
	root.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		if flag.Value.Type() != "bool" {
			valueFlags["--"+flag.Name] = true
		}
	})
	for idx := 0; idx < len(args); idx++ {
		arg := args[idx]
		if strings.HasPrefix(arg, "-") {
			name, _, hasValue := strings.Cut(arg, "=")
			if !valueFlags[name] {
				return args
			}
			if !hasValue {
				idx++
			}
			continue
		}
		if isBendisCommand(root, arg) {
			return args
		}
		out := make([]string, 0, len(args)+2)
		out = append(out, args[:idx]...)
		out = append(out, passthroughCmd, "--")
		return append(out, args[idx:]...)
	}
	return args
}

func isBendisCommand(root *cobra.Command, name string) bool {
	switch name {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	for _, cmd := range root.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return false
}

// ExitError carries an exit code chosen by a command. A nil Err means the
// failure was already reported, as with a resolver passthrough.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitCodeForError(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if kind, ok := types.KindOf(err); ok {
		switch kind {
		case types.ErrMalformedManifest, types.ErrUnknownOverrideTarget, types.ErrInitConflict:
			return 2
		case types.ErrGitignoreConflict:
			return 3
		case types.ErrResolutionFailure:
			return 4
		case types.ErrPathDependencyOutsideRoot, types.ErrNotInitialized:
			return 5
		case types.ErrWorkspaceBusy:
			return 6
		}
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
