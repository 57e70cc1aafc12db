package cli

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bendis/internal/app"
	"bendis/internal/types"
)

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}

// currentSettings decodes the merged flag, environment and config file
// values.
func currentSettings() (types.Settings, error) {
	settings := types.DefaultSettings()
	settings.RewriteRules = nil
	if err := viper.Unmarshal(&settings); err != nil {
		return types.Settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid configuration").
			WithCause(err)
	}
	return settings, nil
}

func newAppService() (app.Service, error) {
	settings, err := currentSettings()
	if err != nil {
		return app.Service{}, err
	}
	return app.NewService(settings)
}

func projectRoot() string {
	return viper.GetString("root")
}

func stagingDir() string {
	return viper.GetString("staging_dir")
}
