package types

// Settings is the effective tool configuration after flags, environment
// and config file have been merged.
type Settings struct {
	StagingDir      string        `mapstructure:"staging_dir" toml:"staging_dir"`
	Resolver        string        `mapstructure:"resolver" toml:"resolver"`
	Silent          bool          `mapstructure:"silent" toml:"silent"`
	ManageGitignore bool          `mapstructure:"manage_gitignore" toml:"manage_gitignore"`
	LogLevel        string        `mapstructure:"log_level" toml:"log_level"`
	RewriteRules    []RewriteRule `mapstructure:"rewrite_rules" toml:"rewrite_rules"`
}

// DefaultRewriteRules mirrors the public PULP platform repositories onto
// the internal code host.
func DefaultRewriteRules() []RewriteRule {
	return []RewriteRule{
		{
			Pattern: "github.com/pulp-platform/*",
			Target:  "git@code.ihep.ac.cn:heris/heris-platform/*",
		},
	}
}

func DefaultSettings() Settings {
	return Settings{
		StagingDir:      DefaultStagingDir,
		Resolver:        "bender",
		Silent:          true,
		ManageGitignore: true,
		LogLevel:        "info",
		RewriteRules:    DefaultRewriteRules(),
	}
}
