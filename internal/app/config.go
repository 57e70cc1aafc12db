package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bendis/internal/policies"
	"bendis/internal/types"
)

// EnsureConfig writes the default settings to req.Path when no file
// exists there yet.
func (s Service) EnsureConfig(ctx context.Context, req ConfigRequest) (ConfigResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return ConfigResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("config path is required")
	}
	result := ConfigResult{Path: path}
	if s.Workspace.Exists(path) {
		return result, nil
	}
	if err := s.Config.Write(path, types.DefaultSettings()); err != nil {
		return ConfigResult{}, err
	}
	result.Created = true
	result.Settings = types.DefaultSettings()
	log.Ctx(ctx).Info().Str("path", path).Msg("default configuration written")
	return result, nil
}

// ValidateConfig reads req.Path and checks the values bendis cannot
// run with.
func (s Service) ValidateConfig(ctx context.Context, req ConfigRequest) (ConfigResult, error) {
	settings, err := s.Config.Read(req.Path)
	if err != nil {
		return ConfigResult{}, err
	}
	if strings.TrimSpace(settings.StagingDir) == "" {
		return ConfigResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("staging_dir must not be empty")
	}
	if strings.TrimSpace(settings.Resolver) == "" {
		return ConfigResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver must not be empty")
	}
	if err := policies.ValidateRewriteRules(settings.RewriteRules); err != nil {
		return ConfigResult{}, err
	}
	log.Ctx(ctx).Debug().Str("path", req.Path).Int("rewrite_rules", len(settings.RewriteRules)).Msg("configuration valid")
	return ConfigResult{Path: req.Path, Settings: settings}, nil
}
