package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"bendis/internal/types"
)

// Migrate moves a legacy .bendis staging directory to the configured
// staging location. The move is a single rename after the legacy
// directory has been checked to hold a complete workspace.
func (s Service) Migrate(ctx context.Context, req MigrateRequest) (MigrateResult, error) {
	layout, err := resolveLayout(req.Root, req.StagingDir)
	if err != nil {
		return MigrateResult{}, err
	}
	legacy := layout.inRoot(types.LegacyStagingDir)
	result := MigrateResult{From: legacy, To: layout.Staging}
	if !s.Workspace.Exists(legacy) {
		log.Ctx(ctx).Info().Str("dir", legacy).Msg("no legacy staging directory; nothing to migrate")
		return result, nil
	}
	if layout.Staging == legacy {
		return result, nil
	}
	if s.Workspace.Exists(layout.Staging) {
		return MigrateResult{}, types.NewError(
			types.ErrInitConflict,
			fmt.Sprintf("cannot migrate: %s already exists; back it up or remove it first", layout.Staging),
			nil,
		)
	}
	for _, name := range []string{types.ManifestFileName, types.OverridesFileName, types.LockFileName} {
		if !s.Workspace.Exists(filepath.Join(legacy, name)) {
			return MigrateResult{}, types.NewError(
				types.ErrNotInitialized,
				fmt.Sprintf("cannot migrate: %s/%s is missing; run `bender update` in the legacy directory first", legacy, name),
				nil,
			)
		}
	}
	if err := s.Workspace.Rename(legacy, layout.Staging); err != nil {
		return MigrateResult{}, err
	}
	result.Migrated = true
	log.Ctx(ctx).Info().Str("from", legacy).Str("to", layout.Staging).Msg("staging directory migrated")
	return result, nil
}
