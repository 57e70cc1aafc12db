package app

import (
	"bytes"
	"context"

	"github.com/rs/zerolog/log"

	"bendis/internal/adapters"
	"bendis/internal/core"
	"bendis/internal/types"
)

// Init creates the staging directory with blank artifacts. Nothing is
// written when a staging artifact already carries content.
func (s Service) Init(ctx context.Context, req InitRequest) (InitResult, error) {
	layout, err := resolveLayout(req.Root, req.StagingDir)
	if err != nil {
		return InitResult{}, err
	}

	manifestPath := layout.inStaging(types.ManifestFileName)
	overridesPath := layout.inStaging(types.OverridesFileName)
	manifest, err := s.artifactState(manifestPath, isBlankManifest)
	if err != nil {
		return InitResult{}, err
	}
	overrides, err := s.artifactState(overridesPath, isBlankOverrides)
	if err != nil {
		return InitResult{}, err
	}
	if err := core.CheckInitPreconditions(manifest.ArtifactState, overrides.ArtifactState); err != nil {
		return InitResult{}, err
	}

	gitignorePath := layout.inStaging(types.GitignoreFileName)
	gitignore, gitignoreChanged, err := s.updatedGitignore(gitignorePath, core.StagingBaseEntries())
	if err != nil {
		return InitResult{}, err
	}

	if err := s.Workspace.EnsureDir(layout.Staging); err != nil {
		return InitResult{}, err
	}
	result := InitResult{StagingDir: layout.Staging}
	for _, artifact := range []initArtifact{manifest, overrides} {
		if artifact.Exists && !artifact.Empty {
			continue
		}
		if err := s.Workspace.WriteFileAtomic(artifact.Path, nil); err != nil {
			return InitResult{}, err
		}
		result.Created = append(result.Created, artifact.Path)
	}
	if gitignoreChanged {
		if err := s.Workspace.WriteFileAtomic(gitignorePath, gitignore); err != nil {
			return InitResult{}, err
		}
		result.Created = append(result.Created, gitignorePath)
	}
	log.Ctx(ctx).Info().
		Str("staging", layout.Staging).
		Int("created", len(result.Created)).
		Msg("workspace initialized")
	return result, nil
}

type initArtifact struct {
	core.ArtifactState
	// Empty means the file holds only whitespace.
	Empty bool
}

func (s Service) artifactState(path string, blank func([]byte) bool) (initArtifact, error) {
	state := initArtifact{ArtifactState: core.ArtifactState{Path: path}}
	if !s.Workspace.Exists(path) {
		return state, nil
	}
	content, err := s.Workspace.ReadFile(path)
	if err != nil {
		return initArtifact{}, err
	}
	state.Exists = true
	state.Empty = len(bytes.TrimSpace(content)) == 0
	state.Blank = state.Empty || blank(content)
	return state, nil
}

func isBlankManifest(content []byte) bool {
	manifest, err := adapters.ParseManifest(content)
	return err == nil && manifest.IsBlank()
}

func isBlankOverrides(content []byte) bool {
	overrides, err := adapters.ParseOverrides(content)
	return err == nil && overrides.IsBlank()
}

// updatedGitignore returns the new content of the ignore file at path with
// entries in its managed block, and whether it differs from what is on disk.
func (s Service) updatedGitignore(path string, entries []string) ([]byte, bool, error) {
	var content []byte
	if s.Workspace.Exists(path) {
		existing, err := s.Workspace.ReadFile(path)
		if err != nil {
			return nil, false, err
		}
		content = existing
	}
	return core.UpdateGitignore(content, entries)
}
