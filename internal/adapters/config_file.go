package adapters

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pelletier/go-toml/v2"

	"bendis/internal/ports"
	"bendis/internal/types"
)

const configHeader = "# bendis configuration. Flags and BENDIS_* environment variables take precedence.\n\n"

type ConfigFileAdapter struct {
	Workspace WorkspaceAdapter
}

func NewConfigFileAdapter() ConfigFileAdapter {
	return ConfigFileAdapter{Workspace: NewWorkspaceAdapter()}
}

func (a ConfigFileAdapter) Write(path string, settings types.Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode configuration").
			WithCause(err)
	}
	return a.Workspace.WriteFileAtomic(path, append([]byte(configHeader), data...))
}

// Read decodes path on top of the defaults. Unknown keys are rejected so
// typos surface instead of being ignored.
func (a ConfigFileAdapter) Read(path string) (types.Settings, error) {
	settings := types.DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("config file not found: " + path).
			WithCause(err)
	}
	if err != nil {
		return settings, readError(path, err)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&settings); err != nil {
		return types.DefaultSettings(), errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid config file " + path).
			WithCause(err)
	}
	return settings, nil
}

var _ ports.ConfigPort = ConfigFileAdapter{}
