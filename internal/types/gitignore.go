package types

// Markers delimiting the tool-managed block of an ignore file.
const (
	GitignoreBeginMarker = "# >>> bendis managed: do not edit this block >>>"
	GitignoreEndMarker   = "# <<< bendis managed <<<"
)

type GitignoreLine struct {
	Text    string
	Managed bool
}

// GitignoreState is an ignore file split into user-authored lines and
// the single tool-managed block. BlockIndex is the position in Lines
// where the block starts, or -1 when the file has none.
type GitignoreState struct {
	Lines      []GitignoreLine
	BlockIndex int
	TrailingNL bool
}

// UserLines returns the lines the tool never touches.
func (s GitignoreState) UserLines() []string {
	var out []string
	for _, line := range s.Lines {
		if !line.Managed {
			out = append(out, line.Text)
		}
	}
	return out
}

// ManagedEntries returns the entries inside the managed block, without
// the markers.
func (s GitignoreState) ManagedEntries() []string {
	var out []string
	for _, line := range s.Lines {
		if line.Managed && line.Text != GitignoreBeginMarker && line.Text != GitignoreEndMarker {
			out = append(out, line.Text)
		}
	}
	return out
}
