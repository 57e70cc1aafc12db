package core

import (
	"fmt"
	"sort"
	"strings"

	"bendis/internal/types"
)

// ParseGitignore splits an ignore file into user lines and the managed
// block. A file with more than one block, or with unbalanced markers,
// cannot be updated safely and yields GitignoreConflict.
func ParseGitignore(content []byte) (types.GitignoreState, error) {
	state := types.GitignoreState{BlockIndex: -1}
	text := string(content)
	if text == "" {
		return state, nil
	}
	state.TrailingNL = strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	inBlock := false
	for idx, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		switch strings.TrimSpace(line) {
		case types.GitignoreBeginMarker:
			if inBlock {
				return types.GitignoreState{}, gitignoreConflict(idx, "nested begin marker")
			}
			if state.BlockIndex >= 0 {
				return types.GitignoreState{}, gitignoreConflict(idx, "second managed block")
			}
			inBlock = true
			state.BlockIndex = len(state.Lines)
			state.Lines = append(state.Lines, types.GitignoreLine{Text: types.GitignoreBeginMarker, Managed: true})
		case types.GitignoreEndMarker:
			if !inBlock {
				return types.GitignoreState{}, gitignoreConflict(idx, "end marker without begin marker")
			}
			inBlock = false
			state.Lines = append(state.Lines, types.GitignoreLine{Text: types.GitignoreEndMarker, Managed: true})
		default:
			text := line
			if inBlock {
				text = strings.TrimSpace(line)
			}
			state.Lines = append(state.Lines, types.GitignoreLine{Text: text, Managed: inBlock})
		}
	}
	if inBlock {
		return types.GitignoreState{}, gitignoreConflict(len(lines), "managed block is not terminated")
	}
	return state, nil
}

func gitignoreConflict(line int, reason string) error {
	return types.NewError(
		types.ErrGitignoreConflict,
		fmt.Sprintf("cannot update managed block (line %d): %s", line+1, reason),
		nil,
	)
}

// ReconcileGitignore returns state with its managed block holding exactly
// entries. User lines are kept as they are; entries a user line already
// provides are left out of the block. The block always sits at the end of
// the file so that its negations take precedence. An empty entry list
// removes the block.
func ReconcileGitignore(state types.GitignoreState, entries []string) types.GitignoreState {
	userLines := state.UserLines()
	present := map[string]struct{}{}
	for _, line := range userLines {
		present[strings.TrimSpace(line)] = struct{}{}
	}

	var ignores, negations []string
	seen := map[string]struct{}{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, ok := present[entry]; ok {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		if strings.HasPrefix(entry, "!") {
			negations = append(negations, entry)
		} else {
			ignores = append(ignores, entry)
		}
	}
	sort.Strings(ignores)
	sort.Strings(negations)

	out := types.GitignoreState{BlockIndex: -1, TrailingNL: true}
	for _, line := range userLines {
		out.Lines = append(out.Lines, types.GitignoreLine{Text: line})
	}
	managed := append(ignores, negations...)
	if len(managed) == 0 {
		for len(out.Lines) > 0 && strings.TrimSpace(out.Lines[len(out.Lines)-1].Text) == "" && state.BlockIndex >= 0 {
			out.Lines = out.Lines[:len(out.Lines)-1]
		}
		return out
	}
	if n := len(out.Lines); n > 0 && strings.TrimSpace(out.Lines[n-1].Text) != "" {
		out.Lines = append(out.Lines, types.GitignoreLine{Text: ""})
	}
	out.BlockIndex = len(out.Lines)
	out.Lines = append(out.Lines, types.GitignoreLine{Text: types.GitignoreBeginMarker, Managed: true})
	for _, entry := range managed {
		out.Lines = append(out.Lines, types.GitignoreLine{Text: entry, Managed: true})
	}
	out.Lines = append(out.Lines, types.GitignoreLine{Text: types.GitignoreEndMarker, Managed: true})
	return out
}

// RenderGitignore serializes state.
func RenderGitignore(state types.GitignoreState) []byte {
	if len(state.Lines) == 0 {
		return nil
	}
	var b strings.Builder
	for idx, line := range state.Lines {
		if idx > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Text)
	}
	if state.TrailingNL {
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// UpdateGitignore parses content, reconciles the managed block and
// reports whether the rendered file differs from content.
func UpdateGitignore(content []byte, entries []string) ([]byte, bool, error) {
	state, err := ParseGitignore(content)
	if err != nil {
		return nil, false, err
	}
	updated := RenderGitignore(ReconcileGitignore(state, entries))
	return updated, string(updated) != string(content), nil
}
