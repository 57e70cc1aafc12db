package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bendis/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
)

func printTitle(out io.Writer, title string) {
	fmt.Fprintln(out, titleStyle.Render(title))
}

func printField(out io.Writer, label string, value string) {
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Render(label+":"), value)
}

func printList(out io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "  %s\n", labelStyle.Render(label+":"))
	for _, item := range items {
		fmt.Fprintf(out, "    - %s\n", pathStyle.Render(item))
	}
}

// renderError formats a failure for the terminal, naming the failed
// update step when there is one.
func renderError(err error) string {
	var sb strings.Builder
	sb.WriteString(errorStyle.Render("✗ " + errorMessage(err)))
	if step, ok := types.StepOf(err); ok {
		sb.WriteString("\n")
		sb.WriteString(hintStyle.Render(fmt.Sprintf("  update stopped at step %d (%s)", int(step), step)))
	}
	if hint := errorHint(err); hint != "" {
		sb.WriteString("\n")
		sb.WriteString(hintStyle.Render("  " + hint))
	}
	return sb.String()
}

func errorHint(err error) string {
	kind, ok := types.KindOf(err)
	if !ok {
		return ""
	}
	switch kind {
	case types.ErrNotInitialized:
		return "run `bendis init` to create the staging directory"
	case types.ErrWorkspaceBusy:
		return "another bendis run holds the workspace, or a previous run was interrupted"
	case types.ErrGitignoreConflict:
		return "fix the managed block markers in the reported ignore file"
	case types.ErrResolutionFailure:
		return "rerun with --log-level debug to see the resolver output"
	default:
		return ""
	}
}
