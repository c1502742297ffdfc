package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# fxb — Fix Version Board

Keyboard shortcuts for the dashboard view.

## Navigation

| Key | Action |
|-----|--------|
| ` + "`j` / `↓`" + ` | Move down one issue row |
| ` + "`k` / `↑`" + ` | Move up one issue row |
| ` + "`g` / `G`" + ` | Jump to first / last row |
| ` + "`tab` / `]`" + ` | Next fix version section |
| ` + "`shift+tab` / `[`" + ` | Previous fix version section |

## Actions

| Key | Action |
|-----|--------|
| ` + "`s`" + ` | Change project / version / insight selection |
| ` + "`r`" + ` | Refresh from the tracker |
| ` + "`c`" + ` | Copy the selected issue's JIRA key |
| ` + "`?`" + ` | Toggle this help |
| ` + "`q` / `ctrl+c`" + ` | Quit |

## Reading the board

Rows with sentences in the **Comments** column had one or more fields
missing upstream; the missing fields show a fallback value instead. A row
whose key reads *Unknown* could not be flattened at all and carries the
failure reason in Comments.
`

// renderHelp renders the help overlay via glamour, falling back to the raw
// markdown when the renderer cannot be constructed.
func renderHelp(width int) string {
	wrap := width - 4
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
