package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/runger/cmdbox/internal/rank"
	"github.com/runger/cmdbox/internal/store"
)

// maxDescriptionWidth bounds the description column in list output.
const maxDescriptionWidth = 60

var (
	commandStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	descStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// configureColors disables styling when the output cannot render it.
// Honors NO_COLOR (https://no-color.org/) and TERM=dumb; otherwise the
// profile is detected from stdout, so piped output stays plain.
func configureColors() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).ColorProfile())
}

// renderResults prints one search hit per block: score plus command on
// the first line, truncated description and tags indented below.
func renderResults(results []rank.Result) {
	for _, r := range results {
		fmt.Printf("%s %s  %s\n",
			scoreStyle.Render(fmt.Sprintf("%.2f", r.Score)),
			labelStyle.Render(r.Command.ID),
			commandStyle.Render(r.Command.Command),
		)
		if r.Command.Description != "" {
			desc := runewidth.Truncate(r.Command.Description, maxDescriptionWidth, "…")
			fmt.Printf("       %s\n", descStyle.Render(desc))
		}
		if len(r.Command.Tags) > 0 {
			fmt.Printf("       %s\n", tagStyle.Render("#"+strings.Join(r.Command.Tags, " #")))
		}
	}
}

// renderCommand prints the full record, one field per line.
func renderCommand(c *store.Command) {
	field := func(label, value string) {
		fmt.Printf("%s %s\n", labelStyle.Render(label+":"), value)
	}

	field("id", c.ID)
	fmt.Printf("%s %s\n", labelStyle.Render("command:"), commandStyle.Render(c.Command))
	if c.Description != "" {
		field("description", c.Description)
	}
	if len(c.Tags) > 0 {
		fmt.Printf("%s %s\n", labelStyle.Render("tags:"), tagStyle.Render(strings.Join(c.Tags, ", ")))
	}
	if c.OS != nil {
		field("os", *c.OS)
	}
	if c.ProjectType != nil {
		field("project_type", *c.ProjectType)
	}
	if c.Category != nil {
		field("category", *c.Category)
	}
	if c.Context != nil {
		field("context", *c.Context)
	}
	field("created_at", c.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if c.LastUsed != nil {
		field("last_used", c.LastUsed.Local().Format("2006-01-02 15:04:05"))
	}
	field("use_count", fmt.Sprintf("%d", c.UseCount))
}
