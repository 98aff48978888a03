// Package ui holds the lipgloss styles and small writers shared by the CLI and TUI.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title    = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	Pending  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	Accent   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	Muted    = lipgloss.NewStyle().Faint(true)
	Error    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	Selected = lipgloss.NewStyle().Bold(true).Reverse(true)
	Done     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	Help     = lipgloss.NewStyle().Faint(true)

	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
)

const (
	BoxChecked   = "☑"
	BoxUnchecked = "☐"
)

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, Success.Render("✔ "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, Error.Render("✖ "+msg)) }
func Hint(w io.Writer, msg string) { fmt.Fprintln(w, Muted.Render(msg)) }

// Box returns the checkbox glyph for a task.
func Box(done bool) string {
	if done {
		return Success.Render(BoxChecked)
	}
	return Muted.Render(BoxUnchecked)
}
