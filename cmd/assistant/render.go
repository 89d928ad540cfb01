package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"voice-assistant/internal/session"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func renderEntry(w io.Writer, e session.Entry) {
	label := userStyle.Render(string(e.Speaker) + ":")
	if e.Speaker == session.Assistant {
		label = assistantStyle.Render(string(e.Speaker) + ":")
	}
	fmt.Fprintf(w, "%s %s\n", label, e.Text)
}

// renderList prints items numbered from 1, or empty when there are none.
func renderList(w io.Writer, title, empty string, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(w, dimStyle.Render(empty))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(title))
	for i, item := range items {
		fmt.Fprintf(w, "%s %s\n", indexStyle.Render(strconv.Itoa(i+1)+"."), item)
	}
}
