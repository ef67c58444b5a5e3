package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/njchilds90/termwise"
)

var (
	solvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	wonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

func renderSession(w io.Writer, v termwise.SessionView) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Equation", "Distribute", ""})
	for _, eq := range v.Equations {
		text, mark := eq.Text, ""
		if eq.Solved {
			text, mark = solvedStyle.Render(eq.Text), solvedStyle.Render("✓")
		}
		t.AppendRow(table.Row{eq.ID, text, joinInts(eq.Distributable), mark})
	}
	_, _ = fmt.Fprintln(w, t.Render())

	if len(v.Found) > 0 {
		names := make([]string, 0, len(v.Found))
		for name := range v.Found {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + " = " + v.Found[name]
		}
		_, _ = fmt.Fprintln(w, hintStyle.Render("found: "+strings.Join(parts, ", ")))
	}
	if v.Won {
		_, _ = fmt.Fprintln(w, wonStyle.Render("All variables found!"))
	}
}

func renderTerms(w io.Writer, terms []termwise.TermView) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Side", "#", "Term"})
	for _, term := range terms {
		t.AppendRow(table.Row{term.Side, term.Index, term.Text})
	}
	_, _ = fmt.Fprintln(w, t.Render())
}

func renderEquation(w io.Writer, v termwise.EquationView) {
	line := fmt.Sprintf("(%d) %s", v.ID, v.Text)
	if v.Solved {
		line = solvedStyle.Render(line + "  ✓")
	}
	_, _ = fmt.Fprintln(w, line)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
