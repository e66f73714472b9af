package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table.
// A row holding the single cell "---" renders as a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

type tableStyle struct {
	title  func(string) string
	header func(string) string
	value  func(string) string
	border func(string) string
}

var (
	termTable = tableStyle{
		title:  func(s string) string { return "  " + headerStyle.Render(s) },
		header: func(s string) string { return headerStyle.Render(s) },
		value:  func(s string) string { return valueStyle.Render(s) },
		border: func(s string) string { return dimStyle.Render(s) },
	}
	plainTable = tableStyle{
		title:  func(s string) string { return s },
		header: func(s string) string { return s },
		value:  func(s string) string { return s },
		border: func(s string) string { return s },
	}
)

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderMuted renders a secondary line of terminal text.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// RenderTable renders a bordered, colored table for a terminal.
func RenderTable(t Table) string {
	return renderTable(t, termTable)
}

// RenderPlainTable renders the same layout with no escape codes, for
// channels that deliver text verbatim.
func RenderPlainTable(t Table) string {
	return renderTable(t, plainTable)
}

func renderTable(t Table, st tableStyle) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], displayWidth(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], displayWidth(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString(st.title(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(st.border(left))
		for i, w := range widths {
			b.WriteString(st.border(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(st.border(mid))
			}
		}
		b.WriteString(st.border(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(st.border("│"))
		for i, h := range t.Headers {
			b.WriteString(st.header(" " + padRight(h, widths[i]) + " "))
			if i < numCols-1 {
				b.WriteString(st.border("│"))
			}
		}
		b.WriteString(st.border("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(st.border("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			// Right-align numeric columns (all except first)
			var padded string
			if i == 0 {
				padded = " " + padRight(cell, widths[i]) + " "
			} else {
				padded = " " + padLeft(cell, widths[i]) + " "
			}
			b.WriteString(st.value(padded))
			if i < numCols-1 {
				b.WriteString(st.border("│"))
			}
		}
		b.WriteString(st.border("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")

	return b.String()
}

// RenderUsageBar renders used/limit as a colored bar of the given width.
func RenderUsageBar(used, limit decimal.Decimal, width int) string {
	if !limit.IsPositive() || width <= 0 {
		return ""
	}

	pct := used.Div(limit).InexactFloat64()
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct * float64(width))
	empty := width - filled

	color := ColorGreen
	if pct >= 1 {
		color = ColorRed
	} else if pct >= 0.8 {
		color = ColorOrange
	}

	barStyle := lipgloss.NewStyle().Foreground(color)
	return barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", empty))
}

func displayWidth(s string) int {
	return lipgloss.Width(s)
}

func padRight(s string, w int) string {
	if gap := w - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, w int) string {
	if gap := w - displayWidth(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}
