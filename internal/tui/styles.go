package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sysid/internal/ident"
)

var (
	accent = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	plain  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	muted  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	good   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warn   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	fail   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	trend  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("#444466"))

	Label = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	Value = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
)

// StatusStyle colours a stage status: green converged, yellow not
// converged, red degenerate.
func StatusStyle(s ident.Status) lipgloss.Style {
	switch s {
	case ident.Converged:
		return good
	case ident.NotConverged:
		return warn
	default:
		return fail
	}
}

func Status(s ident.Status) string {
	return StatusStyle(s).Render(s.String())
}

func ProgressBar(percent float64, width int) string {
	n := max(0, min(int(percent*float64(width)), width))
	bar := strings.Repeat("█", n) + strings.Repeat("░", width-n)
	if percent >= 1 {
		return good.Render(bar)
	}
	return accent.Render(bar)
}

var blocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline scales data to eight block heights, sampling at most width
// values.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width < 1 {
		return ""
	}
	lo, hi := floats.Min(data), floats.Max(data)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	top := len(blocks) - 1

	step := max(len(data)/width, 1)
	var sb strings.Builder
	for i, n := 0, 0; i < len(data) && n < width; i, n = i+step, n+1 {
		level := int((data[i] - lo) / span * float64(top))
		sb.WriteRune(blocks[max(0, min(level, top))])
	}
	return sb.String()
}
