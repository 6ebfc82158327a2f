package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	critStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// TerminalRenderer prints the grid as boxed horizontal bar charts.
type TerminalRenderer struct {
	Out io.Writer
	// BarWidth is the length in cells of a bar at the scale's maximum.
	BarWidth int
}

// NewTerminalRenderer renders to out with a default bar width.
func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{Out: out, BarWidth: 20}
}

func (r *TerminalRenderer) Render(g *Grid) error {
	rows := make([]string, 0, len(g.Cells))
	for _, cells := range g.Cells {
		boxes := make([]string, len(cells))
		for j, p := range cells {
			boxes[j] = r.panel(p, g.Scale)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	_, err := fmt.Fprintln(r.Out, lipgloss.JoinVertical(lipgloss.Left, rows...))
	return err
}

func (r *TerminalRenderer) panel(p Panel, s Scale) string {
	width := r.BarWidth
	if width <= 0 {
		width = 20
	}
	scale := s.MaxProbability.InexactFloat64()

	labelWidth := 0
	for _, b := range p.Dist.Buckets {
		labelWidth = max(labelWidth, len(Label(b.Outcome)))
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(Title(p.Config)))
	sb.WriteByte('\n')
	for _, b := range p.Dist.Buckets {
		n := 0
		if scale > 0 {
			n = int(math.Round(b.Probability.InexactFloat64() / scale * float64(width)))
		}
		style := barStyle
		if b.Outcome.IsCritFail() {
			style = critStyle
		}
		fmt.Fprintf(&sb, "%*s %s%s %s\n",
			labelWidth, Label(b.Outcome),
			style.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", max(width-n, 0)),
			Percent(b.Probability))
	}
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%s trials, mean %s", humanize.Comma(int64(p.Dist.Total)), p.Dist.Mean().StringFixed(2))))
	return panelStyle.Render(sb.String())
}
