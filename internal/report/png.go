package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/MJE43/darkveil/internal/veil"
)

var barColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// PNGRenderer saves the grid as a single PNG image.
type PNGRenderer struct {
	Path   string
	Width  vg.Length
	Height vg.Length
}

// NewPNGRenderer sizes the image in inches.
func NewPNGRenderer(path string, widthIn, heightIn float64) *PNGRenderer {
	return &PNGRenderer{
		Path:   path,
		Width:  vg.Length(widthIn) * vg.Inch,
		Height: vg.Length(heightIn) * vg.Inch,
	}
}

// Render writes the image to r.Path. The file is only created once every
// chart has been built.
func (r *PNGRenderer) Render(g *Grid) error {
	if r.Path == "" {
		return ErrNoOutputTarget
	}

	img, err := r.draw(g)
	if err != nil {
		return err
	}

	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", r.Path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", r.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", r.Path, err)
	}
	return nil
}

// Encode writes the grid as PNG into w.
func (r *PNGRenderer) Encode(w io.Writer, g *Grid) error {
	img, err := r.draw(g)
	if err != nil {
		return err
	}
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

func (r *PNGRenderer) draw(g *Grid) (*vgimg.Canvas, error) {
	plots := make([][]*plot.Plot, len(g.Cells))
	for i, row := range g.Cells {
		plots[i] = make([]*plot.Plot, len(row))
		for j, p := range row {
			pl, err := panelPlot(p, g.Scale)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.Config.Key(), err)
			}
			plots[i][j] = pl
		}
	}

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(g.Rolls),
		Cols:      len(g.Dice),
		PadX:      4 * vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}
	return img, nil
}

// panelPlot draws one configuration. Bars sit half a unit right of their
// outcome so the crit fail bar clears the y axis.
func panelPlot(p Panel, s Scale) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = Title(p.Config)
	pl.X.Label.Text = "Number of Successes"
	pl.Y.Label.Text = "Probability"
	pl.Add(plotter.NewGrid())

	// Dense values from the sentinel up to this panel's largest outcome.
	top := p.Dist.MaxOutcome()
	values := make(plotter.Values, int(top-veil.CritFail)+1)
	ticks := make([]plot.Tick, 0, len(p.Dist.Buckets))
	labels := plotter.XYLabels{}
	for _, b := range p.Dist.Buckets {
		prob := b.Probability.InexactFloat64()
		x := float64(b.Outcome) + 0.5
		values[int(b.Outcome-veil.CritFail)] = prob
		ticks = append(ticks, plot.Tick{Value: x, Label: Label(b.Outcome)})
		labels.XYs = append(labels.XYs, plotter.XY{X: x, Y: prob})
		labels.Labels = append(labels.Labels, Percent(b.Probability))
	}

	bars, err := plotter.NewBarChart(values, 8*vg.Points(1))
	if err != nil {
		return nil, err
	}
	bars.XMin = float64(veil.CritFail) + 0.5
	bars.Color = barColor
	bars.LineStyle.Width = 0
	pl.Add(bars)

	pctLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	pl.Add(pctLabels)

	pl.X.Tick.Marker = plot.ConstantTicks(ticks)
	pl.X.Tick.Label.Rotation = math.Pi / 2
	pl.X.Tick.Label.XAlign = draw.XRight
	pl.X.Tick.Label.YAlign = draw.YCenter
	pl.X.Min = -1.5
	pl.X.Max = float64(s.MaxOutcome) + 1.5
	pl.Y.Min = 0
	pl.Y.Max = s.MaxProbability.InexactFloat64()
	return pl, nil
}
