package stats

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// CreativityPoint pairs a recipe's creativity score with its fitness.
type CreativityPoint struct {
	Creativity float64 `json:"creativity"`
	Fitness    float64 `json:"fitness"`
}

// PlotFitness draws best and mean fitness per generation. The file format
// follows the extension of path.
func PlotFitness(best, mean []float64, path string) error {
	if len(best) == 0 {
		return fmt.Errorf("no generations to plot")
	}
	p := plot.New()
	p.Title.Text = "Cookie Recipe Evolution"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.Add(plotter.NewGrid())

	bestLine, err := plotter.NewLine(seriesXYs(best))
	if err != nil {
		return err
	}
	bestLine.Width = vg.Points(2)
	p.Add(bestLine)
	p.Legend.Add("best", bestLine)

	if len(mean) > 0 {
		meanLine, err := plotter.NewLine(seriesXYs(mean))
		if err != nil {
			return err
		}
		meanLine.Width = vg.Points(2)
		meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// PlotCreativity scatters creativity against fitness.
func PlotCreativity(points []CreativityPoint, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("no recipes to plot")
	}
	p := plot.New()
	p.Title.Text = "Creativity vs Fitness in Generated Recipes"
	p.X.Label.Text = "Creativity Score"
	p.Y.Label.Text = "Fitness Score"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.Creativity
		xys[i].Y = pt.Fitness
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	p.Add(scatter)

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

func seriesXYs(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(i + 1)
		xys[i].Y = v
	}
	return xys
}
