package analysis

import (
	"fmt"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/urbanair/air-quality-etl/internal/domain"
)

// Chart filenames under the processed directory.
const (
	HistChartFile    = "hist_pm2_5.png"
	BarChartFile     = "bar_risk_per_city.png"
	LineChartFile    = "line_hourly_pm2_5_trends.png"
	ScatterChartFile = "scatter_severity_vs_pm2_5.png"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// RenderCharts writes the four static chart images into dir.
func RenderCharts(rows []domain.StoredRow, dir string) error {
	renderers := []struct {
		file   string
		render func([]domain.StoredRow, string) error
	}{
		{HistChartFile, renderPM25Histogram},
		{BarChartFile, renderRiskBars},
		{LineChartFile, renderHourlyLines},
		{ScatterChartFile, renderSeverityScatter},
	}

	for _, r := range renderers {
		if err := r.render(rows, filepath.Join(dir, r.file)); err != nil {
			return fmt.Errorf("render %s: %w", r.file, err)
		}
	}
	return nil
}

func renderPM25Histogram(rows []domain.StoredRow, path string) error {
	var values plotter.Values
	for _, r := range rows {
		if r.PM25 != nil {
			values = append(values, *r.PM25)
		}
	}

	p := plot.New()
	p.Title.Text = "Histogram of PM2.5"
	p.X.Label.Text = "PM2.5"
	p.Y.Label.Text = "Frequency"

	if len(values) > 0 {
		hist, err := plotter.NewHist(values, 30)
		if err != nil {
			return err
		}
		p.Add(hist)
	}

	return p.Save(chartWidth, chartHeight, path)
}

// renderRiskBars draws grouped per-city bars, one group of three risk
// tiers per city.
func renderRiskBars(rows []domain.StoredRow, path string) error {
	counts := map[string]map[string]int{}
	for _, r := range rows {
		if counts[r.City] == nil {
			counts[r.City] = map[string]int{}
		}
		counts[r.City][r.RiskFlag]++
	}
	cities := sortedCities(counts)

	p := plot.New()
	p.Title.Text = "Risk Flags per City"
	p.X.Label.Text = "City"
	p.Y.Label.Text = "Count"

	barWidth := vg.Points(12)
	for i, label := range domain.RiskLabels {
		values := make(plotter.Values, len(cities))
		for j, city := range cities {
			values[j] = float64(counts[city][label])
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.Offset = barWidth * vg.Length(i-1)
		p.Add(bars)
		p.Legend.Add(label, bars)
	}

	p.NominalX(cities...)
	p.Legend.Top = true
	return p.Save(chartWidth, chartHeight, path)
}

// renderHourlyLines draws one line per city of mean PM2.5 by hour of day.
func renderHourlyLines(rows []domain.StoredRow, path string) error {
	byCity := map[string]map[int][]float64{}
	for _, r := range rows {
		if r.PM25 == nil {
			continue
		}
		if byCity[r.City] == nil {
			byCity[r.City] = map[int][]float64{}
		}
		byCity[r.City][r.Hour] = append(byCity[r.City][r.Hour], *r.PM25)
	}

	p := plot.New()
	p.Title.Text = "Hourly Average PM2.5 by City"
	p.X.Label.Text = "Hour of day"
	p.Y.Label.Text = "Avg PM2.5"

	for i, city := range sortedCities(byCity) {
		hours := make([]int, 0, len(byCity[city]))
		for h := range byCity[city] {
			hours = append(hours, h)
		}
		sort.Ints(hours)

		pts := make(plotter.XYs, 0, len(hours))
		for _, h := range hours {
			pts = append(pts, plotter.XY{X: float64(h), Y: stat.Mean(byCity[city][h], nil)})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(city, line)
	}

	p.Legend.Top = true
	return p.Save(chartWidth, chartHeight, path)
}

func renderSeverityScatter(rows []domain.StoredRow, path string) error {
	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		if r.PM25 != nil {
			pts = append(pts, plotter.XY{X: *r.PM25, Y: r.SeverityScore})
		}
	}

	p := plot.New()
	p.Title.Text = "Severity Score vs PM2.5"
	p.X.Label.Text = "PM2.5"
	p.Y.Label.Text = "Severity Score"

	if len(pts) > 0 {
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		p.Add(scatter)
	}

	return p.Save(chartWidth, chartHeight, path)
}
