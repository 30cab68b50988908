package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// SeriesData represents a single numeric value in a chart series.
type SeriesData any

// BarSeries defines the properties and data for a single bar chart series.
type BarSeries struct {
	Name  string
	Data  []SeriesData
	Color string // Optional, uses theme if empty.
}

// Point is one (x, y) sample of a line plotted against a numeric axis.
// Label is shown in the tooltip when set.
type Point struct {
	X     float64
	Y     float64
	Label string
}

// XYSeries is a line whose samples carry their own x values, so series of
// different lengths can share one chart.
type XYSeries struct {
	Name   string
	Points []Point
	Color  string // Optional, uses theme if empty.
}

// BuildBarChart constructs a fully configured go-echarts Bar chart.
// If cOpts is nil, DefaultChartOpts() is used.
func BuildBarChart(cOpts *ChartOpts, labels []string, series []BarSeries, yAxisLabel string) *charts.Bar {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init()),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithXAxisOpts(cOpts.XAxis("")),
		charts.WithYAxisOpts(cOpts.YAxis(yAxisLabel)),
		charts.WithLegendOpts(cOpts.Legend()),
	)

	bar.SetXAxis(labels)

	for _, s := range series {
		barData := make([]opts.BarData, len(s.Data))
		for i, v := range s.Data {
			barData[i] = opts.BarData{Value: v}
		}

		var seriesOpts []charts.SeriesOpts
		if s.Color != "" {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		}

		bar.AddSeries(s.Name, barData, seriesOpts...)
	}

	return bar
}

// BuildXYLineChart constructs a line chart over a numeric x-axis.
// If cOpts is nil, DefaultChartOpts() is used.
func BuildXYLineChart(cOpts *ChartOpts, series []XYSeries, xAxisLabel, yAxisLabel string) *charts.Line {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init()),
		charts.WithTooltipOpts(cOpts.Tooltip("item")),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithDataZoomOpts(cOpts.DataZoom()...),
		charts.WithXAxisOpts(cOpts.ValueXAxis(xAxisLabel)),
		charts.WithYAxisOpts(cOpts.YAxis(yAxisLabel)),
		charts.WithLegendOpts(cOpts.Legend()),
	)

	for _, s := range series {
		lineData := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			lineData[i] = opts.LineData{Name: p.Label, Value: []float64{p.X, p.Y}}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		}

		if s.Color != "" {
			seriesOpts = append(seriesOpts,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
			)
		}

		line.AddSeries(s.Name, lineData, seriesOpts...)
	}

	return line
}
