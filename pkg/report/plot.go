package report

import (
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/kartlytics/pkg/plotpage"
)

const (
	labelRaceTime = "Race time [s]"
	labelLapTime  = "Lap time [s]"
	labelLaps     = "Distance [laps]"
)

// writePlot renders the bundle as a standalone HTML page.
func writePlot(w io.Writer, b *Bundle, opts RenderOptions) error {
	theme := opts.Theme
	if theme == "" {
		theme = plotpage.ThemeDark
	}

	title := opts.Title
	if title == "" {
		title = DefaultRenderOptions().Title
	}

	page := plotpage.NewPage(title, b.RaceName).WithTheme(theme)
	page.Add(PlotSections(b, theme)...)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot page: %w", err)
	}

	return nil
}

// PlotSections builds every chart section of the report page.
func PlotSections(b *Bundle, theme plotpage.Theme) []plotpage.Section {
	co := plotpage.NewChartOpts(theme)

	return []plotpage.Section{
		{
			Title:    "Running Average Lap Time",
			Subtitle: "Average lap time of every team after each completed lap",
			Chart:    plotpage.BuildXYLineChart(co, lapAverageSeries(b.Teams, theme), labelRaceTime, labelLapTime),
			Hint: plotpage.Hint{
				Title: "How to read",
				Items: []string{
					"Each point is a completed lap.",
					"Pit stops show up as steps upwards.",
				},
			},
		},
		{
			Title:    "Distance To Winner",
			Subtitle: "Laps behind (+) or ahead of (-) the race winner at every lap completion",
			Chart:    plotpage.BuildXYLineChart(co, axisSeries(b.Teams, theme, distanceToWinner), labelRaceTime, labelLaps),
		},
		{
			Title:    "Distance To Leader",
			Subtitle: "Laps behind whoever led the race at that moment",
			Chart:    plotpage.BuildXYLineChart(co, axisSeries(b.Teams, theme, distanceToLeader), labelRaceTime, labelLaps),
		},
		{
			Title:    "Deviation From Field Average",
			Subtitle: "Running average pace minus the field average; negative is faster",
			Chart:    plotpage.BuildXYLineChart(co, axisSeries(b.Teams, theme, deviation), labelRaceTime, labelLapTime),
		},
		{
			Title:    "Driver Running Average Lap Time",
			Subtitle: "Average lap time of every driver over their own stints",
			Chart:    plotpage.BuildXYLineChart(co, lapAverageSeries(b.Drivers, theme), labelRaceTime, labelLapTime),
		},
		{
			Title:    "Team Lap Times",
			Subtitle: "Fastest and average lap per team",
			Chart:    teamLapBars(co, b, theme),
		},
	}
}

// lapAverageSeries plots the running average after each lap against the
// entity's own cumulative time.
func lapAverageSeries(run *Run, theme plotpage.Theme) []plotpage.XYSeries {
	if run == nil {
		return nil
	}

	series := make([]plotpage.XYSeries, len(run.Entities))

	for i, e := range run.Entities {
		points := make([]plotpage.Point, len(e.CumulativeTimes))
		for j, t := range e.CumulativeTimes {
			points[j] = plotpage.Point{X: t, Y: e.LapAverages[j]}
		}

		series[i] = plotpage.XYSeries{Name: e.Name, Points: points, Color: plotpage.ColorAt(theme, i)}
	}

	return series
}

func distanceToWinner(e EntityResult) []float64 { return e.DistanceToWinner }

func distanceToLeader(e EntityResult) []float64 { return e.DistanceToLeader }

func deviation(e EntityResult) []float64 { return e.RunningAverageDeviation }

// axisSeries plots a per-axis-point metric against the shared axis, labelled
// with whoever was driving at that point.
func axisSeries(run *Run, theme plotpage.Theme, metric func(EntityResult) []float64) []plotpage.XYSeries {
	if run == nil {
		return nil
	}

	series := make([]plotpage.XYSeries, 0, len(run.Entities))

	for i, e := range run.Entities {
		values := metric(e)
		points := make([]plotpage.Point, len(values))

		for j, v := range values {
			points[j] = plotpage.Point{X: run.SharedAxis[j], Y: v}
			if j < len(e.LapDrivers) {
				points[j].Label = e.LapDrivers[j]
			}
		}

		series = append(series, plotpage.XYSeries{Name: e.Name, Points: points, Color: plotpage.ColorAt(theme, i)})
	}

	return series
}

func teamLapBars(co *plotpage.ChartOpts, b *Bundle, theme plotpage.Theme) plotpage.Renderable {
	labels := make([]string, len(b.TeamSummaries))
	fastest := make([]plotpage.SeriesData, len(b.TeamSummaries))
	average := make([]plotpage.SeriesData, len(b.TeamSummaries))

	for i, s := range b.TeamSummaries {
		labels[i] = s.Team
		fastest[i] = s.FastestLap
		average[i] = s.AverageLap
	}

	return plotpage.BuildBarChart(co, labels, []plotpage.BarSeries{
		{Name: "Fastest lap", Data: fastest, Color: plotpage.ColorAt(theme, 0)},
		{Name: "Average lap", Data: average, Color: plotpage.ColorAt(theme, 1)},
	}, labelLapTime)
}
