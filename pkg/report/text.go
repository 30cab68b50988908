package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/kartlytics/pkg/stats"
	"github.com/Sumatoshi-tech/kartlytics/pkg/terminal"
)

const (
	textIndent       = "  "
	textNameWidth    = 18
	textBarWidth     = 24
	textSecondDigits = 3
	textStatDigits   = 2
)

// writeText writes the human-readable race summary.
func writeText(w io.Writer, b *Bundle, cfg terminal.Config) error {
	width := cfg.Width
	if width <= 0 {
		width = terminal.DefaultWidth
	}

	header := terminal.DrawHeader(
		b.RaceName,
		fmt.Sprintf("%d teams, %d drivers", len(b.TeamSummaries), len(b.DriverSummaries)),
		width,
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w)

	writeStandings(w, cfg, width, b)
	fmt.Fprintln(w)

	writeSection(w, cfg, width, "Team Results")
	fmt.Fprintln(w, teamTable(b.TeamSummaries))
	fmt.Fprintln(w)

	writeSection(w, cfg, width, "Drivers")
	fmt.Fprintln(w, driverTable(b.DriverSummaries))
	fmt.Fprintln(w)

	return nil
}

func writeSection(w io.Writer, cfg terminal.Config, width int, title string) {
	fmt.Fprintf(w, "%s%s\n", textIndent, cfg.Colorize(title, terminal.ColorBlue))
	fmt.Fprintf(w, "%s%s\n", textIndent, terminal.DrawSeparator(width-len(textIndent)*2))
}

// writeStandings draws one lap bar per team, coloured by the lap gap to the
// leader, followed by the final running-average pace and its deviation from
// the field average.
func writeStandings(w io.Writer, cfg terminal.Config, width int, b *Bundle) {
	writeSection(w, cfg, width, "Standings")

	var leaderLaps float64

	for _, s := range b.TeamSummaries {
		leaderLaps = max(leaderLaps, float64(s.Laps))
	}

	for _, s := range b.TeamSummaries {
		laps := float64(s.Laps)
		name := terminal.TruncateWithEllipsis(s.Team, textNameWidth)
		bar := terminal.DrawLapBar(name, laps, leaderLaps, textNameWidth, textBarWidth)

		line := fmt.Sprintf("%s%-5s %s", textIndent, humanize.Ordinal(s.Position), cfg.Colorize(bar, terminal.ColorForGap(leaderLaps-laps)))

		if e, ok := b.Team(s.Team); ok && len(e.RunningAveragePace) > 0 {
			last := len(e.RunningAveragePace) - 1
			line += fmt.Sprintf("  pace %ss  dev %+.3fs",
				formatSeconds(e.RunningAveragePace[last]), e.RunningAverageDeviation[last])
		}

		if s.Stopped {
			line += " " + cfg.Colorize("stopped", terminal.ColorGray)
		}

		fmt.Fprintln(w, line)
	}
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func teamTable(summaries []stats.TeamSummary) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{
		"Pos", "Kart", "Team", "Laps", "Distance", "Fastest", "Slowest", "Average",
		"Std dev", "Total", "Pit time", "Pit stops", "Avg pit",
	})

	for _, s := range summaries {
		tbl.AppendRow(table.Row{
			s.Position,
			s.KartNumber,
			s.Team,
			s.Laps,
			humanize.FtoaWithDigits(s.DistanceToWinner, textStatDigits),
			formatSeconds(s.FastestLap),
			formatSeconds(s.SlowestLap),
			formatSeconds(s.AverageLap),
			formatSeconds(s.StdDev),
			formatDuration(s.TotalTime),
			formatSeconds(s.PitTime),
			s.PitStops,
			formatSeconds(s.AveragePitTime),
		})
	}

	return tbl.Render()
}

func driverTable(summaries []stats.DriverSummary) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{
		"#", "Driver", "Team", "Laps", "Fastest", "Slowest", "Average", "Avg (no outliers)", "Std dev",
	})

	for i, s := range summaries {
		tbl.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			s.Driver,
			s.Team,
			s.Laps,
			formatSeconds(s.FastestLap),
			formatSeconds(s.SlowestLap),
			formatSeconds(s.AverageLap),
			formatSeconds(s.AverageNoOutliers),
			formatSeconds(s.StdDev),
		})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d drivers", len(summaries))})

	return tbl.Render()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', textSecondDigits, 64)
}

// formatDuration renders seconds as a rounded Go duration, e.g. "1h2m3.5s".
func formatDuration(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond).String()
}
