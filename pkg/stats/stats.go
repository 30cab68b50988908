// Package stats computes per-team and per-driver lap time summaries of a race.
package stats

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
)

// DefaultOutlierFraction is the share of a driver's slowest laps left out of
// the outlier-free average.
const DefaultOutlierFraction = 0.1

// ErrInvalidOutlierFraction is returned for a fraction outside [0, 1).
var ErrInvalidOutlierFraction = errors.New("outlier fraction must be in [0, 1)")

// TeamSummary is one row of the race results table.
type TeamSummary struct {
	Position         int     `json:"position"                yaml:"position"`
	KartNumber       int     `json:"kart_number"             yaml:"kart_number"`
	Team             string  `json:"team"                    yaml:"team"`
	Laps             int     `json:"laps"                    yaml:"laps"`
	DistanceToWinner float64 `json:"distance_to_winner"      yaml:"distance_to_winner"`
	FastestLap       float64 `json:"fastest_lap"             yaml:"fastest_lap"`
	SlowestLap       float64 `json:"slowest_lap"             yaml:"slowest_lap"`
	AverageLap       float64 `json:"average_lap"             yaml:"average_lap"`
	StdDev           float64 `json:"std_dev"                 yaml:"std_dev"`
	TotalTime        float64 `json:"total_time"              yaml:"total_time"`
	PitTime          float64 `json:"pit_time"                yaml:"pit_time"`
	PitStops         int     `json:"pit_stops"               yaml:"pit_stops"`
	AveragePitTime   float64 `json:"average_pit_time"        yaml:"average_pit_time"`
	Stopped          bool    `json:"stopped,omitempty"       yaml:"stopped,omitempty"`
}

// DriverSummary summarises the laps one driver completed for one team.
type DriverSummary struct {
	Driver            string  `json:"driver"               yaml:"driver"`
	Team              string  `json:"team"                 yaml:"team"`
	Laps              int     `json:"laps"                 yaml:"laps"`
	FastestLap        float64 `json:"fastest_lap"          yaml:"fastest_lap"`
	SlowestLap        float64 `json:"slowest_lap"          yaml:"slowest_lap"`
	AverageLap        float64 `json:"average_lap"          yaml:"average_lap"`
	AverageNoOutliers float64 `json:"average_no_outliers"  yaml:"average_no_outliers"`
	StdDev            float64 `json:"std_dev"              yaml:"std_dev"`
}

// Teams summarises every team in finish-position order. Slowest lap and
// standard deviation ignore pit laps; fastest lap and average use all laps.
func Teams(res *race.Result) []TeamSummary {
	entries := res.ByPosition()
	summaries := make([]TeamSummary, 0, len(entries))

	for _, team := range entries {
		summary := TeamSummary{
			Position:         team.FinishPosition,
			KartNumber:       team.KartNumber,
			Team:             team.TeamName,
			Laps:             len(team.Laps),
			DistanceToWinner: team.DistanceToWinner,
			TotalTime:        team.TotalTime(),
			Stopped:          team.HasStopped,
		}

		all := make([]float64, 0, len(team.Laps))
		driven := make([]float64, 0, len(team.Laps))

		for _, lap := range team.Laps {
			all = append(all, lap.Time)

			if lap.IsPit() {
				summary.PitTime += lap.Time
				summary.PitStops++

				continue
			}

			driven = append(driven, lap.Time)
		}

		if len(all) > 0 {
			summary.FastestLap = slices.Min(all)
			summary.AverageLap = summary.TotalTime / float64(len(all))
		}

		if len(driven) > 0 {
			summary.SlowestLap = slices.Max(driven)
		}

		summary.StdDev = SampleStdDev(driven)

		if summary.PitStops > 0 {
			summary.AveragePitTime = summary.PitTime / float64(summary.PitStops)
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

// Drivers summarises every (driver, team) pair, fastest lap first.
// Pit laps are not attributed to any driver.
func Drivers(res *race.Result, outlierFraction float64) ([]DriverSummary, error) {
	if outlierFraction < 0 || outlierFraction >= 1 || math.IsNaN(outlierFraction) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutlierFraction, outlierFraction)
	}

	type key struct{ driver, team string }

	var order []key

	laps := make(map[key][]float64)

	for _, team := range res.ByPosition() {
		for _, lap := range team.Laps {
			if lap.IsPit() {
				continue
			}

			k := key{driver: lap.Driver, team: team.TeamName}
			if _, ok := laps[k]; !ok {
				order = append(order, k)
			}

			laps[k] = append(laps[k], lap.Time)
		}
	}

	summaries := make([]DriverSummary, 0, len(order))

	for _, k := range order {
		times := laps[k]
		mean, _ := MeanStdDev(times)

		summaries = append(summaries, DriverSummary{
			Driver:            k.driver,
			Team:              k.team,
			Laps:              len(times),
			FastestLap:        slices.Min(times),
			SlowestLap:        slices.Max(times),
			AverageLap:        mean,
			AverageNoOutliers: TrimmedMean(times, outlierFraction),
			StdDev:            SampleStdDev(times),
		})
	}

	slices.SortStableFunc(summaries, func(a, b DriverSummary) int {
		return cmp.Compare(a.FastestLap, b.FastestLap)
	})

	return summaries, nil
}
