// Package timeline aligns per-entity lap streams onto a shared time axis.
//
// Every team (or driver) completes laps at its own timestamps. To compare
// entities at the same instant the engine merges all lap completion times into
// one sorted axis and, for every entity and every axis point, interpolates a
// fractional lap count ("progress"). Comparative metrics such as distance to
// the leader or deviation from the field's average pace are derived from those
// progress values.
package timeline

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
)

// ErrEmptySeries is returned when a series is built from no laps.
var ErrEmptySeries = errors.New("series has no laps")

// Series is the cumulative lap timeline of one entity.
// Cumulative, LapTimes and Labels are index-aligned, one entry per lap.
type Series struct {
	// Name identifies the entity; unique within one run.
	Name string
	// Cumulative holds the strictly increasing prefix sums of LapTimes.
	Cumulative []float64
	// LapTimes holds the duration of every lap in seconds.
	LapTimes []float64
	// Labels annotates every lap: the driver for a team, the team for a driver.
	Labels []string
	// Stopped marks an entity that retired before the end of the race.
	Stopped bool
}

// NewSeries builds a series from lap durations.
func NewSeries(name string, lapTimes []float64, labels []string, stopped bool) (Series, error) {
	if len(lapTimes) == 0 {
		return Series{}, fmt.Errorf("%w: %w: %q", race.ErrMalformedRaceData, ErrEmptySeries, name)
	}

	if len(labels) != len(lapTimes) {
		return Series{}, fmt.Errorf("%w: %q: %d labels for %d laps",
			race.ErrMalformedRaceData, name, len(labels), len(lapTimes))
	}

	cumulative := make([]float64, len(lapTimes))

	var total float64

	for i, lapTime := range lapTimes {
		if !(lapTime > 0) {
			return Series{}, fmt.Errorf("%w: %q lap %d: non-positive lap time %v",
				race.ErrMalformedRaceData, name, i+1, lapTime)
		}

		total += lapTime
		cumulative[i] = total
	}

	return Series{
		Name:       name,
		Cumulative: cumulative,
		LapTimes:   append([]float64(nil), lapTimes...),
		Labels:     append([]string(nil), labels...),
		Stopped:    stopped,
	}, nil
}

// TeamSeries converts every team of the result into a series, ordered by
// finish position so that index 0 is the race winner.
func TeamSeries(res *race.Result) ([]Series, error) {
	err := res.Validate()
	if err != nil {
		return nil, err
	}

	entries := res.ByPosition()
	series := make([]Series, 0, len(entries))

	for _, team := range entries {
		lapTimes := make([]float64, len(team.Laps))
		drivers := make([]string, len(team.Laps))

		for i, lap := range team.Laps {
			lapTimes[i] = lap.Time
			drivers[i] = lap.Driver
		}

		s, seriesErr := NewSeries(team.TeamName, lapTimes, drivers, team.HasStopped)
		if seriesErr != nil {
			return nil, seriesErr
		}

		series = append(series, s)
	}

	return series, nil
}

// LapCount returns the number of completed laps.
func (s Series) LapCount() int {
	return len(s.Cumulative)
}

// FirstTime returns the cumulative time of the first lap.
func (s Series) FirstTime() float64 {
	if len(s.Cumulative) == 0 {
		return 0
	}

	return s.Cumulative[0]
}

// LastTime returns the cumulative time of the last real lap.
func (s Series) LastTime() float64 {
	if len(s.Cumulative) == 0 {
		return 0
	}

	return s.Cumulative[len(s.Cumulative)-1]
}

// FinalPace is the running average lap time after the last lap.
func (s Series) FinalPace() float64 {
	if len(s.Cumulative) == 0 {
		return 0
	}

	return s.LastTime() / float64(s.LapCount())
}

// FirstPace is the running average lap time after the first lap.
func (s Series) FirstPace() float64 {
	return s.FirstTime()
}

// RunningAverages returns the average lap time after each lap.
func (s Series) RunningAverages() []float64 {
	averages := make([]float64, len(s.Cumulative))

	for i, cumulative := range s.Cumulative {
		averages[i] = cumulative / float64(i+1)
	}

	return averages
}

// GlobalMax returns the largest cumulative time over all series.
func GlobalMax(series []Series) float64 {
	var result float64

	for _, s := range series {
		result = max(result, s.LastTime())
	}

	return result
}
