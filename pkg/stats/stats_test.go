package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
	"github.com/Sumatoshi-tech/kartlytics/pkg/stats"
)

const delta = 1e-9

func sampleRace() *race.Result {
	return &race.Result{
		RaceName: "Endurance",
		Results: []race.TeamEntry{
			{
				FinishPosition: 2, KartNumber: 7, TeamName: "Slowpokes", DistanceToWinner: 1, HasStopped: true,
				Laps: []race.Lap{{Time: 40, Driver: "Eve"}, {Time: 42, Driver: "Eve"}},
			},
			{
				FinishPosition: 1, KartNumber: 3, TeamName: "Rockets",
				Laps: []race.Lap{
					{Time: 31, Driver: "Ann"},
					{Time: 30, Driver: "Ann"},
					{Time: 90, Driver: race.PitDriver},
					{Time: 33, Driver: "Bob"},
					{Time: 29, Driver: "Bob"},
					{Time: 60, Driver: "Bob"},
				},
			},
		},
	}
}

func TestTeams(t *testing.T) {
	t.Parallel()

	summaries := stats.Teams(sampleRace())
	require.Len(t, summaries, 2)

	rockets := summaries[0]
	assert.Equal(t, "Rockets", rockets.Team)
	assert.Equal(t, 1, rockets.Position)
	assert.Equal(t, 6, rockets.Laps)
	assert.InDelta(t, 29.0, rockets.FastestLap, delta)
	assert.InDelta(t, 60.0, rockets.SlowestLap, delta)
	assert.InDelta(t, 273.0/6, rockets.AverageLap, delta)
	assert.InDelta(t, 273.0, rockets.TotalTime, delta)
	assert.InDelta(t, 90.0, rockets.PitTime, delta)
	assert.Equal(t, 1, rockets.PitStops)
	assert.InDelta(t, 90.0, rockets.AveragePitTime, delta)
	assert.False(t, rockets.Stopped)

	slowpokes := summaries[1]
	assert.Zero(t, slowpokes.PitStops)
	assert.Zero(t, slowpokes.AveragePitTime)
	assert.True(t, slowpokes.Stopped)
	assert.InDelta(t, 1.0, slowpokes.DistanceToWinner, delta)
}

func TestDrivers(t *testing.T) {
	t.Parallel()

	summaries, err := stats.Drivers(sampleRace(), stats.DefaultOutlierFraction)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// Sorted by fastest lap.
	assert.Equal(t, "Bob", summaries[0].Driver)
	assert.Equal(t, "Ann", summaries[1].Driver)
	assert.Equal(t, "Eve", summaries[2].Driver)

	bob := summaries[0]
	assert.Equal(t, "Rockets", bob.Team)
	assert.Equal(t, 3, bob.Laps)
	assert.InDelta(t, 29.0, bob.FastestLap, delta)
	assert.InDelta(t, 60.0, bob.SlowestLap, delta)
	assert.InDelta(t, 122.0/3, bob.AverageLap, delta)
	// round(0.9*3) = 3 laps kept.
	assert.InDelta(t, 122.0/3, bob.AverageNoOutliers, delta)

	ann := summaries[1]
	assert.InDelta(t, 0.7071067811865476, ann.StdDev, delta)
}

func TestDriversSplitsPerTeam(t *testing.T) {
	t.Parallel()

	res := sampleRace()
	res.Results[0].Laps[1].Driver = "Ann"

	summaries, err := stats.Drivers(res, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	var teams []string

	for _, s := range summaries {
		if s.Driver == "Ann" {
			teams = append(teams, s.Team)
		}
	}

	assert.ElementsMatch(t, []string{"Rockets", "Slowpokes"}, teams)
}

func TestDriversRejectsBadFraction(t *testing.T) {
	t.Parallel()

	for _, fraction := range []float64{-0.1, 1, 2} {
		_, err := stats.Drivers(sampleRace(), fraction)
		require.ErrorIs(t, err, stats.ErrInvalidOutlierFraction)
	}
}

func TestTrimmedMean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []float64
		fraction float64
		want     float64
	}{
		{name: "empty", values: nil, fraction: 0.1, want: 0},
		{name: "single lap kept", values: []float64{42}, fraction: 0.5, want: 42},
		{name: "no trimming", values: []float64{30, 31, 32}, fraction: 0, want: 31},
		{name: "slowest dropped", values: []float64{30, 90, 31, 32, 30, 31, 30, 32, 31, 33}, fraction: 0.1, want: 280.0 / 9},
		{name: "half rounds away from zero", values: []float64{30, 32, 31, 100}, fraction: 0.125, want: 48.25},
		{name: "rounds down", values: []float64{30, 32, 31, 100}, fraction: 0.2, want: 31.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, stats.TrimmedMean(tt.values, tt.fraction), delta)
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	t.Parallel()

	assert.Zero(t, stats.SampleStdDev(nil))
	assert.Zero(t, stats.SampleStdDev([]float64{30}))
	assert.InDelta(t, 1.0, stats.SampleStdDev([]float64{29, 30, 31}), delta)

	mean, stddev := stats.MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, delta)
	assert.InDelta(t, 2.0, stddev, delta)
}
