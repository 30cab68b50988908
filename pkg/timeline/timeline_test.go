package timeline_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
	"github.com/Sumatoshi-tech/kartlytics/pkg/timeline"
)

const (
	knotDelta  = 1e-9
	valueDelta = 1e-6
)

func laps(driver string, times ...float64) []race.Lap {
	result := make([]race.Lap, len(times))
	for i, lapTime := range times {
		result[i] = race.Lap{Time: lapTime, Driver: driver}
	}

	return result
}

func twoTeamRace() *race.Result {
	return &race.Result{
		RaceName: "Two teams",
		Results: []race.TeamEntry{
			{FinishPosition: 2, KartNumber: 2, TeamName: "B", Laps: laps("Bea", 35, 35)},
			{FinishPosition: 1, KartNumber: 1, TeamName: "A", Laps: laps("Ann", 30, 30, 30)},
		},
	}
}

func TestNewSeries(t *testing.T) {
	t.Parallel()

	s, err := timeline.NewSeries("A", []float64{30, 31, 29}, []string{"x", "y", "z"}, false)
	require.NoError(t, err)

	assert.Equal(t, []float64{30, 61, 90}, s.Cumulative)
	assert.Equal(t, 3, s.LapCount())
	assert.InDelta(t, 30.0, s.FirstTime(), knotDelta)
	assert.InDelta(t, 90.0, s.LastTime(), knotDelta)
	assert.InDelta(t, 30.0, s.FinalPace(), knotDelta)
	assert.InDeltaSlice(t, []float64{30, 30.5, 30}, s.RunningAverages(), knotDelta)

	_, err = timeline.NewSeries("A", nil, nil, false)
	require.ErrorIs(t, err, timeline.ErrEmptySeries)
	require.ErrorIs(t, err, race.ErrMalformedRaceData)

	_, err = timeline.NewSeries("A", []float64{30, 0}, []string{"x", "y"}, false)
	require.ErrorIs(t, err, race.ErrMalformedRaceData)

	_, err = timeline.NewSeries("A", []float64{30}, []string{"x", "y"}, false)
	require.ErrorIs(t, err, race.ErrMalformedRaceData)
}

func TestTeamSeriesOrdersByPosition(t *testing.T) {
	t.Parallel()

	series, err := timeline.TeamSeries(twoTeamRace())
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, "A", series[0].Name)
	assert.Equal(t, []float64{30, 60, 90}, series[0].Cumulative)
	assert.Equal(t, []string{"Ann", "Ann", "Ann"}, series[0].Labels)
	assert.Equal(t, []float64{35, 70}, series[1].Cumulative)
	assert.InDelta(t, 90.0, timeline.GlobalMax(series), knotDelta)
}

func TestTeamSeriesRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	res := twoTeamRace()
	res.Results[0].Laps[1].Time = 0

	series, err := timeline.TeamSeries(res)
	require.ErrorIs(t, err, race.ErrMalformedRaceData)
	assert.Nil(t, series)
}

func points(e timeline.Extension) []float64 {
	out := make([]float64, e.Len())
	for k := range out {
		out[k] = e.At(k)
	}

	return out
}

func TestExtend(t *testing.T) {
	t.Parallel()

	series, err := timeline.TeamSeries(twoTeamRace())
	require.NoError(t, err)

	globalMax := timeline.GlobalMax(series)

	assert.Equal(t, []float64{0, 30, 60, 90, 120}, points(timeline.Extend(series[0], globalMax)))
	assert.Equal(t, []float64{0, 35, 70, 105}, points(timeline.Extend(series[1], globalMax)))

	for _, s := range series {
		extended := points(timeline.Extend(s, globalMax))
		assert.Zero(t, extended[0])
		assert.GreaterOrEqual(t, extended[len(extended)-1], globalMax)

		for i := 1; i < len(extended); i++ {
			assert.Greater(t, extended[i], extended[i-1])
		}
	}
}

func TestExtendSingleEntity(t *testing.T) {
	t.Parallel()

	s, err := timeline.NewSeries("Solo", []float64{30, 32}, []string{"x", "x"}, false)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 30, 62, 93}, points(timeline.Extend(s, s.LastTime())))
}

func TestExtendBracket(t *testing.T) {
	t.Parallel()

	s, err := timeline.NewSeries("B", []float64{35, 35}, []string{"b", "b"}, false)
	require.NoError(t, err)

	ext := timeline.Extend(s, 200)
	require.Equal(t, []float64{0, 35, 70, 105, 140, 175, 210}, points(ext))

	tests := []struct {
		at   float64
		from int
		want int
	}{
		{at: 10, from: 0, want: 0},
		{at: 35, from: 0, want: 0},
		{at: 36, from: 0, want: 1},
		{at: 70, from: 1, want: 1},
		{at: 71, from: 1, want: 2},
		{at: 140, from: 2, want: 3},
		{at: 141, from: 2, want: 4},
		{at: 209, from: 0, want: 5},
		{at: 500, from: 0, want: 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ext.Bracket(tt.at, tt.from), "t=%v from=%d", tt.at, tt.from)
	}
}

// A very fast entity in a very long race needs a hundred million synthetic
// points; none of them may be materialised. Not parallel: it measures
// allocations.
func TestInterpolateExtremePaceRatio(t *testing.T) {
	res := &race.Result{
		RaceName: "Ratio",
		Results: []race.TeamEntry{
			{FinishPosition: 1, KartNumber: 1, TeamName: "Slow", Laps: []race.Lap{{Time: 1e5, Driver: "Ann"}}},
			{FinishPosition: 2, KartNumber: 2, TeamName: "Fast", Laps: []race.Lap{{Time: 1e-3, Driver: "Bob"}}},
		},
	}
	require.NoError(t, res.Validate())

	series, err := timeline.TeamSeries(res)
	require.NoError(t, err)

	globalMax := timeline.GlobalMax(series)
	ext := timeline.Extend(series[1], globalMax)
	assert.InDelta(t, 100_000_001, ext.Len(), 1)
	assert.GreaterOrEqual(t, ext.At(ext.Len()-1), globalMax)

	var before runtime.MemStats

	runtime.ReadMemStats(&before)

	run, err := timeline.Teams(context.Background(), res, timeline.Options{})
	require.NoError(t, err)

	var after runtime.MemStats

	runtime.ReadMemStats(&after)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))

	assert.Equal(t, []float64{1e-3, 1e5}, run.SharedAxis)

	fast, ok := run.Entity("Fast")
	require.True(t, ok)
	assert.Equal(t, 0, fast.MaxValidIndex)
	assert.InDelta(t, 1.0, fast.Progress[0], knotDelta)

	// At 1e5 s the fast team is extrapolated to 1e8 laps and leads.
	slow, ok := run.Entity("Slow")
	require.True(t, ok)
	require.Len(t, slow.DistanceToLeader, 2)
	assert.InDelta(t, 1e8-1, slow.DistanceToLeader[1], 1e-3)
}

func TestSharedAxis(t *testing.T) {
	t.Parallel()

	res := twoTeamRace()
	res.Results[0].Laps = laps("Bea", 30, 30)

	series, err := timeline.TeamSeries(res)
	require.NoError(t, err)

	axis := timeline.SharedAxis(series)
	assert.Equal(t, []float64{30, 30, 60, 60, 90}, axis)
	assert.IsNonDecreasing(t, axis)
}

func TestInterpolateTwoTeams(t *testing.T) {
	t.Parallel()

	run, err := timeline.Teams(context.Background(), twoTeamRace(), timeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, []float64{30, 35, 60, 70, 90}, run.SharedAxis)

	a, ok := run.Entity("A")
	require.True(t, ok)
	b, ok := run.Entity("B")
	require.True(t, ok)

	assert.InDeltaSlice(t, []float64{1, 1 + 5.0/30, 2, 2 + 10.0/30, 3}, a.Progress, valueDelta)
	assert.Equal(t, 4, a.MaxValidIndex)

	assert.InDeltaSlice(t, []float64{30.0 / 35, 1, 1 + 25.0/35, 2}, b.Progress, valueDelta)
	assert.Equal(t, 3, b.MaxValidIndex)

	assert.InDelta(t, 2-(1+25.0/35), b.DistanceToLeader[2], valueDelta)
	assert.InDelta(t, 2-(1+25.0/35), b.DistanceToWinner[2], valueDelta)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 0}, a.DistanceToWinner, valueDelta)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0, 0}, a.DistanceToLeader, valueDelta)

	assert.Len(t, b.RunningAveragePace, 4)
	assert.Len(t, b.DistanceToLeader, 4)
	assert.Len(t, b.RunningAverageDeviation, 4)
	assert.Len(t, b.Labels, 4)
	assert.InDelta(t, 35.0, b.RunningAveragePace[1], valueDelta)
}

func TestInterpolationIsExactAtKnots(t *testing.T) {
	t.Parallel()

	res := &race.Result{Results: []race.TeamEntry{
		{FinishPosition: 1, TeamName: "A", Laps: laps("Ann", 31.2, 29.8, 30.4, 30.9, 29.7)},
		{FinishPosition: 2, TeamName: "B", Laps: laps("Bob", 33.1, 28.4, 35.0, 31.3)},
		{FinishPosition: 3, TeamName: "C", HasStopped: true, Laps: laps("Cid", 40.2, 38.7)},
		{FinishPosition: 4, TeamName: "D", Laps: laps("Dan", 30.0, 30.0, 30.0, 30.0, 30.0)},
	}}

	series, err := timeline.TeamSeries(res)
	require.NoError(t, err)

	axis := timeline.SharedAxis(series)
	require.Len(t, axis, 16)
	assert.IsNonDecreasing(t, axis)

	progress, err := timeline.Interpolate(context.Background(), series, axis, timeline.ModeTeam, timeline.Options{Workers: 2})
	require.NoError(t, err)

	for j, s := range series {
		for k, cumulative := range s.Cumulative {
			for i, t0 := range axis {
				if t0 == cumulative {
					assert.InDelta(t, float64(k+1), progress[j].Values[i], knotDelta,
						"%s lap %d at axis %d", s.Name, k+1, i)
				}
			}
		}
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	res := &race.Result{Results: []race.TeamEntry{
		{FinishPosition: 1, TeamName: "A", Laps: laps("Ann", 30, 45, 28, 33, 31)},
		{FinishPosition: 2, TeamName: "B", HasStopped: true, Laps: laps("Bob", 29, 29)},
		{FinishPosition: 3, TeamName: "C", Laps: laps("Cid", 50, 20, 60)},
	}}

	run, err := timeline.Teams(context.Background(), res, timeline.Options{Workers: 1})
	require.NoError(t, err)

	for _, e := range run.Entities {
		assert.IsNonDecreasing(t, e.Progress, e.Name)
	}
}

func TestStoppedTeamFreezes(t *testing.T) {
	t.Parallel()

	res := &race.Result{Results: []race.TeamEntry{
		{FinishPosition: 1, TeamName: "D", Laps: laps("Dan", 40, 40, 40)},
		{FinishPosition: 2, TeamName: "C", HasStopped: true, Laps: laps("Cid", 30, 30)},
	}}

	series, err := timeline.TeamSeries(res)
	require.NoError(t, err)

	axis := timeline.SharedAxis(series)
	require.Equal(t, []float64{30, 40, 60, 80, 120}, axis)

	progress, err := timeline.Interpolate(context.Background(), series, axis, timeline.ModeTeam, timeline.Options{})
	require.NoError(t, err)

	stopped := progress[1]
	assert.InDeltaSlice(t, []float64{1, 4.0 / 3, 2, 2, 2}, stopped.Values, valueDelta)
	assert.Equal(t, 2, stopped.MaxValidIndex)
	assert.Len(t, stopped.Valid(), 3)

	// The same team without the stopped flag keeps its extrapolated pace.
	res.Results[1].HasStopped = false

	series, err = timeline.TeamSeries(res)
	require.NoError(t, err)

	progress, err = timeline.Interpolate(context.Background(), series, axis, timeline.ModeTeam, timeline.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, progress[1].Values[4], valueDelta)
	assert.Equal(t, 2, progress[1].MaxValidIndex)
}

func TestSingleTeamRace(t *testing.T) {
	t.Parallel()

	res := &race.Result{Results: []race.TeamEntry{
		{FinishPosition: 1, TeamName: "Solo", Laps: laps("Ann", 30, 31, 29)},
	}}

	run, err := timeline.Teams(context.Background(), res, timeline.Options{})
	require.NoError(t, err)

	solo := run.Entities[0]
	assert.InDeltaSlice(t, []float64{1, 2, 3}, solo.Progress, knotDelta)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, solo.DistanceToWinner, knotDelta)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, solo.DistanceToLeader, knotDelta)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, solo.RunningAverageDeviation, valueDelta)

	drivers, err := timeline.Drivers(context.Background(), res, timeline.Options{})
	require.NoError(t, err)
	require.Len(t, drivers.Entities, 1)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, drivers.Entities[0].DistanceToLeader, knotDelta)
	assert.Nil(t, drivers.Entities[0].DistanceToWinner)
}

func TestSimultaneousFinish(t *testing.T) {
	t.Parallel()

	res := &race.Result{Results: []race.TeamEntry{
		{FinishPosition: 1, TeamName: "A", Laps: laps("Ann", 30, 30)},
		{FinishPosition: 2, TeamName: "B", Laps: laps("Bob", 20, 40.0000001)},
	}}

	run, err := timeline.Teams(context.Background(), res, timeline.Options{})
	require.NoError(t, err)

	for _, e := range run.Entities {
		assert.Equal(t, len(run.SharedAxis)-1, e.MaxValidIndex, e.Name)
		assert.InDelta(t, 2.0, e.Progress[len(e.Progress)-1], valueDelta)
	}
}

func TestInterpolateHonoursCancellation(t *testing.T) {
	t.Parallel()

	series, err := timeline.TeamSeries(twoTeamRace())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = timeline.Interpolate(ctx, series, timeline.SharedAxis(series), timeline.ModeTeam, timeline.Options{})
	require.ErrorIs(t, err, context.Canceled)
}
