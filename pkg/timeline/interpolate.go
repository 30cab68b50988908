package timeline

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Tolerance is the absolute tolerance under which two cumulative times are
// treated as simultaneous.
const Tolerance = 1e-6

// Mode selects the boundary rules of an interpolation run.
type Mode int

const (
	// ModeTeam freezes stopped teams after their last lap.
	ModeTeam Mode = iota
	// ModeDriver extrapolates drivers backwards before their first lap.
	ModeDriver
)

func (m Mode) String() string {
	if m == ModeDriver {
		return "driver"
	}

	return "team"
}

// Options tunes an interpolation run.
type Options struct {
	// Tolerance overrides the default float comparison tolerance when > 0.
	Tolerance float64
	// Workers bounds the number of entities interpolated concurrently.
	// Zero means GOMAXPROCS.
	Workers int
}

func (o Options) tolerance() float64 {
	if o.Tolerance > 0 {
		return o.Tolerance
	}

	return Tolerance
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}

	return runtime.GOMAXPROCS(0)
}

// Progress is the interpolated fractional lap count of one entity at every
// point of a shared axis.
type Progress struct {
	Name   string
	Values []float64
	// MaxValidIndex is the last axis index backed by real data: the index just
	// before the axis first passes the entity's last lap. It is the last axis
	// index when that never happens and -1 when it happens at index 0.
	MaxValidIndex int
}

// Valid returns the values up to and including MaxValidIndex.
func (p Progress) Valid() []float64 {
	return p.Values[:p.MaxValidIndex+1]
}

// SharedAxis merges the raw cumulative times of all series into one ascending
// axis. Duplicates are kept: every completed lap of every entity is a point.
func SharedAxis(series []Series) []float64 {
	var total int

	for _, s := range series {
		total += s.LapCount()
	}

	axis := make([]float64, 0, total)

	for _, s := range series {
		axis = append(axis, s.Cumulative...)
	}

	slices.Sort(axis)

	return axis
}

// InterpolateSeries computes the progress of one entity along axis, given its
// extended series.
func InterpolateSeries(s Series, extended Extension, axis []float64, mode Mode, tolerance float64) Progress {
	cur := newCursor(s, extended, mode, tolerance)

	values := make([]float64, len(axis))
	maxValid := len(axis) - 1
	passed := false

	for i, t := range axis {
		if !passed && t > s.LastTime() && !floatsClose(t, s.LastTime(), tolerance) {
			maxValid = i - 1
			passed = true
		}

		values[i] = cur.step(t)
	}

	return Progress{Name: s.Name, Values: values, MaxValidIndex: maxValid}
}

// Interpolate extends every series to the global maximum and interpolates it
// along axis. Entities are independent and processed concurrently; the
// result keeps the order of series.
func Interpolate(ctx context.Context, series []Series, axis []float64, mode Mode, opts Options) ([]Progress, error) {
	globalMax := GlobalMax(series)
	tolerance := opts.tolerance()
	result := make([]Progress, len(series))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.workers())

	for i, s := range series {
		group.Go(func() error {
			err := groupCtx.Err()
			if err != nil {
				return fmt.Errorf("interpolate %q: %w", s.Name, err)
			}

			result[i] = InterpolateSeries(s, Extend(s, globalMax), axis, mode, tolerance)

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}

	return result, nil
}

func floatsClose(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
