package timeline

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
)

// EntityResult holds every comparative series of one entity, clipped to
// SharedAxis[0..MaxValidIndex].
type EntityResult struct {
	Name                    string
	Progress                []float64
	MaxValidIndex           int
	RunningAveragePace      []float64
	DistanceToWinner        []float64
	DistanceToLeader        []float64
	RunningAverageDeviation []float64
	Labels                  []string
	Stopped                 bool
}

// Run is the outcome of one interpolation pipeline over teams or drivers.
type Run struct {
	Mode             Mode
	SharedAxis       []float64
	FieldAveragePace []float64
	Series           []Series
	Entities         []EntityResult
}

// Entity looks up an entity by name.
func (r *Run) Entity(name string) (EntityResult, bool) {
	for _, e := range r.Entities {
		if e.Name == name {
			return e, true
		}
	}

	return EntityResult{}, false
}

// Analyze runs the full pipeline over series: shared axis, extension,
// interpolation and comparative metrics. In team mode series[0] is the
// nominal winner used for distance-to-winner; driver runs have no winner.
func Analyze(ctx context.Context, series []Series, mode Mode, opts Options) (*Run, error) {
	axis := SharedAxis(series)

	progress, err := Interpolate(ctx, series, axis, mode, opts)
	if err != nil {
		return nil, fmt.Errorf("interpolate %s series: %w", mode, err)
	}

	field := FieldAveragePace(axis, series, progress)
	entities := make([]EntityResult, len(series))

	for i, p := range progress {
		entity := EntityResult{
			Name:                    p.Name,
			Progress:                append([]float64(nil), p.Valid()...),
			MaxValidIndex:           p.MaxValidIndex,
			RunningAveragePace:      RunningAveragePace(axis, p),
			DistanceToLeader:        DistanceToLeader(progress, p),
			RunningAverageDeviation: RunningAverageDeviation(axis, p, field),
			Labels:                  AxisLabels(axis, series[i], p, opts.tolerance()),
			Stopped:                 series[i].Stopped,
		}

		if mode == ModeTeam && len(progress) > 0 {
			entity.DistanceToWinner = DistanceToWinner(progress[0], p)
		}

		entities[i] = entity
	}

	return &Run{
		Mode:             mode,
		SharedAxis:       axis,
		FieldAveragePace: field,
		Series:           series,
		Entities:         entities,
	}, nil
}

// Teams runs the team pipeline over a race result.
func Teams(ctx context.Context, res *race.Result, opts Options) (*Run, error) {
	series, err := TeamSeries(res)
	if err != nil {
		return nil, err
	}

	return Analyze(ctx, series, ModeTeam, opts)
}

// Drivers runs the driver pipeline over a race result.
func Drivers(ctx context.Context, res *race.Result, opts Options) (*Run, error) {
	series, err := DriverSeries(res)
	if err != nil {
		return nil, err
	}

	return Analyze(ctx, series, ModeDriver, opts)
}
