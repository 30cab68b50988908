// Package report assembles the race analysis into one bundle and renders it
// as JSON, YAML, console text or an HTML chart page.
package report

import (
	"github.com/Sumatoshi-tech/kartlytics/pkg/stats"
	"github.com/Sumatoshi-tech/kartlytics/pkg/timeline"
)

// Kind tells team runs from driver runs.
type Kind string

// Run kinds.
const (
	KindTeam   Kind = "team"
	KindDriver Kind = "driver"
)

// EntityResult is the serialised view of one team or driver. All axis-aligned
// series cover shared_axis[0..max_valid_index].
type EntityResult struct {
	Name                    string    `json:"name"                         yaml:"name"`
	Progress                []float64 `json:"progress"                     yaml:"progress"`
	MaxValidIndex           int       `json:"max_valid_index"              yaml:"max_valid_index"`
	RunningAveragePace      []float64 `json:"running_average_pace"         yaml:"running_average_pace"`
	DistanceToWinner        []float64 `json:"distance_to_winner,omitempty" yaml:"distance_to_winner,omitempty"`
	DistanceToLeader        []float64 `json:"distance_to_leader"           yaml:"distance_to_leader"`
	RunningAverageDeviation []float64 `json:"running_average_deviation"    yaml:"running_average_deviation"`
	LapDrivers              []string  `json:"lap_drivers"                  yaml:"lap_drivers"`
	Stopped                 bool      `json:"stopped,omitempty"            yaml:"stopped,omitempty"`
	// CumulativeTimes and LapAverages are per lap, not per axis point.
	CumulativeTimes []float64 `json:"cumulative_times" yaml:"cumulative_times"`
	LapAverages     []float64 `json:"lap_averages"     yaml:"lap_averages"`
}

// FinalProgress returns the last valid progress value, or 0 when the entity
// has no valid axis point.
func (e EntityResult) FinalProgress() float64 {
	if len(e.Progress) == 0 {
		return 0
	}

	return e.Progress[len(e.Progress)-1]
}

// Run is one interpolated run over teams or drivers.
type Run struct {
	Kind             Kind           `json:"kind"               yaml:"kind"`
	SharedAxis       []float64      `json:"shared_axis"        yaml:"shared_axis"`
	FieldAveragePace []float64      `json:"field_average_pace" yaml:"field_average_pace"`
	Entities         []EntityResult `json:"entities"           yaml:"entities"`
}

// Lookup returns the entity with the given name.
func (r *Run) Lookup(name string) (EntityResult, bool) {
	if r == nil {
		return EntityResult{}, false
	}

	for _, e := range r.Entities {
		if e.Name == name {
			return e, true
		}
	}

	return EntityResult{}, false
}

// Names returns the entity names in run order.
func (r *Run) Names() []string {
	if r == nil {
		return nil
	}

	names := make([]string, len(r.Entities))
	for i, e := range r.Entities {
		names[i] = e.Name
	}

	return names
}

// Bundle is the complete analysis of one race.
type Bundle struct {
	RaceName        string                `json:"race_name"        yaml:"race_name"`
	Teams           *Run                  `json:"teams"            yaml:"teams"`
	Drivers         *Run                  `json:"drivers"          yaml:"drivers"`
	TeamSummaries   []stats.TeamSummary   `json:"team_summaries"   yaml:"team_summaries"`
	DriverSummaries []stats.DriverSummary `json:"driver_summaries" yaml:"driver_summaries"`
}

// Team returns the team result with the given name.
func (b *Bundle) Team(name string) (EntityResult, bool) {
	return b.Teams.Lookup(name)
}

// Driver returns the driver result with the given name.
func (b *Bundle) Driver(name string) (EntityResult, bool) {
	return b.Drivers.Lookup(name)
}

func newRun(run *timeline.Run) *Run {
	kind := KindTeam
	if run.Mode == timeline.ModeDriver {
		kind = KindDriver
	}

	entities := make([]EntityResult, len(run.Entities))

	for i, e := range run.Entities {
		entities[i] = EntityResult{
			Name:                    e.Name,
			Progress:                e.Progress,
			MaxValidIndex:           e.MaxValidIndex,
			RunningAveragePace:      e.RunningAveragePace,
			DistanceToWinner:        e.DistanceToWinner,
			DistanceToLeader:        e.DistanceToLeader,
			RunningAverageDeviation: e.RunningAverageDeviation,
			LapDrivers:              e.Labels,
			Stopped:                 e.Stopped,
			CumulativeTimes:         run.Series[i].Cumulative,
			LapAverages:             run.Series[i].RunningAverages(),
		}
	}

	return &Run{
		Kind:             kind,
		SharedAxis:       run.SharedAxis,
		FieldAveragePace: run.FieldAveragePace,
		Entities:         entities,
	}
}
