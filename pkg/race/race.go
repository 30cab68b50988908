// Package race defines the karting race result model: teams, their laps and
// the drivers who drove them. It loads results from YAML or JSON documents and
// rejects structurally or semantically invalid input before any analysis runs.
package race

import (
	"slices"
	"strings"
)

// PitDriver is the driver label used for laps spent in the pit lane.
// It is bookkeeping only and never names a real driver.
const PitDriver = "Pit"

// Lap is a single completed lap of a team.
type Lap struct {
	Time   float64 `json:"time"   yaml:"time"`
	Driver string  `json:"driver" yaml:"driver"`
}

// IsPit reports whether the lap was spent in the pit lane.
func (l Lap) IsPit() bool {
	return l.Driver == PitDriver
}

// TeamEntry is one team's line in the official race result.
type TeamEntry struct {
	FinishPosition   int     `json:"finish_position"       yaml:"finish_position"`
	KartNumber       int     `json:"kart_number"           yaml:"kart_number"`
	TeamName         string  `json:"team_name"             yaml:"team_name"`
	DistanceToWinner float64 `json:"distance_to_winner"    yaml:"distance_to_winner"`
	HasStopped       bool    `json:"has_stopped,omitempty" yaml:"has_stopped,omitempty"`
	Laps             []Lap   `json:"laps"                  yaml:"laps"`
}

// TotalTime returns the sum of all lap times of the team.
func (t TeamEntry) TotalTime() float64 {
	var total float64

	for _, lap := range t.Laps {
		total += lap.Time
	}

	return total
}

// Result is a complete, closed race result set.
type Result struct {
	RaceName string      `json:"race_name" yaml:"race_name"`
	Results  []TeamEntry `json:"results"   yaml:"results"`
}

// ByPosition returns the team entries ordered by finish position.
// Entries sharing a position keep their input order. The receiver is not modified.
func (r *Result) ByPosition() []TeamEntry {
	entries := slices.Clone(r.Results)

	slices.SortStableFunc(entries, func(a, b TeamEntry) int {
		return a.FinishPosition - b.FinishPosition
	})

	return entries
}

// Winner returns the team that finished first, or false for an empty result.
func (r *Result) Winner() (TeamEntry, bool) {
	entries := r.ByPosition()
	if len(entries) == 0 {
		return TeamEntry{}, false
	}

	return entries[0], true
}

// Drivers returns the distinct driver names in order of first appearance,
// excluding the pit sentinel.
func (r *Result) Drivers() []string {
	seen := make(map[string]bool)

	var names []string

	for _, team := range r.Results {
		for _, lap := range team.Laps {
			if lap.IsPit() || seen[lap.Driver] {
				continue
			}

			seen[lap.Driver] = true
			names = append(names, lap.Driver)
		}
	}

	return names
}

// collidesWithPit reports whether name looks like the pit sentinel without
// being exactly it.
func collidesWithPit(name string) bool {
	if name == PitDriver {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(name), PitDriver)
}
