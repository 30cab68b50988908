package race

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformedRaceData is the root of every input validation failure.
var ErrMalformedRaceData = errors.New("malformed race data")

// Validate checks the semantic invariants every analysis relies on.
// All problems are reported at once; each one wraps ErrMalformedRaceData and
// names the offending team, lap and field.
func (r *Result) Validate() error {
	if r == nil || len(r.Results) == 0 {
		return fmt.Errorf("%w: results: no teams", ErrMalformedRaceData)
	}

	var errs []error

	teams := make(map[string]bool, len(r.Results))
	drivers := make(map[string]string)

	for teamIdx, team := range r.Results {
		label := teamLabel(teamIdx, team)

		switch {
		case strings.TrimSpace(team.TeamName) == "":
			errs = append(errs, fmt.Errorf("%w: %s: team_name: empty", ErrMalformedRaceData, label))
		case teams[team.TeamName]:
			errs = append(errs, fmt.Errorf("%w: %s: team_name: duplicate", ErrMalformedRaceData, label))
		default:
			teams[team.TeamName] = true
		}

		if len(team.Laps) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s: laps: no laps", ErrMalformedRaceData, label))

			continue
		}

		for lapIdx, lap := range team.Laps {
			errs = append(errs, validateLap(label, lapIdx, lap, drivers)...)
		}
	}

	return errors.Join(errs...)
}

func validateLap(label string, lapIdx int, lap Lap, drivers map[string]string) []error {
	var errs []error

	where := fmt.Sprintf("%s lap %d", label, lapIdx+1)

	if math.IsNaN(lap.Time) || math.IsInf(lap.Time, 0) || lap.Time <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s: time: must be a positive number of seconds, got %v",
			ErrMalformedRaceData, where, lap.Time))
	}

	switch {
	case strings.TrimSpace(lap.Driver) == "":
		errs = append(errs, fmt.Errorf("%w: %s: driver: empty", ErrMalformedRaceData, where))
	case collidesWithPit(lap.Driver):
		errs = append(errs, fmt.Errorf("%w: %s: driver: %q collides with the pit marker %q",
			ErrMalformedRaceData, where, lap.Driver, PitDriver))
	case lap.IsPit():
	default:
		key := driverKey(lap.Driver)

		known, ok := drivers[key]
		if ok && known != lap.Driver {
			errs = append(errs, fmt.Errorf("%w: %s: driver: %q is ambiguous with %q",
				ErrMalformedRaceData, where, lap.Driver, known))
		} else if !ok {
			drivers[key] = lap.Driver
		}
	}

	return errs
}

// driverKey folds spelling variants that would otherwise split one driver in two.
func driverKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func teamLabel(idx int, team TeamEntry) string {
	if team.TeamName == "" {
		return fmt.Sprintf("team #%d", idx+1)
	}

	return fmt.Sprintf("team %q", team.TeamName)
}
