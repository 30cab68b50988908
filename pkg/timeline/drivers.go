package timeline

import (
	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
)

// DriverSeries regroups the laps of the result by driver. A driver's laps
// keep their order within each stint, stints follow finish-position team
// order, and cumulative time is the driver's own seat time. Pit laps belong
// to no driver and are skipped. Labels carry the team of each lap.
func DriverSeries(res *race.Result) ([]Series, error) {
	err := res.Validate()
	if err != nil {
		return nil, err
	}

	type driverLaps struct {
		times []float64
		teams []string
	}

	var order []string

	laps := make(map[string]*driverLaps)

	for _, team := range res.ByPosition() {
		for _, lap := range team.Laps {
			if lap.IsPit() {
				continue
			}

			dl, ok := laps[lap.Driver]
			if !ok {
				dl = &driverLaps{}
				laps[lap.Driver] = dl
				order = append(order, lap.Driver)
			}

			dl.times = append(dl.times, lap.Time)
			dl.teams = append(dl.teams, team.TeamName)
		}
	}

	series := make([]Series, 0, len(order))

	for _, name := range order {
		dl := laps[name]

		s, seriesErr := NewSeries(name, dl.times, dl.teams, false)
		if seriesErr != nil {
			return nil, seriesErr
		}

		series = append(series, s)
	}

	return series, nil
}
