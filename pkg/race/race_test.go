package race_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
)

const sampleYAML = `
race_name: Winter Endurance
results:
  - finish_position: 2
    kart_number: 7
    team_name: Slow Pokes
    distance_to_winner: 1
    laps:
      - {time: 35, driver: Bob}
      - {time: 35, driver: Bob}
  - finish_position: 1
    kart_number: 3
    team_name: Fast Lane
    distance_to_winner: 0
    laps:
      - {time: 30, driver: Ann}
      - {time: 30, driver: Pit}
      - {time: 30, driver: Carl}
`

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	res, err := race.Decode(strings.NewReader(sampleYAML), race.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "Winter Endurance", res.RaceName)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "Slow Pokes", res.Results[0].TeamName)
	assert.InDelta(t, 90.0, res.Results[1].TotalTime(), 1e-9)
	assert.True(t, res.Results[1].Laps[1].IsPit())
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	doc := `{"race_name":"R","results":[{"finish_position":1,"kart_number":1,"team_name":"A",` +
		`"distance_to_winner":0,"has_stopped":true,"laps":[{"time":31.5,"driver":"Ann"}]}]}`

	res, err := race.Decode(strings.NewReader(doc), race.FormatJSON)
	require.NoError(t, err)
	assert.True(t, res.Results[0].HasStopped)
	assert.InDelta(t, 31.5, res.Results[0].Laps[0].Time, 1e-9)
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "race.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	res, err := race.Load(path)
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)

	_, missingErr := race.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, missingErr)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, race.FormatJSON, race.FormatFromPath("x/RACE.JSON"))
	assert.Equal(t, race.FormatYAML, race.FormatFromPath("race.yaml"))
	assert.Equal(t, race.FormatYAML, race.FormatFromPath("race"))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := race.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, race.FormatYAML, f)

	_, err = race.ParseFormat("xml")
	require.ErrorIs(t, err, race.ErrUnknownFormat)
}

func TestDecodeRejectsZeroLapTime(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(sampleYAML, "{time: 30, driver: Carl}", "{time: 0, driver: Carl}", 1)

	res, err := race.Decode(strings.NewReader(doc), race.FormatYAML)
	require.ErrorIs(t, err, race.ErrMalformedRaceData)
	require.ErrorIs(t, err, race.ErrSchemaViolation)
	assert.Nil(t, res)
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	t.Parallel()

	doc := `results: [{team_name: A, laps: [{time: 10, driver: Ann}]}]`

	_, err := race.Decode(strings.NewReader(doc), race.FormatYAML)
	require.ErrorIs(t, err, race.ErrMalformedRaceData)
	assert.Contains(t, err.Error(), "finish_position")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := race.Decode(strings.NewReader("{not json"), race.FormatJSON)
	require.ErrorIs(t, err, race.ErrMalformedRaceData)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	lap := func(time float64, driver string) race.Lap { return race.Lap{Time: time, Driver: driver} }

	tests := []struct {
		name    string
		result  *race.Result
		wantErr string
	}{
		{
			name:    "no teams",
			result:  &race.Result{},
			wantErr: "no teams",
		},
		{
			name: "zero laps",
			result: &race.Result{Results: []race.TeamEntry{
				{FinishPosition: 1, TeamName: "A"},
			}},
			wantErr: `team "A": laps: no laps`,
		},
		{
			name: "negative lap",
			result: &race.Result{Results: []race.TeamEntry{
				{FinishPosition: 1, TeamName: "A", Laps: []race.Lap{lap(10, "Ann"), lap(-1, "Ann")}},
			}},
			wantErr: `team "A" lap 2: time`,
		},
		{
			name: "duplicate team",
			result: &race.Result{Results: []race.TeamEntry{
				{FinishPosition: 1, TeamName: "A", Laps: []race.Lap{lap(10, "Ann")}},
				{FinishPosition: 2, TeamName: "A", Laps: []race.Lap{lap(10, "Bob")}},
			}},
			wantErr: "duplicate",
		},
		{
			name: "pit collision",
			result: &race.Result{Results: []race.TeamEntry{
				{FinishPosition: 1, TeamName: "A", Laps: []race.Lap{lap(10, " pit ")}},
			}},
			wantErr: "collides with the pit marker",
		},
		{
			name: "ambiguous driver",
			result: &race.Result{Results: []race.TeamEntry{
				{FinishPosition: 1, TeamName: "A", Laps: []race.Lap{lap(10, "Ann Lee")}},
				{FinishPosition: 2, TeamName: "B", Laps: []race.Lap{lap(10, "ann  lee")}},
			}},
			wantErr: "ambiguous",
		},
		{
			name: "empty driver",
			result: &race.Result{Results: []race.TeamEntry{
				{FinishPosition: 1, TeamName: "A", Laps: []race.Lap{lap(10, " ")}},
			}},
			wantErr: "driver: empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.result.Validate()
			require.ErrorIs(t, err, race.ErrMalformedRaceData)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	t.Parallel()

	res := &race.Result{Results: []race.TeamEntry{
		{FinishPosition: 1, TeamName: "A", Laps: []race.Lap{{Time: 0, Driver: "Ann"}}},
		{FinishPosition: 2, TeamName: "B"},
	}}

	err := res.Validate()
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.ErrorAs(t, err, &joined)
	assert.Len(t, joined.Unwrap(), 2)
}

func TestValidateAcceptsSameDriverInTwoTeams(t *testing.T) {
	t.Parallel()

	res := &race.Result{Results: []race.TeamEntry{
		{FinishPosition: 1, TeamName: "A", Laps: []race.Lap{{Time: 10, Driver: "Ann"}}},
		{FinishPosition: 2, TeamName: "B", Laps: []race.Lap{{Time: 11, Driver: "Ann"}, {Time: 40, Driver: race.PitDriver}}},
	}}

	require.NoError(t, res.Validate())
	assert.Equal(t, []string{"Ann"}, res.Drivers())
}

func TestByPosition(t *testing.T) {
	t.Parallel()

	res, err := race.Decode(strings.NewReader(sampleYAML), race.FormatYAML)
	require.NoError(t, err)

	sorted := res.ByPosition()
	assert.Equal(t, "Fast Lane", sorted[0].TeamName)
	assert.Equal(t, "Slow Pokes", res.Results[0].TeamName, "receiver must not be reordered")

	winner, ok := res.Winner()
	require.True(t, ok)
	assert.Equal(t, "Fast Lane", winner.TeamName)

	_, ok = (&race.Result{}).Winner()
	assert.False(t, ok)
}

func TestCheckSchemaListsIssues(t *testing.T) {
	t.Parallel()

	issues, err := race.CheckSchema(map[string]any{"results": []any{}})
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Equal(t, "results", issues[0].Field)

	assert.True(t, errors.Is(race.ValidateSchema(map[string]any{}), race.ErrSchemaViolation))
	assert.NotEmpty(t, race.Schema())
}
