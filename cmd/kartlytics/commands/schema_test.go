package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantTitle bool
		wantProp  string
	}{
		{name: "default is input", args: []string{}, wantProp: "results"},
		{name: "input", args: []string{"input"}, wantProp: "results"},
		{name: "report", args: []string{"report"}, wantTitle: true, wantProp: "driver_summaries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			cmd := NewSchemaCommand()
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())

			var doc struct {
				Title      string                     `json:"title"`
				Properties map[string]json.RawMessage `json:"properties"`
			}

			require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
			assert.Contains(t, doc.Properties, tt.wantProp)

			if tt.wantTitle {
				assert.Equal(t, "Race Analysis Report", doc.Title)
			}
		})
	}
}

func TestSchemaCommandUnknownName(t *testing.T) {
	t.Parallel()

	cmd := NewSchemaCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"excel"})

	require.ErrorIs(t, cmd.Execute(), ErrUnknownSchema)
}
