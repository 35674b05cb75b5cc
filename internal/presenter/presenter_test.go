package presenter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/algotest/internal/model"
)

func decode(t *testing.T, body string) *model.ExecutionResult {
	t.Helper()
	var r model.ExecutionResult
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return &r
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 15, 10, 33, 0, 0, time.UTC)
}

func TestPresent_Sequence(t *testing.T) {
	p := New(time.UTC, fixedNow)
	v := p.Present(decode(t, `{
		"input": [64, 34, 25],
		"result": [25, 34, 64],
		"executionTime": "0.12ms",
		"timestamp": "2024-01-15T10:30:00Z"
	}`))

	assert.Equal(t, "64, 34, 25", v.Input)
	assert.Equal(t, "25, 34, 64", v.Result)
	assert.Equal(t, "0.12ms", v.ExecutionTime)
	assert.Equal(t, "Jan 15, 2024, 10:30:00 AM UTC", v.Timestamp)
	assert.Equal(t, "3 minutes ago", v.Relative)
}

func TestPresent_Structured(t *testing.T) {
	p := New(time.UTC, fixedNow)
	v := p.Present(decode(t, `{
		"input": {"array": [1, 2, 3], "target": 2},
		"result": {"index": 1, "found": true}
	}`))

	assert.Equal(t, `{"array":[1,2,3],"target":2}`, v.Input)
	assert.Equal(t, `{"index":1,"found":true}`, v.Result)
}

func TestPresent_MissingMembers(t *testing.T) {
	p := New(time.UTC, fixedNow)
	v := p.Present(decode(t, `{"result": []}`))

	assert.Empty(t, v.Input)
	assert.Empty(t, v.Result)
	assert.Empty(t, v.ExecutionTime)
	assert.Empty(t, v.Timestamp)
	assert.Empty(t, v.Relative)
}

func TestPresent_UnparsableTimestampShownVerbatim(t *testing.T) {
	p := New(time.UTC, fixedNow)
	v := p.Present(&model.ExecutionResult{Timestamp: "yesterday-ish"})

	assert.Equal(t, "yesterday-ish", v.Timestamp)
	assert.Empty(t, v.Relative)
}

func TestPresent_TimestampInObserverLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	p := New(loc, fixedNow)
	v := p.Present(&model.ExecutionResult{Timestamp: "2024-01-15T10:30:00.123456Z"})

	assert.Equal(t, "Jan 15, 2024, 4:00:00 PM IST", v.Timestamp)
}

func TestPresent_NilIsEmpty(t *testing.T) {
	assert.Equal(t, View{}, New(nil, nil).Present(nil))
}

func TestRenderValue(t *testing.T) {
	tests := []struct {
		name string
		val  model.Value
		want string
	}{
		{"absent", model.Value{}, ""},
		{"empty sequence", model.SequenceOf(), ""},
		{"mixed scalars", model.SequenceOf(1, "two", true, nil, 2.5), "1, two, true, , 2.5"},
		{"nested", model.SequenceOf([]int{1, 2}, map[string]int{"a": 1}), `[1,2], {"a":1}`},
		{"structured null", model.StructuredOf(nil), "null"},
		{"structured string", model.StructuredOf("done"), `"done"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderValue(tt.val))
		})
	}
}

func TestRenderValue_NeverPanicsOnGarbage(t *testing.T) {
	garbage := model.Value{Kind: model.ValueStructured, Raw: []byte(`{not json`)}
	assert.NotPanics(t, func() {
		assert.Equal(t, `{not json`, RenderValue(garbage))
	})

	badItem := model.Value{Kind: model.ValueSequence, Items: []json.RawMessage{[]byte(`"unterminated`)}}
	assert.NotPanics(t, func() { RenderValue(badItem) })
}
