package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionResultDecoding(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantInput  ValueKind
		wantResult ValueKind
		wantTime   DisplayText
	}{
		{
			name:       "sequence input and result",
			body:       `{"input":[5,2,8],"result":[2,5,8],"executionTime":"0.12ms","timestamp":"2024-01-02T03:04:05Z"}`,
			wantInput:  ValueSequence,
			wantResult: ValueSequence,
			wantTime:   "0.12ms",
		},
		{
			name:       "structured input, scalar result",
			body:       `{"input":{"array":[1,2,3],"target":2},"result":1,"executionTime":"1ms","timestamp":""}`,
			wantInput:  ValueStructured,
			wantResult: ValueStructured,
			wantTime:   "1ms",
		},
		{
			name:       "numeric execution time is kept as text",
			body:       `{"input":[1],"result":{"found":true},"executionTime":0.5,"timestamp":"x"}`,
			wantInput:  ValueSequence,
			wantResult: ValueStructured,
			wantTime:   "0.5",
		},
		{
			name:       "missing input stays absent",
			body:       `{"result":[1]}`,
			wantInput:  ValueAbsent,
			wantResult: ValueSequence,
			wantTime:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ExecutionResult
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.wantInput, got.Input.Kind)
			assert.Equal(t, tt.wantResult, got.Result.Kind)
			assert.Equal(t, tt.wantTime, got.ExecutionTime)
		})
	}
}

func TestExecutionResultDecoding_ObjectExecutionTimeFails(t *testing.T) {
	var got ExecutionResult
	err := json.Unmarshal([]byte(`{"result":[1],"executionTime":{"ms":1}}`), &got)
	assert.Error(t, err)
}

func TestValueSequenceItems(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(` [1, "two", null, [3]] `), &v))

	require.Equal(t, ValueSequence, v.Kind)
	require.Len(t, v.Items, 4)
	assert.JSONEq(t, `"two"`, string(v.Items[1]))
	assert.JSONEq(t, `[3]`, string(v.Items[3]))
}

func TestPayloadRequestWireShape(t *testing.T) {
	t.Run("array payload sends a bare list", func(t *testing.T) {
		body, err := json.Marshal(ArrayPayload{AlgorithmID: 1, Values: []int{5, 2, 8}}.Request())
		require.NoError(t, err)
		assert.JSONEq(t, `{"algorithmId":1,"input":[5,2,8]}`, string(body))
	})

	t.Run("nil values still encode as an empty list", func(t *testing.T) {
		body, err := json.Marshal(ArrayPayload{AlgorithmID: 2}.Request())
		require.NoError(t, err)
		assert.JSONEq(t, `{"algorithmId":2,"input":[]}`, string(body))
	})

	t.Run("search payload nests array and target", func(t *testing.T) {
		p := SearchPayload{AlgorithmID: 3, Array: []int{1, 2, 3}, Target: 2}
		body, err := json.Marshal(p.Request())
		require.NoError(t, err)
		assert.JSONEq(t, `{"algorithmId":3,"input":{"array":[1,2,3],"target":2}}`, string(body))
	})
}

func TestAlgorithmShapeDefault(t *testing.T) {
	assert.Equal(t, ShapeArray, Algorithm{ID: 1}.Shape())
	assert.Equal(t, ShapeArraySearch, Algorithm{ID: 3, InputShape: ShapeArraySearch}.Shape())
	assert.Contains(t, ShapeArraySearch.Placeholder(), "\n")
}

func TestAlgorithmResolved(t *testing.T) {
	legacy := LegacyShapes()

	assert.Equal(t, ShapeArraySearch, Algorithm{ID: BinarySearchID}.Resolved(legacy).InputShape)
	assert.Equal(t, ShapeArray, Algorithm{ID: 1}.Resolved(legacy).InputShape)
	assert.Equal(t, ShapeArray, Algorithm{ID: BinarySearchID, InputShape: ShapeArray}.Resolved(legacy).InputShape,
		"an explicit tag wins over the legacy table")
	assert.Equal(t, ShapeArray, Algorithm{ID: BinarySearchID}.Resolved(nil).InputShape)
}
