package model

// Payload is the structured request body derived from raw operator text.
//
// It is a closed tagged union: the only implementations are ArrayPayload and
// SearchPayload. The unexported marker method keeps other packages from
// adding variants without also teaching the wire format about them.
type Payload interface {
	// Shape reports which variant this payload is.
	Shape() InputShape
	// Request converts the payload into the POST /api/run-algorithm body.
	Request() RunRequest

	isPayload()
}

// RunRequest is the JSON body sent to the execution service:
//
//	{"algorithmId": 1, "input": [5, 2, 8]}
//	{"algorithmId": 3, "input": {"array": [1, 2, 3], "target": 2}}
type RunRequest struct {
	AlgorithmID int `json:"algorithmId"`
	Input       any `json:"input"`
}

// ArrayPayload is the default shape: an ordered list of integers.
type ArrayPayload struct {
	AlgorithmID int
	Values      []int
}

func (ArrayPayload) Shape() InputShape { return ShapeArray }

func (p ArrayPayload) Request() RunRequest {
	values := p.Values
	if values == nil {
		// Always send a JSON array, never null.
		values = []int{}
	}
	return RunRequest{AlgorithmID: p.AlgorithmID, Input: values}
}

func (ArrayPayload) isPayload() {}

// SearchPayload carries a sorted list and the value to look for.
type SearchPayload struct {
	AlgorithmID int
	Array       []int
	Target      int
}

// searchInput is the wire form of SearchPayload's "input" member.
type searchInput struct {
	Array  []int `json:"array"`
	Target int   `json:"target"`
}

func (SearchPayload) Shape() InputShape { return ShapeArraySearch }

func (p SearchPayload) Request() RunRequest {
	array := p.Array
	if array == nil {
		array = []int{}
	}
	return RunRequest{
		AlgorithmID: p.AlgorithmID,
		Input:       searchInput{Array: array, Target: p.Target},
	}
}

func (SearchPayload) isPayload() {}
