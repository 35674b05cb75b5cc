// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// InputShape names the request shape an algorithm expects.
//
// The catalog resolves a shape for every descriptor when it loads, so the
// encoder only ever switches on this tag and never on a specific algorithm id.
// New shapes are added here, in the encoder, and in the wire payload types.
type InputShape string

const (
	// ShapeArray is a single comma-separated list of integers: "5,2,8,1".
	ShapeArray InputShape = "array"
	// ShapeArraySearch is a list on the first line and a target on the second.
	ShapeArraySearch InputShape = "arraySearch"
)

// Hint is the short usage note shown next to the input field.
func (s InputShape) Hint() string {
	switch s {
	case ShapeArraySearch:
		return "Array on first line, target on second line"
	default:
		return "Comma-separated integers"
	}
}

// Placeholder is example input for the shape.
func (s InputShape) Placeholder() string {
	switch s {
	case ShapeArraySearch:
		return "1,2,3,4,5,6,7,8,9,10\n5"
	default:
		return "5,2,8,1,9,3,7,4,6"
	}
}

// Algorithm is one selectable entry of the remote catalog (a "descriptor").
//
// Descriptors are created by the catalog at fetch time and never mutated
// afterwards. Category and Difficulty are free-form tags used only for
// presentation — the UI colours the well-known values (Sorting, Search,
// Graph / Easy, Medium, Hard) and greys out anything else.
//
// The `validate:"..."` tags are read by go-playground/validator when the
// catalog response is decoded. A descriptor without a name is treated as a
// malformed catalog.
type Algorithm struct {
	ID          int        `json:"id"                   validate:"gte=0"`
	Name        string     `json:"name"                 validate:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Difficulty  string     `json:"difficulty"`
	InputShape  InputShape `json:"inputShape,omitempty"`
}

// Shape returns the descriptor's input shape, defaulting to ShapeArray.
func (a Algorithm) Shape() InputShape {
	if a.InputShape == "" {
		return ShapeArray
	}
	return a.InputShape
}

// BinarySearchID is the execution service's reserved Binary Search id.
const BinarySearchID = 3

// LegacyShapes is the id → shape table for execution services that predate
// the inputShape tag.
func LegacyShapes() map[int]InputShape {
	return map[int]InputShape{BinarySearchID: ShapeArraySearch}
}

// Resolved returns a copy of a with InputShape filled in: an explicit tag
// wins, then the legacy table, then ShapeArray.
func (a Algorithm) Resolved(legacy map[int]InputShape) Algorithm {
	if a.InputShape != "" {
		return a
	}
	if shape, ok := legacy[a.ID]; ok {
		a.InputShape = shape
	} else {
		a.InputShape = ShapeArray
	}
	return a
}
