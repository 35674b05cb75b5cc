// Package presenter turns an ExecutionResult into display text.
//
// Present never fails and never panics: whatever the execution service sent,
// the operator gets something readable. Anything we cannot interpret is shown
// as received.
package presenter

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sakif/algotest/internal/model"
)

// TimestampLayout is how a parsed timestamp is shown.
const TimestampLayout = "Jan 2, 2006, 3:04:05 PM MST"

// View is the rendered form of one result.
type View struct {
	Input         string
	Result        string
	ExecutionTime string
	Timestamp     string
	Relative      string // "3 minutes ago"; empty when the timestamp did not parse
}

// Presenter holds the observer's location and clock.
type Presenter struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Presenter. nil arguments default to time.Local and time.Now.
func New(loc *time.Location, now func() time.Time) *Presenter {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Presenter{loc: loc, now: now}
}

// Present renders res. A nil result yields an empty View.
func (p *Presenter) Present(res *model.ExecutionResult) View {
	if res == nil {
		return View{}
	}

	v := View{
		Input:         RenderValue(res.Input),
		Result:        RenderValue(res.Result),
		ExecutionTime: string(res.ExecutionTime),
	}
	v.Timestamp, v.Relative = p.timestamp(res.Timestamp)
	return v
}

func (p *Presenter) timestamp(raw string) (shown, relative string) {
	if raw == "" {
		return "", ""
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return raw, ""
	}
	return t.In(p.loc).Format(TimestampLayout), humanize.RelTime(t, p.now(), "ago", "from now")
}

// RenderValue renders one input/result member.
//
//	sequence   → elements joined with ", "  ([1,2,3] → "1, 2, 3")
//	structured → compact JSON               ({"index":4,"found":true})
//	absent     → ""
func RenderValue(v model.Value) string {
	switch v.Kind {
	case model.ValueSequence:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = renderElement(item)
		}
		return strings.Join(parts, ", ")
	case model.ValueStructured:
		return compact(v.Raw)
	default:
		return ""
	}
}

// renderElement shows strings without quotes and null as nothing. Numbers,
// booleans and nested values keep their JSON text.
func renderElement(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return compact(trimmed)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
