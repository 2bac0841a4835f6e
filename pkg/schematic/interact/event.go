package interact

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// Kind names an input event or a view command.
type Kind string

const (
	KindPointerDown  Kind = "pointerdown"
	KindPointerMove  Kind = "pointermove"
	KindPointerUp    Kind = "pointerup"
	KindPointerLeave Kind = "pointerleave"
	KindWheel        Kind = "wheel"
	KindClick        Kind = "click"

	KindZoomIn   Kind = "zoomin"
	KindZoomOut  Kind = "zoomout"
	KindReset    Kind = "reset"
	KindFit      Kind = "fit"
	KindRelayout Kind = "relayout"
)

var kinds = map[Kind]struct{}{
	KindPointerDown: {}, KindPointerMove: {}, KindPointerUp: {}, KindPointerLeave: {},
	KindWheel: {}, KindClick: {},
	KindZoomIn: {}, KindZoomOut: {}, KindReset: {}, KindFit: {}, KindRelayout: {},
}

// IsCommand reports whether k is a view command rather than pointer input.
func (k Kind) IsCommand() bool {
	switch k {
	case KindZoomIn, KindZoomOut, KindReset, KindFit, KindRelayout:
		return true
	}
	return false
}

// Event is a single input for the canvas. X and Y are screen coordinates;
// Time defaults to the receiver's clock when zero.
type Event struct {
	Kind   Kind      `json:"type"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	DeltaY float64   `json:"deltaY,omitempty"`
	Time   time.Time `json:"time,omitzero"`
}

// Point returns the event's screen position.
func (e Event) Point() viewport.Point { return viewport.Point{X: e.X, Y: e.Y} }

// UnmarshalJSON rejects unknown kinds.
func (e *Event) UnmarshalJSON(data []byte) error {
	type raw Event
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if _, ok := kinds[r.Kind]; !ok {
		return fmt.Errorf("unknown event type %q", r.Kind)
	}
	*e = Event(r)
	return nil
}
