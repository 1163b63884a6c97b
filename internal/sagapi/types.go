package sagapi

import (
	"strings"
	"time"
)

// Corner identifies one of the four suspension positions.
type Corner string

const (
	CornerFL Corner = "fl"
	CornerFR Corner = "fr"
	CornerRL Corner = "rl"
	CornerRR Corner = "rr"
)

// Corners lists the meaningful corners in display order.
var Corners = []Corner{CornerFL, CornerFR, CornerRL, CornerRR}

// ParseCorner normalizes a user-supplied corner id.
func ParseCorner(value string) (Corner, bool) {
	c := Corner(strings.ToLower(strings.TrimSpace(value)))
	return c, c.Valid()
}

// Valid reports whether c is one of fl, fr, rl, rr.
func (c Corner) Valid() bool {
	switch c {
	case CornerFL, CornerFR, CornerRL, CornerRR:
		return true
	}
	return false
}

// Group returns the unit-preference group governing the corner. Front corners
// share "front"; rear corners are their own group.
func (c Corner) Group() string {
	if c == CornerFL || c == CornerFR {
		return GroupFront
	}
	return string(c)
}

// Label returns the upper-case short label ("FL").
func (c Corner) Label() string {
	return strings.ToUpper(string(c))
}

// Unit-preference groups.
const (
	GroupFront = "front"
	GroupRL    = "rl"
	GroupRR    = "rr"
)

// Groups lists unit-preference groups in display order.
var Groups = []string{GroupFront, GroupRL, GroupRR}

// Default units applied when the configuration leaves a group unset.
const (
	DefaultPreloadUnit = "mm"
	DefaultDampingUnit = "clicks"
)

// Unit choices offered by the settings screens. The backend stores any
// string, so these are suggestions rather than a closed set.
var (
	PreloadUnits = []string{"mm", "turns"}
	DampingUnits = []string{"clicks", "turns"}
)

// Field names one of the four spring setting values.
type Field string

const (
	FieldPreload  Field = "preload"
	FieldCompFast Field = "comp_fast"
	FieldCompSlow Field = "comp_slow"
	FieldRebound  Field = "rebound"
)

// Fields lists spring fields in display order.
var Fields = []Field{FieldPreload, FieldCompFast, FieldCompSlow, FieldRebound}

// ParseField normalizes a user-supplied field name.
func ParseField(value string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(value)))
	switch f {
	case FieldPreload, FieldCompFast, FieldCompSlow, FieldRebound:
		return f, true
	}
	return "", false
}

// IsDamping reports whether the field is measured in damping units.
func (f Field) IsDamping() bool {
	return f != FieldPreload
}

// SpringSetting holds the raw values for one corner. Units are resolved at
// render time from the configuration.
type SpringSetting struct {
	Preload  float64 `json:"preload"`
	CompFast float64 `json:"comp_fast"`
	CompSlow float64 `json:"comp_slow"`
	Rebound  float64 `json:"rebound"`
}

// Value returns the value of field f.
func (s SpringSetting) Value(f Field) float64 {
	switch f {
	case FieldPreload:
		return s.Preload
	case FieldCompFast:
		return s.CompFast
	case FieldCompSlow:
		return s.CompSlow
	case FieldRebound:
		return s.Rebound
	}
	return 0
}

// Set returns a copy of s with field f replaced.
func (s SpringSetting) Set(f Field, v float64) SpringSetting {
	switch f {
	case FieldPreload:
		s.Preload = v
	case FieldCompFast:
		s.CompFast = v
	case FieldCompSlow:
		s.CompSlow = v
	case FieldRebound:
		s.Rebound = v
	}
	return s
}

// Springs maps corners to their settings.
type Springs map[Corner]SpringSetting

// Clone returns an independent copy.
func (s Springs) Clone() Springs {
	if s == nil {
		return nil
	}
	dup := make(Springs, len(s))
	for k, v := range s {
		dup[k] = v
	}
	return dup
}

// EventData is the recorded payload of an event.
type EventData struct {
	Springs Springs `json:"springs,omitempty"`
	Notes   string  `json:"notes,omitempty"`
	Type    string  `json:"type,omitempty"`
	TS      int64   `json:"ts,omitempty"`
}

// EventTypeResetSag marks an event recorded by the reset SAG action.
const EventTypeResetSag = "reset_sag"

// Event is a recorded snapshot of spring settings.
type Event struct {
	TS       int64     `json:"ts"`
	Data     EventData `json:"data"`
	Comments []Comment `json:"comments,omitempty"`
}

// Time returns the event timestamp in local time.
func (e Event) Time() time.Time {
	return time.Unix(e.TS, 0)
}

// IsResetSag reports whether the event was recorded by a sag reset.
func (e Event) IsResetSag() bool {
	return e.Data.Type == EventTypeResetSag
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	e.Data.Springs = e.Data.Springs.Clone()
	if e.Comments != nil {
		comments := make([]Comment, len(e.Comments))
		copy(comments, e.Comments)
		e.Comments = comments
	}
	return e
}

// Comment is an append-only note attached to an event.
type Comment struct {
	TS   int64  `json:"ts"`
	Text string `json:"text"`
}

// Time returns the comment timestamp in local time.
func (c Comment) Time() time.Time {
	return time.Unix(c.TS, 0)
}

// UnitPref holds the unit preferences of one group.
type UnitPref struct {
	PreloadUnit string `json:"preload_unit,omitempty"`
	DampingUnit string `json:"damping_unit,omitempty"`
}

// Position places a marker on the vehicle diagram as CSS-style percentages.
type Position struct {
	Left string `json:"left"`
	Top  string `json:"top"`
}

// Snapshot is the persisted initial settings used before any event exists.
type Snapshot struct {
	Springs Springs `json:"springs,omitempty"`
	Notes   string  `json:"notes,omitempty"`
}

// Configuration mirrors the /api/config payload. Nil fields are unset.
type Configuration struct {
	Front   *UnitPref           `json:"front,omitempty"`
	RL      *UnitPref           `json:"rl,omitempty"`
	RR      *UnitPref           `json:"rr,omitempty"`
	Markers map[Corner]Position `json:"markers,omitempty"`
	Initial *Snapshot           `json:"initial,omitempty"`
}

// Group returns the unit preferences of group, or nil when unset.
func (c Configuration) Group(group string) *UnitPref {
	switch group {
	case GroupFront:
		return c.Front
	case GroupRL:
		return c.RL
	case GroupRR:
		return c.RR
	}
	return nil
}

// SetGroup returns a copy of c with the preferences of group replaced.
func (c Configuration) SetGroup(group string, pref UnitPref) Configuration {
	p := pref
	switch group {
	case GroupFront:
		c.Front = &p
	case GroupRL:
		c.RL = &p
	case GroupRR:
		c.RR = &p
	}
	return c
}

// PreloadUnit resolves the preload unit for a corner.
func (c Configuration) PreloadUnit(corner Corner) string {
	if g := c.Group(corner.Group()); g != nil && g.PreloadUnit != "" {
		return g.PreloadUnit
	}
	return DefaultPreloadUnit
}

// DampingUnit resolves the damping unit for a corner.
func (c Configuration) DampingUnit(corner Corner) string {
	if g := c.Group(corner.Group()); g != nil && g.DampingUnit != "" {
		return g.DampingUnit
	}
	return DefaultDampingUnit
}

// UnitFor resolves the unit of field f at corner.
func (c Configuration) UnitFor(corner Corner, f Field) string {
	if f.IsDamping() {
		return c.DampingUnit(corner)
	}
	return c.PreloadUnit(corner)
}

// Clone returns a deep copy of the configuration.
func (c Configuration) Clone() Configuration {
	out := Configuration{}
	if c.Front != nil {
		v := *c.Front
		out.Front = &v
	}
	if c.RL != nil {
		v := *c.RL
		out.RL = &v
	}
	if c.RR != nil {
		v := *c.RR
		out.RR = &v
	}
	if c.Markers != nil {
		out.Markers = make(map[Corner]Position, len(c.Markers))
		for k, v := range c.Markers {
			out.Markers[k] = v
		}
	}
	if c.Initial != nil {
		snap := Snapshot{Springs: c.Initial.Springs.Clone(), Notes: c.Initial.Notes}
		out.Initial = &snap
	}
	return out
}

// DefaultUnits returns the factory unit preferences for every group.
func DefaultUnits() Configuration {
	def := UnitPref{PreloadUnit: DefaultPreloadUnit, DampingUnit: DefaultDampingUnit}
	var c Configuration
	for _, g := range Groups {
		c = c.SetGroup(g, def)
	}
	return c
}

// LiveSample is one live sensor reading. Corner values are sag percentages.
type LiveSample struct {
	T  float64  `json:"t"`
	FL *float64 `json:"fl,omitempty"`
	FR *float64 `json:"fr,omitempty"`
	RL *float64 `json:"rl,omitempty"`
	RR *float64 `json:"rr,omitempty"`
}

// Value returns the sample value of a corner when present.
func (s LiveSample) Value(c Corner) (float64, bool) {
	var v *float64
	switch c {
	case CornerFL:
		v = s.FL
	case CornerFR:
		v = s.FR
	case CornerRL:
		v = s.RL
	case CornerRR:
		v = s.RR
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// LiveResponse mirrors /api/live.
type LiveResponse struct {
	Live []LiveSample `json:"live"`
}

// StatusResponse mirrors /api/status. Every field is optional.
type StatusResponse struct {
	Status   string `json:"status,omitempty"`
	Message  string `json:"message,omitempty"`
	Session  string `json:"session,omitempty"`
	Env      string `json:"env,omitempty"`
	Firmware string `json:"firmware,omitempty"`
}

// Headline returns the message, falling back to status and then "Idle".
func (s StatusResponse) Headline() string {
	if msg := strings.TrimSpace(s.Message); msg != "" {
		return msg
	}
	if st := strings.TrimSpace(s.Status); st != "" {
		return st
	}
	return "Idle"
}

// EventsResponse mirrors /api/events.
type EventsResponse struct {
	Events []Event `json:"events"`
}

// EventPayload is the body of POST /api/event for a settings change.
type EventPayload struct {
	Springs Springs `json:"springs"`
	Notes   string  `json:"notes"`
}

// ResetSagPayload is the body of POST /api/event for a sag reset.
type ResetSagPayload struct {
	Type string `json:"type"`
	TS   int64  `json:"ts"`
}

// CommentRequest is the body of POST /api/event/comment.
type CommentRequest struct {
	EventTS int64  `json:"event_ts"`
	Comment string `json:"comment"`
}

// EventResponse mirrors /api/event/comment and the wrapped form of /api/event.
type EventResponse struct {
	Event *Event `json:"event"`
}

// ConfigEnvelope wraps the configuration in GET and POST /api/config.
type ConfigEnvelope struct {
	Config Configuration `json:"config"`
}
