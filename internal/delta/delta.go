package delta

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/five82/sagtrack/internal/sagapi"
)

// Abbreviations used in change lines.
var abbr = map[sagapi.Field]string{
	sagapi.FieldPreload:  "PRE",
	sagapi.FieldCompFast: "HSC",
	sagapi.FieldCompSlow: "LSC",
	sagapi.FieldRebound:  "Rebound",
}

// Abbr returns the short label of a field.
func Abbr(f sagapi.Field) string {
	if a, ok := abbr[f]; ok {
		return a
	}
	return string(f)
}

// FieldChange is one emitted value inside a corner line.
type FieldChange struct {
	Field sagapi.Field
	// Text is the formatted value: signed for deltas, unsigned for baselines.
	Text string
	// Baseline is true when there was no predecessor for the corner.
	Baseline bool
	// Sign is -1, 0 or +1. It is 0 for baselines.
	Sign int
}

func (f FieldChange) String() string {
	return Abbr(f.Field) + " " + f.Text
}

// CornerChange groups the emitted fields of one corner.
type CornerChange struct {
	Corner sagapi.Corner
	Fields []FieldChange
}

func (c CornerChange) String() string {
	parts := lo.Map(c.Fields, func(f FieldChange, _ int) string { return f.String() })
	return c.Corner.Label() + ": " + strings.Join(parts, " ")
}

// Render computes the change lines of ev against its chronological
// predecessor prev (nil for the oldest event). Corners are emitted in the
// fixed order fl, fr, rl, rr; unknown corners are ignored. Corners without a
// non-zero value are omitted.
func Render(ev sagapi.Event, prev *sagapi.Event) []CornerChange {
	var out []CornerChange
	for _, corner := range sagapi.Corners {
		cur, ok := ev.Data.Springs[corner]
		if !ok {
			continue
		}
		var before *sagapi.SpringSetting
		if prev != nil {
			if p, ok := prev.Data.Springs[corner]; ok {
				before = &p
			}
		}
		fields := lo.FilterMap(sagapi.Fields, func(f sagapi.Field, _ int) (FieldChange, bool) {
			return fieldChange(f, cur, before)
		})
		if len(fields) == 0 {
			continue
		}
		out = append(out, CornerChange{Corner: corner, Fields: fields})
	}
	return out
}

func fieldChange(f sagapi.Field, cur sagapi.SpringSetting, before *sagapi.SpringSetting) (FieldChange, bool) {
	value := decimal.NewFromFloat(cur.Value(f))
	if before == nil {
		if value.IsZero() {
			return FieldChange{}, false
		}
		return FieldChange{Field: f, Text: formatDecimal(value), Baseline: true}, true
	}
	diff := value.Sub(decimal.NewFromFloat(before.Value(f)))
	if diff.IsZero() {
		return FieldChange{}, false
	}
	sign := diff.Sign()
	text := formatDecimal(diff.Abs())
	if sign > 0 {
		text = "+" + text
	} else {
		text = "-" + text
	}
	return FieldChange{Field: f, Text: text, Sign: sign}, true
}

// Summary joins the corner lines of a render with " | ".
func Summary(changes []CornerChange) string {
	lines := lo.Map(changes, func(c CornerChange, _ int) string { return c.String() })
	return strings.Join(lines, " | ")
}

// Entry pairs an event with its rendered changes.
type Entry struct {
	Event   sagapi.Event
	Changes []CornerChange
}

// History renders a newest-first event log. The predecessor of events[i] is
// events[i+1]; the oldest event renders as a baseline.
func History(events []sagapi.Event) []Entry {
	out := make([]Entry, 0, len(events))
	for i, ev := range events {
		var prev *sagapi.Event
		if i+1 < len(events) {
			prev = &events[i+1]
		}
		out = append(out, Entry{Event: ev, Changes: Render(ev, prev)})
	}
	return out
}
