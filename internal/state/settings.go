package state

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/five82/sagtrack/internal/delta"
	"github.com/five82/sagtrack/internal/sagapi"
)

// SettingsCell is one value of the current settings table.
type SettingsCell struct {
	Value string
	Unit  string
}

// SettingsRow is one corner of the current settings table.
type SettingsRow struct {
	Corner sagapi.Corner
	Cells  []SettingsCell
}

// SettingsRows lays out springs as rows fl, fr, rl, rr with columns in
// sagapi.Fields order. Missing corners show zeros. Units come from the
// corner's group.
func SettingsRows(springs sagapi.Springs, cfg sagapi.Configuration) []SettingsRow {
	return lo.Map(sagapi.Corners, func(corner sagapi.Corner, _ int) SettingsRow {
		setting := springs[corner]
		return SettingsRow{
			Corner: corner,
			Cells: lo.Map(sagapi.Fields, func(f sagapi.Field, _ int) SettingsCell {
				return SettingsCell{Value: delta.FormatNum(setting.Value(f)), Unit: cfg.UnitFor(corner, f)}
			}),
		}
	})
}

// SharedUnit returns the unit every group explicitly sets for field f, or ""
// when a group leaves it unset or the groups disagree. Column headers show a
// unit only in the shared case.
func SharedUnit(cfg sagapi.Configuration, f sagapi.Field) string {
	units := lo.Map(sagapi.Groups, func(g string, _ int) string {
		pref := cfg.Group(g)
		if pref == nil {
			return ""
		}
		if f.IsDamping() {
			return pref.DampingUnit
		}
		return pref.PreloadUnit
	})
	if units[0] == "" || len(lo.Uniq(units)) != 1 {
		return ""
	}
	return units[0]
}

// Default marker positions, as percentages of the diagram.
var defaultMarkers = map[sagapi.Corner][2]float64{
	sagapi.CornerFL: {25, 25},
	sagapi.CornerFR: {75, 25},
	sagapi.CornerRL: {25, 75},
	sagapi.CornerRR: {75, 75},
}

// MarkerPoint is a marker position in percent.
type MarkerPoint struct {
	Left float64
	Top  float64
}

// MarkerPoints resolves every corner's marker from the configuration,
// falling back to the default layout for unset or unparsable positions.
func MarkerPoints(cfg sagapi.Configuration) map[sagapi.Corner]MarkerPoint {
	out := make(map[sagapi.Corner]MarkerPoint, len(sagapi.Corners))
	for _, c := range sagapi.Corners {
		def := defaultMarkers[c]
		point := MarkerPoint{Left: def[0], Top: def[1]}
		if pos, ok := cfg.Markers[c]; ok {
			left, errL := ParsePercent(pos.Left)
			top, errT := ParsePercent(pos.Top)
			if errL == nil && errT == nil {
				point = MarkerPoint{Left: ClampPercent(left), Top: ClampPercent(top)}
			}
		}
		out[c] = point
	}
	return out
}

// Position converts the point to the stored "<n>%" form, clamped to [0,100].
func (p MarkerPoint) Position() sagapi.Position {
	return sagapi.Position{Left: FormatPercent(p.Left), Top: FormatPercent(p.Top)}
}

// ParsePercent parses "35%", "35.5 %" or "35". NaN and infinities are
// rejected.
func ParsePercent(value string) (float64, error) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("percentage %q is not a finite number", value)
	}
	return v, nil
}

// FormatPercent renders a clamped percentage such as "35%" or "12.5%".
func FormatPercent(v float64) string {
	return delta.FormatNum(ClampPercent(v)) + "%"
}

// ClampPercent limits v to [0,100].
func ClampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
