package state

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/five82/sagtrack/internal/sagapi"
)

// Placeholders shown when no live sample is available.
const (
	SagPlaceholder    = "--%"
	MarkerPlaceholder = "--"
)

// testEnvs are the env values reported by local mock backends.
var testEnvs = []string{"python", "mock"}

// DefaultTravelMM is the suspension travel assumed for mm conversion.
const DefaultTravelMM = 160

// LiveView is the display projection of the latest live sample.
type LiveView struct {
	// Badge is "Live t=<t>" or empty.
	Badge string
	// Sag is the rear-right sag with one decimal, or SagPlaceholder.
	Sag string
	// Markers holds "<mm>mm, <pct>%" per corner present in the sample.
	Markers map[sagapi.Corner]string
	// Percent holds the raw sag percentage per corner present in the sample.
	Percent map[sagapi.Corner]float64
}

// Marker returns the marker text of a corner or MarkerPlaceholder.
func (v LiveView) Marker(c sagapi.Corner) string {
	if text, ok := v.Markers[c]; ok {
		return text
	}
	return MarkerPlaceholder
}

// ProjectLive converts a sample into display strings. A nil sample yields
// placeholders.
func ProjectLive(sample *sagapi.LiveSample, travelMM float64) LiveView {
	view := LiveView{Sag: SagPlaceholder}
	if sample == nil {
		return view
	}
	if travelMM <= 0 {
		travelMM = DefaultTravelMM
	}
	view.Badge = "Live t=" + formatT(sample.T)
	view.Markers = make(map[sagapi.Corner]string, len(sagapi.Corners))
	view.Percent = make(map[sagapi.Corner]float64, len(sagapi.Corners))
	for _, c := range sagapi.Corners {
		pct, ok := sample.Value(c)
		if !ok {
			continue
		}
		d := decimal.NewFromFloat(pct)
		mm := d.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromFloat(travelMM))
		view.Percent[c] = pct
		view.Markers[c] = mm.StringFixed(0) + "mm, " + d.StringFixed(1) + "%"
	}
	if pct, ok := sample.Value(sagapi.CornerRR); ok {
		view.Sag = decimal.NewFromFloat(pct).StringFixed(1) + "%"
	}
	return view
}

// SessionKind classifies the session line of the status panel.
type SessionKind int

const (
	SessionNone SessionKind = iota
	SessionTestEnv
	SessionFirmware
	SessionID
)

// StatusView is the display projection of the status poll.
type StatusView struct {
	Headline string
	Session  SessionKind
	// SessionValue is the firmware string or session id, depending on Session.
	SessionValue string
	Offline      bool
}

// ProjectStatus converts the polled status into display fields. When the last
// poll failed the previous status is kept and Offline is set.
func ProjectStatus(snap Snapshot) StatusView {
	view := StatusView{Headline: "Idle", Offline: snap.IsOffline()}
	if !snap.HasStatus {
		return view
	}
	st := snap.Status
	view.Headline = st.Headline()
	switch {
	case strings.TrimSpace(st.Session) == "":
		view.Session = SessionNone
	case lo.Contains(testEnvs, st.Env):
		view.Session = SessionTestEnv
	case strings.TrimSpace(st.Firmware) != "":
		view.Session = SessionFirmware
		view.SessionValue = st.Firmware
	default:
		view.Session = SessionID
		view.SessionValue = st.Session
	}
	return view
}

func formatT(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
