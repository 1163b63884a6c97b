package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/five82/sagtrack/internal/mockapi"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

type testBackend struct {
	url    string
	client *sagapi.Client
}

func newTestBackend(t *testing.T) testBackend {
	t.Helper()
	srv := httptest.NewServer(mockapi.NewServer(mockapi.OpenStore("", nil), nil).Handler())
	t.Cleanup(srv.Close)
	client, err := sagapi.NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return testBackend{url: srv.URL, client: client}
}

// runCLI executes the root command against apiURL with logging disabled and
// English labels unless args pick a language. An empty apiURL leaves --api-bind unset.
func runCLI(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	home := t.TempDir()
	t.Setenv("HOME", home)

	argv := append([]string{}, args...)
	argv = append(argv, "--log-file=", "--prefs="+filepath.Join(home, "prefs.toml"))
	if !slices.ContainsFunc(args, func(a string) bool { return strings.HasPrefix(a, "--lang") }) {
		argv = append(argv, "--lang=en")
	}
	if apiURL != "" {
		argv = append(argv, "--api-bind="+apiURL)
	}

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(argv)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, apiURL string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, apiURL, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func (b testBackend) events(t *testing.T) []sagapi.Event {
	t.Helper()
	events, err := b.client.FetchEvents(context.Background())
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	return events
}

func (b testBackend) config(t *testing.T) sagapi.Configuration {
	t.Helper()
	cfg, err := b.client.FetchConfig(context.Background())
	if err != nil {
		t.Fatalf("FetchConfig: %v", err)
	}
	return cfg
}

func TestHistory_Empty(t *testing.T) {
	b := newTestBackend(t)
	out := mustRun(t, b.url, "history")
	if !strings.Contains(out, "No events yet.") {
		t.Fatalf("output = %q", out)
	}
}

func TestEventAdd_StartsFromCurrentSettings(t *testing.T) {
	b := newTestBackend(t)

	out := mustRun(t, b.url, "event", "add", "--set", "fl.preload=12", "--set", "rr.HSC=3,5", "--notes", "first")
	if !strings.Contains(out, "Event saved") {
		t.Fatalf("output = %q", out)
	}
	events := b.events(t)
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	want := sagapi.Springs{
		sagapi.CornerFL: {Preload: 12},
		sagapi.CornerFR: {},
		sagapi.CornerRL: {},
		sagapi.CornerRR: {CompFast: 3.5},
	}
	if diff := cmp.Diff(want, events[0].Data.Springs); diff != "" {
		t.Fatalf("springs mismatch (-want +got):\n%s", diff)
	}

	mustRun(t, b.url, "event", "add", "--set", "fl.rebound=4")
	events = b.events(t)
	if len(events) != 2 {
		t.Fatalf("events = %d", len(events))
	}
	got := events[0].Data.Springs[sagapi.CornerFL]
	if got.Preload != 12 || got.Rebound != 4 {
		t.Fatalf("fl = %+v, want preload kept and rebound 4", got)
	}
	if events[0].Data.Springs[sagapi.CornerRR].CompFast != 3.5 {
		t.Fatalf("rr not carried over: %+v", events[0].Data.Springs[sagapi.CornerRR])
	}

	mustRun(t, b.url, "event", "add", "--zero", "--set", "fr.LSC=1")
	events = b.events(t)
	if fl := events[0].Data.Springs[sagapi.CornerFL]; fl != (sagapi.SpringSetting{}) {
		t.Fatalf("--zero kept fl = %+v", fl)
	}
}

func TestEventAdd_History(t *testing.T) {
	b := newTestBackend(t)
	mustRun(t, b.url, "event", "add", "--set", "fl.preload=10", "--notes", "baseline")
	mustRun(t, b.url, "event", "add", "--set", "fl.preload=12")
	mustRun(t, b.url, "reset-sag")

	out := mustRun(t, b.url, "history")
	for _, want := range []string{"baseline", "Reset SAG", "FL: PRE +2"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, b.url, "history", "-n", "1")
	if strings.Contains(out, "baseline") {
		t.Errorf("limit 1 still shows the oldest event:\n%s", out)
	}
}

func TestEventAdd_InvalidSet(t *testing.T) {
	b := newTestBackend(t)
	tests := []struct {
		name string
		set  string
	}{
		{"missing value", "fl.preload"},
		{"missing field", "fl=1"},
		{"unknown corner", "xx.preload=1"},
		{"unknown field", "fl.spring=1"},
		{"not a number", "fl.preload=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, b.url, "event", "add", "--set", tt.set); err == nil {
				t.Fatalf("--set %q accepted", tt.set)
			}
		})
	}
	if n := len(b.events(t)); n != 0 {
		t.Fatalf("invalid input recorded %d events", n)
	}
}

func TestParseSets_FieldNames(t *testing.T) {
	got, err := parseSets(nil, []string{"FL.comp_slow=2", "fr.lsc=1.5", "rl.Rebound=7", "rr.hsc=0,5"})
	if err != nil {
		t.Fatalf("parseSets: %v", err)
	}
	want := sagapi.Springs{
		sagapi.CornerFL: {CompSlow: 2},
		sagapi.CornerFR: {CompSlow: 1.5},
		sagapi.CornerRL: {Rebound: 7},
		sagapi.CornerRR: {CompFast: 0.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("springs mismatch (-want +got):\n%s", diff)
	}
}

func TestEventInit(t *testing.T) {
	b := newTestBackend(t)

	out := mustRun(t, b.url, "current")
	if !strings.Contains(out, "sagtrack event init") {
		t.Fatalf("current without settings = %q", out)
	}

	out = mustRun(t, b.url, "event", "init", "--set", "rr.preload=8", "--notes", "stock")
	if !strings.Contains(out, "Initial settings saved") {
		t.Fatalf("output = %q", out)
	}
	cfg := b.config(t)
	if cfg.Initial == nil || cfg.Initial.Notes != "stock" || cfg.Initial.Springs[sagapi.CornerRR].Preload != 8 {
		t.Fatalf("initial = %+v", cfg.Initial)
	}

	out = mustRun(t, b.url, "current")
	if !strings.Contains(out, "From initial settings") {
		t.Fatalf("current = %q", out)
	}

	mustRun(t, b.url, "event", "add", "--set", "fl.preload=1")
	if _, err := runCLI(t, b.url, "event", "init"); !errors.Is(err, errInitialUnavailable) {
		t.Fatalf("init with events: err = %v", err)
	}
	out = mustRun(t, b.url, "current")
	if !strings.Contains(out, "From event") {
		t.Fatalf("current = %q", out)
	}
}

func TestResetSag(t *testing.T) {
	b := newTestBackend(t)
	out := mustRun(t, b.url, "reset-sag")
	if !strings.Contains(out, "SAG reset recorded") {
		t.Fatalf("output = %q", out)
	}
	events := b.events(t)
	if len(events) != 1 || !events[0].IsResetSag() {
		t.Fatalf("events = %+v", events)
	}
}

func TestComment(t *testing.T) {
	b := newTestBackend(t)
	mustRun(t, b.url, "event", "add", "--set", "fl.preload=10")
	ts := b.events(t)[0].TS

	out := mustRun(t, b.url, "comment", strconv.FormatInt(ts, 10), "harsh", "on", "roots")
	if !strings.Contains(out, "Comment added") {
		t.Fatalf("output = %q", out)
	}
	comments := b.events(t)[0].Comments
	if len(comments) != 1 || comments[0].Text != "harsh on roots" {
		t.Fatalf("comments = %+v", comments)
	}

	if _, err := runCLI(t, b.url, "comment", strconv.FormatInt(ts+100, 10), "lost"); !errors.Is(err, state.ErrNoEvent) {
		t.Fatalf("unknown event: err = %v", err)
	}
	if _, err := runCLI(t, b.url, "comment", "yesterday", "text"); err == nil {
		t.Fatal("non-numeric timestamp accepted")
	}
}

func TestUnits(t *testing.T) {
	b := newTestBackend(t)

	out := mustRun(t, b.url, "units", "--group", "rl", "--preload", "turns")
	if !strings.Contains(out, "Settings saved") || !strings.Contains(out, "turns") {
		t.Fatalf("output = %q", out)
	}
	if g := b.config(t).RL; g == nil || g.PreloadUnit != "turns" {
		t.Fatalf("rl = %+v", g)
	}

	if _, err := runCLI(t, b.url, "units", "--group", "middle", "--preload", "mm"); err == nil {
		t.Fatal("unknown group accepted")
	}
	if _, err := runCLI(t, b.url, "units", "--group", "rl"); err == nil {
		t.Fatal("--group without a unit accepted")
	}

	mustRun(t, b.url, "marker", "fl", "30%", "20%")
	out = mustRun(t, b.url, "units", "reset")
	if !strings.Contains(out, "Settings reset to defaults") {
		t.Fatalf("output = %q", out)
	}
	cfg := b.config(t)
	if diff := cmp.Diff(sagapi.DefaultUnits().RL, cfg.RL); diff != "" {
		t.Fatalf("rl after reset (-want +got):\n%s", diff)
	}
	if _, ok := cfg.Markers[sagapi.CornerFL]; !ok {
		t.Fatal("units reset dropped the markers")
	}
}

func TestMarker(t *testing.T) {
	b := newTestBackend(t)
	mustRun(t, b.url, "units", "--group", "front", "--damping", "turns")

	out := mustRun(t, b.url, "marker", "fr", "150%", "12.5")
	if !strings.Contains(out, "Marker saved") {
		t.Fatalf("output = %q", out)
	}
	cfg := b.config(t)
	want := sagapi.Position{Left: "100%", Top: "12.5%"}
	if diff := cmp.Diff(want, cfg.Markers[sagapi.CornerFR]); diff != "" {
		t.Fatalf("marker mismatch (-want +got):\n%s", diff)
	}
	if cfg.Front == nil || cfg.Front.DampingUnit != "turns" {
		t.Fatalf("marker save dropped units: %+v", cfg.Front)
	}

	if _, err := runCLI(t, b.url, "marker", "zz", "1", "1"); err == nil {
		t.Fatal("unknown corner accepted")
	}
	if _, err := runCLI(t, b.url, "marker", "fl", "left", "1"); err == nil {
		t.Fatal("non-numeric position accepted")
	}
	for _, bad := range []string{"NaN", "Inf%"} {
		if _, err := runCLI(t, b.url, "marker", "fl", bad, "20"); err == nil {
			t.Fatalf("marker position %q accepted", bad)
		}
	}
	if _, ok := b.config(t).Markers[sagapi.CornerFL]; ok {
		t.Fatal("rejected marker was saved")
	}
}

func TestStatus(t *testing.T) {
	b := newTestBackend(t)
	out := mustRun(t, b.url, "status")
	for _, want := range []string{"Mock server running", "Test environment", "Live t=", "Rear right"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestStatus_Offline(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	out := mustRun(t, url, "status", "--timeout=200ms")
	if !strings.Contains(out, "Offline") || !strings.Contains(out, "No live data") {
		t.Fatalf("output = %q", out)
	}
}

func TestEnvBinding(t *testing.T) {
	b := newTestBackend(t)
	mustRun(t, b.url, "event", "add", "--set", "fl.preload=10", "--notes", "from env")

	t.Setenv("SAGTRACK_API_BIND", b.url)
	out := mustRun(t, "", "history")
	if !strings.Contains(out, "from env") {
		t.Fatalf("history via SAGTRACK_API_BIND = %q", out)
	}
}

func TestInvalidFlags(t *testing.T) {
	b := newTestBackend(t)
	if _, err := runCLI(t, b.url, "history", "--lang=sv"); err == nil {
		t.Fatal("unsupported language accepted")
	}
	if _, err := runCLI(t, b.url, "history", "--timeout=-1s"); err == nil {
		t.Fatal("negative timeout accepted")
	}
}

func TestTUI_NeedsTerminal(t *testing.T) {
	orig := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdoutIsTerminal = orig })

	b := newTestBackend(t)
	if _, err := runCLI(t, b.url); !errors.Is(err, errNoTerminal) {
		t.Fatalf("root without terminal: err = %v", err)
	}
	if _, err := runCLI(t, b.url, "tui"); !errors.Is(err, errNoTerminal) {
		t.Fatalf("tui without terminal: err = %v", err)
	}
}

func TestExecute_ExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	t.Setenv("HOME", t.TempDir())
	code := Execute(context.Background(), []string{"marker", "zz", "1", "1", "--log-file=", "--lang=en"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "sagtrack: ") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
