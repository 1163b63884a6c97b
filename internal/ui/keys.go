package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ToggleLang key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewHome     key.Binding
	ViewEvents   key.Binding
	ViewSettings key.Binding
	ViewLogs     key.Binding

	// Actions
	AddEvent    key.Binding
	SetInitial  key.Binding
	ResetSag    key.Binding
	Comment     key.Binding
	Markers     key.Binding
	Reload      key.Binding
	ResetUnits  key.Binding
	CycleOption key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	FastLeft     key.Binding
	FastRight    key.Binding
	FastUp       key.Binding
	FastDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Forms
	Confirm key.Binding
	Save    key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ToggleLang: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Switch language"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		ViewHome: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Home"),
		),
		ViewEvents: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Events"),
		),
		ViewSettings: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Settings"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Log"),
		),

		AddEvent: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add event"),
		),
		SetInitial: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Set initial settings"),
		),
		ResetSag: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reset SAG"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Comment"),
		),
		Markers: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Place markers"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Reload"),
		),
		ResetUnits: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reset units"),
		),
		CycleOption: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Change"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Move right"),
		),
		FastLeft: key.NewBinding(
			key.WithKeys("H", "shift+left"),
			key.WithHelp("H", "Move left 10%"),
		),
		FastRight: key.NewBinding(
			key.WithKeys("L", "shift+right"),
			key.WithHelp("L", "Move right 10%"),
		),
		FastUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "Move up 10%"),
		),
		FastDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "Move down 10%"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewHome, k.ViewEvents, k.ViewSettings, k.ViewLogs},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.HalfPageDown, k.HalfPageUp},
		{k.AddEvent, k.SetInitial, k.ResetSag, k.Comment, k.Markers},
		{k.CycleOption, k.ResetUnits, k.Reload},
		{k.CycleTheme, k.ToggleLang, k.Help, k.Quit},
	}
}
