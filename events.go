package main

import "github.com/ZaviQ7/ambient-sound-generator/mixer"

// EventSink abstracts the display layer so both the Bubble Tea TUI
// and the Fyne GUI can receive the same mix/preset events.
type EventSink interface {
	SlotsChanged(slots []mixer.SlotState)
	MuteChanged(muted bool)
	PresetsChanged(names []string)
	Status(text string)
}

type nopSink struct{}

func (nopSink) SlotsChanged([]mixer.SlotState) {}
func (nopSink) MuteChanged(bool)               {}
func (nopSink) PresetsChanged([]string)        {}
func (nopSink) Status(string)                  {}
