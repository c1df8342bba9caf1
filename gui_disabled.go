//go:build !gui

package main

import (
	"github.com/ZaviQ7/ambient-sound-generator/mixer"
	"github.com/ZaviQ7/ambient-sound-generator/preset"
)

func initGUI() {
	panic("ambient: built without GUI support (rebuild with -tags gui)")
}

// Never reached: guiMode stays false without the gui tag.
func runGUI(*mixer.Mixer, *preset.Store) {}
