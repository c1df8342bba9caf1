//go:build gui

package main

import (
	"runtime"

	"github.com/ZaviQ7/ambient-sound-generator/gui"
	"github.com/ZaviQ7/ambient-sound-generator/log"
	"github.com/ZaviQ7/ambient-sound-generator/mixer"
	"github.com/ZaviQ7/ambient-sound-generator/preset"
)

var guiApp *gui.App

func initGUI() {
	guiMode = true

	// Fyne/GLFW requires the main thread
	runtime.LockOSThread()
	run()
}

// runGUI blocks in the Fyne event loop until the window closes.
func runGUI(mix *mixer.Mixer, store *preset.Store) {
	guiApp = gui.NewApp(mix, store)
	guiApp.OnPresetSaved = func(p preset.Preset) {
		log.PresetSaved(p.Name, p.Category, len(p.Tags), len(p.Settings))
	}
	guiApp.OnPresetApplied = log.PresetApplied
	sink = guiApp
	if err := gui.Run(guiApp); err != nil {
		log.Errorf("GUI error: %v", err)
	}
}
