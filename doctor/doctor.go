// Package doctor runs non-interactive system diagnostics for the -doctor flag.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaviQ7/ambient-sound-generator/audio"
	"github.com/ZaviQ7/ambient-sound-generator/decode"
	"github.com/ZaviQ7/ambient-sound-generator/hotkey"
	"github.com/ZaviQ7/ambient-sound-generator/mixer"
	"github.com/ZaviQ7/ambient-sound-generator/preset"
)

// Run executes diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(soundsDir, presetsPath string) int {
	fmt.Println("ambient doctor - system diagnostics")
	fmt.Println("===================================")

	allPass := true

	if !checkAudio() {
		allPass = false
	}
	if !checkSounds(soundsDir) {
		allPass = false
	}
	if !checkPresets(presetsPath) {
		allPass = false
	}
	if !checkHotkey() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkAudio() bool {
	fmt.Println()
	fmt.Println("[1/4] Audio output")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: audio context init: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: device enumeration: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: audio context up, %d output device(s)\n", len(devices))
	for _, d := range devices {
		fmt.Printf("        - %s\n", d.Name)
	}
	return true
}

func checkSounds(dir string) bool {
	fmt.Println()
	fmt.Printf("[2/4] Sound files in %s\n", dir)

	if _, err := os.Stat(dir); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	reg := decode.Default()
	pass := true
	for _, def := range mixer.DefaultSlots {
		path := filepath.Join(dir, def.File)
		clip, err := reg.Load(path, mixer.SampleRate, mixer.Channels)
		if err != nil {
			fmt.Printf("  FAIL: %s (%s): %v\n", def.Name, def.File, err)
			pass = false
			continue
		}
		secs := float64(clip.Frames()) / float64(mixer.SampleRate)
		fmt.Printf("  PASS: %s (%s): %.1fs\n", def.Name, def.File, secs)
	}
	return pass
}

func checkPresets(path string) bool {
	fmt.Println()
	fmt.Printf("[3/4] Preset file %s\n", path)

	store := preset.NewStore(path)
	if err := store.Load(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("  PASS: no preset file yet (will be created on first save)")
		return true
	}
	fmt.Printf("  PASS: %d preset(s)\n", store.Len())
	return true
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[4/4] Global mute hotkey")

	msg, err := hotkey.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}
