package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/ZaviQ7/ambient-sound-generator/audio"
	"github.com/ZaviQ7/ambient-sound-generator/decode"
	"github.com/ZaviQ7/ambient-sound-generator/doctor"
	"github.com/ZaviQ7/ambient-sound-generator/hotkey"
	"github.com/ZaviQ7/ambient-sound-generator/log"
	"github.com/ZaviQ7/ambient-sound-generator/mixer"
	"github.com/ZaviQ7/ambient-sound-generator/preset"
)

var version = "dev"

var (
	sink    EventSink = nopSink{}
	guiMode bool

	engineMu sync.Mutex
	audioCtx audio.Context
	playback audio.PlaybackDevice

	shutdownOnce sync.Once
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		engineMu.Lock()
		if playback != nil {
			playback.Stop()
			playback.Close()
		}
		if audioCtx != nil {
			audioCtx.Close()
		}
		engineMu.Unlock()
		log.SessionEnd()
		log.Close()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(0)
	})
}

func run() {
	soundsFlag := flag.String("sounds", "sounds", "Directory containing the ambient sound files")
	presetsFlag := flag.String("presets", "presets.json", "Path to the preset file")
	deviceFlag := flag.String("device", "", "Use named output device")
	setupFlag := flag.Bool("setup", false, "Select output device (otherwise uses system default)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	applyFlag := flag.String("apply", "", "Apply named preset on startup")
	masterFlag := flag.Float64("master", 1.0, "Initial master volume (0..1)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	// -gui is dispatched in main() before run(); declared here so Parse accepts it
	flag.Bool("gui", false, "Run with Fyne GUI (requires a build with -tags gui)")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("ambient %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(*soundsFlag, *presetsFlag))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	// Load the slot clips
	reg := decode.Default()
	mix := mixer.New()
	loaded := 0
	for _, def := range mixer.DefaultSlots {
		path := filepath.Join(*soundsFlag, def.File)
		clip, err := reg.Load(path, mixer.SampleRate, mixer.Channels)
		if err != nil {
			log.Warnf("slot %q: %v", def.Name, err)
			fmt.Fprintf(os.Stderr, "Warning: %q unavailable: %v\n", def.Name, err)
			mix.AddSlot(def.Name, def.File, nil)
			continue
		}
		mix.AddSlot(def.Name, def.File, clip)
		loaded++
	}
	if loaded == 0 {
		log.Error("no sound files found")
		fmt.Fprintf(os.Stderr, "Error: no playable sound files in %s\n", *soundsFlag)
		os.Exit(1)
	}
	mix.SetMaster(*masterFlag)

	// Preset store
	store := preset.NewStore(*presetsFlag)
	if err := store.Load(); err != nil {
		log.Warnf("preset load: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: could not read presets: %v\n", err)
	}
	if err := store.Watch(func() {
		log.PresetReloaded(store.Len())
		sink.PresetsChanged(store.Names())
	}); err != nil {
		log.Warnf("preset watch: %v", err)
	}

	if *applyFlag != "" {
		if p, ok := store.Get(*applyFlag); ok {
			mix.Apply(p.Settings)
			log.PresetApplied(p.Name)
		} else {
			log.Warnf("startup preset %q not found", *applyFlag)
			fmt.Fprintf(os.Stderr, "Warning: preset %q not found\n", *applyFlag)
		}
	}

	// Audio engine
	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	engineMu.Lock()
	audioCtx = ctx
	engineMu.Unlock()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			log.Warnf("device not found: %s", *deviceFlag)
			fmt.Fprintf(os.Stderr, "Warning: device %q not found, using default\n", *deviceFlag)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
			fmt.Fprintln(os.Stderr, "Falling back to default device")
			selectedDevice = nil
		}
	}

	playbackConfig := audio.PlaybackConfig{
		SampleRate: mixer.SampleRate,
		Channels:   mixer.Channels,
	}
	pb, err := ctx.NewPlayback(selectedDevice, playbackConfig, mix.Render)
	if err != nil {
		log.Errorf("playback device init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing playback device: %v\n", err)
		os.Exit(1)
	}
	if err := pb.Start(); err != nil {
		log.Errorf("playback start error: %v", err)
		fmt.Fprintf(os.Stderr, "Error starting playback: %v\n", err)
		os.Exit(1)
	}
	engineMu.Lock()
	playback = pb
	engineMu.Unlock()

	log.SessionStart(pb.DeviceName(), loaded)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		gracefulShutdown()
	}()

	// Global mute hotkey: Ctrl+Shift+M
	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Warnf("hotkey register error: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: global mute hotkey unavailable: %v\n", err)
	} else {
		go func() {
			defer hk.Unregister()
			for range hk.Keydown() {
				muted := mix.ToggleMuted()
				log.Info(fmt.Sprintf("hotkey_mute: %t", muted))
				sink.MuteChanged(muted)
			}
		}()
	}

	if guiMode {
		runGUI(mix, store)
		gracefulShutdown()
		return
	}

	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(mix, store)
		tuiMu.Unlock()
		sink = tuiSink{}

		if _, err := tuiProgram.Run(); err != nil {
			log.Errorf("TUI error: %v", err)
			os.Exit(1)
		}
		gracefulShutdown()
		return
	}

	// Headless: play until signalled
	select {}
}
