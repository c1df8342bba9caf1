package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	historyFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: AMBIENT_LOG_PATH environment variable
	envPath := os.Getenv("AMBIENT_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	historyPath := filepath.Join(dir, "preset_history.txt")
	historyFile, err = os.OpenFile(historyPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if historyFile != nil {
		historyFile.Close()
		historyFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SlotPlay(name string) {
	if logReady {
		diagLog.Info().Str("slot", name).Msg("slot_play")
	}
}

func SlotStop(name string) {
	if logReady {
		diagLog.Info().Str("slot", name).Msg("slot_stop")
	}
}

// PresetSaved records a preset save in both the diagnostics log and the
// plain-text history file.
func PresetSaved(name, category string, tagCount, slotCount int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("preset", name).
		Str("category", category).
		Int("tags", tagCount).
		Int("slots", slotCount).
		Msg("preset_saved")
	historyLine("saved", name)
}

func PresetApplied(name string) {
	if !logReady {
		return
	}
	diagLog.Info().Str("preset", name).Msg("preset_applied")
	historyLine("applied", name)
}

func PresetReloaded(count int) {
	if logReady {
		diagLog.Info().Int("count", count).Msg("preset_reloaded")
	}
}

func historyLine(verb, name string) {
	logMu.Lock()
	defer logMu.Unlock()
	if historyFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%s %s\n", time.Now().Format("2006-01-02 15:04:05"), pid, verb, name)
	historyFile.WriteString(line)
}

func SessionStart(device string, slots int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("device", device).
		Int("slots", slots).
		Msg("session_start")
}

func SessionEnd() {
	if logReady {
		diagLog.Info().Msg("session_end")
	}
}
