package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ZaviQ7/ambient-sound-generator/log"
	"github.com/ZaviQ7/ambient-sound-generator/mixer"
	"github.com/ZaviQ7/ambient-sound-generator/preset"
)

// TUI message types
type SlotsMsg struct{ Slots []mixer.SlotState }
type MuteMsg struct{ Muted bool }
type PresetListMsg struct{ Names []string }
type StatusMsg struct{ Text string }
type tickMsg time.Time

type tuiFocus int

const (
	focusVolume tuiFocus = iota
	focusEffects
)

// Save prompt stages
const (
	promptName = iota
	promptCategory
	promptTags
)

type tuiModel struct {
	mix   *mixer.Mixer
	store *preset.Store

	slots         []mixer.SlotState
	levels        []float64 // smoothed per-slot meters
	busLevel      float64
	cursor        int
	focus         tuiFocus
	fxParam       int // 0=reverb 1=low 2=mid 3=high
	presets       []string
	presetIdx     int
	status        string
	width, height int

	prompting   bool
	promptStage int
	pendingName string
	promptCat   string
	promptBuf   string
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("43")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("43"))
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	barFillStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))
	barRestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	meterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	fxStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fxSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("43")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var fxParamNames = [4]string{"reverb", "low", "mid", "high"}

func NewTUIProgram(mix *mixer.Mixer, store *preset.Store) *tea.Program {
	m := tuiModel{
		mix:     mix,
		store:   store,
		slots:   mix.Slots(),
		presets: store.Names(),
	}
	m.levels = make([]float64, len(m.slots))
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)

	case tickMsg:
		m.slots = m.mix.Slots()
		if len(m.levels) != len(m.slots) {
			m.levels = make([]float64, len(m.slots))
		}
		for i, st := range m.slots {
			m.levels[i] = m.levels[i]*0.6 + st.Level*0.4
		}
		m.busLevel = m.busLevel*0.6 + m.mix.Level()*0.4
		return m, tuiTick()

	case SlotsMsg:
		m.slots = msg.Slots

	case MuteMsg:
		// state is re-read each tick; message only forces a redraw

	case PresetListMsg:
		m.presets = msg.Names
		if m.presetIdx >= len(m.presets) {
			m.presetIdx = 0
		}

	case StatusMsg:
		m.status = msg.Text
	}
	return m, nil
}

func (m tuiModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.slots)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "h", "left":
		m.adjust(-0.05)

	case "l", "right":
		m.adjust(0.05)

	case " ":
		if m.cursor < len(m.slots) {
			name := m.slots[m.cursor].Name
			playing, err := m.mix.Toggle(name)
			if err != nil {
				m.status = err.Error()
				break
			}
			if playing {
				log.SlotPlay(name)
			} else {
				log.SlotStop(name)
			}
			m.slots = m.mix.Slots()
		}

	case "m":
		m.mix.ToggleMuted()

	case "tab":
		if m.focus == focusVolume {
			m.focus = focusEffects
		} else {
			m.focus = focusVolume
		}

	case "1", "2", "3", "4":
		m.focus = focusEffects
		m.fxParam = int(msg.String()[0] - '1')

	case "s":
		m.prompting = true
		m.promptStage = promptName
		m.promptBuf = ""
		m.pendingName = ""
		m.promptCat = ""

	case "p":
		if len(m.presets) > 0 {
			m.presetIdx = (m.presetIdx - 1 + len(m.presets)) % len(m.presets)
		}

	case "n":
		if len(m.presets) > 0 {
			m.presetIdx = (m.presetIdx + 1) % len(m.presets)
		}

	case "enter":
		m.applySelected()

	case "d":
		m.deleteSelected()

	case "y":
		m.copySnapshot()
	}
	return m, nil
}

func (m *tuiModel) adjust(delta float64) {
	if m.cursor >= len(m.slots) {
		return
	}
	st := m.slots[m.cursor]
	if m.focus == focusVolume {
		m.mix.SetVolume(st.Name, st.Volume+delta)
	} else {
		fx := st.Effects
		switch m.fxParam {
		case 0:
			fx.Reverb += delta
		case 1:
			fx.EQLow += delta
		case 2:
			fx.EQMid += delta
		case 3:
			fx.EQHigh += delta
		}
		m.mix.SetEffects(st.Name, fx)
	}
	m.slots = m.mix.Slots()
}

func (m *tuiModel) applySelected() {
	if m.presetIdx >= len(m.presets) {
		return
	}
	name := m.presets[m.presetIdx]
	p, ok := m.store.Get(name)
	if !ok {
		m.status = fmt.Sprintf("preset %q no longer exists", name)
		return
	}
	m.mix.Apply(p.Settings)
	m.slots = m.mix.Slots()
	log.PresetApplied(name)
	m.status = fmt.Sprintf("applied %q", name)
}

func (m *tuiModel) deleteSelected() {
	if m.presetIdx >= len(m.presets) {
		return
	}
	name := m.presets[m.presetIdx]
	if _, err := m.store.Delete(name); err != nil {
		m.status = fmt.Sprintf("delete failed: %v", err)
		return
	}
	m.presets = m.store.Names()
	if m.presetIdx >= len(m.presets) {
		m.presetIdx = 0
	}
	m.status = fmt.Sprintf("deleted %q", name)
}

func (m *tuiModel) copySnapshot() {
	data, err := json.MarshalIndent(m.mix.Snapshot(), "", "  ")
	if err != nil {
		m.status = fmt.Sprintf("snapshot failed: %v", err)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.status = fmt.Sprintf("clipboard failed: %v", err)
		return
	}
	m.status = "mix snapshot copied to clipboard"
}

func (m tuiModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.prompting = false
		m.status = "save cancelled"

	case "enter":
		switch m.promptStage {
		case promptName:
			if strings.TrimSpace(m.promptBuf) == "" {
				m.status = "preset name must not be empty"
				return m, nil
			}
			m.pendingName = strings.TrimSpace(m.promptBuf)
			m.promptBuf = ""
			m.promptStage = promptCategory
		case promptCategory:
			m.promptCat = strings.TrimSpace(m.promptBuf)
			m.promptBuf = ""
			m.promptStage = promptTags
		case promptTags:
			p := preset.Preset{
				Name:     m.pendingName,
				Settings: m.mix.Snapshot(),
				Category: m.promptCat,
				Tags:     preset.ParseTags(m.promptBuf),
			}
			m.prompting = false
			if err := m.store.Save(p); err != nil {
				m.status = fmt.Sprintf("save failed: %v", err)
				return m, nil
			}
			log.PresetSaved(p.Name, p.Category, len(p.Tags), len(p.Settings))
			m.presets = m.store.Names()
			m.status = fmt.Sprintf("saved %q", p.Name)
		}

	case "backspace":
		if len(m.promptBuf) > 0 {
			m.promptBuf = m.promptBuf[:len(m.promptBuf)-1]
		}

	default:
		if msg.Type == tea.KeyRunes {
			m.promptBuf += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.promptBuf += " "
		}
	}
	return m, nil
}

const volBarWidth = 20
const meterWidth = 8

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	title := "AMBIENT SOUND GENERATOR"
	if m.mix.Muted() {
		title += "  " + mutedStyle.Render("[MUTED]")
	} else {
		title = titleStyle.Render(title)
	}
	b.WriteString(title + "\n\n")

	for i, st := range m.slots {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}

		var state string
		switch {
		case !st.Loaded:
			state = missingStyle.Render("✗")
		case st.Playing:
			state = playingStyle.Render("●")
		default:
			state = stoppedStyle.Render("○")
		}

		level := 0.0
		if i < len(m.levels) {
			level = m.levels[i]
		}
		line := fmt.Sprintf("%s%s %-12s %s %3.0f%% %s",
			marker, state, st.Name,
			renderBar(st.Volume, 1.0, volBarWidth),
			st.Volume*100,
			renderMeter(level))
		b.WriteString(line + "\n")

		if i == m.cursor && m.focus == focusEffects {
			b.WriteString("     " + m.renderFxLine(st.Effects) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  master %s %3.0f%%  bus %s\n",
		renderBar(m.mix.Master(), 1.0, volBarWidth),
		m.mix.Master()*100,
		renderMeter(m.busLevel)))

	b.WriteString("\n" + m.renderPresetLine() + "\n")

	if m.prompting {
		b.WriteString("\n" + m.renderPrompt() + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	focusName := "volume"
	if m.focus == focusEffects {
		focusName = "effects/" + fxParamNames[m.fxParam]
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"j/k select  h/l adjust (%s)  space play/stop  tab focus  1-4 effect", focusName)) + "\n")
	b.WriteString(helpStyle.Render(
		"s save  p/n preset  enter apply  d delete  y copy mix  m mute  q quit") + "\n")
	b.WriteString(helpStyle.Render("ambient "+version) + "\n")

	return b.String()
}

func (m tuiModel) renderFxLine(fx mixer.Effects) string {
	vals := [4]float64{fx.Reverb, fx.EQLow, fx.EQMid, fx.EQHigh}
	parts := make([]string, 4)
	for i := range vals {
		s := fmt.Sprintf("%s %.2f", fxParamNames[i], vals[i])
		if i == m.fxParam {
			parts[i] = fxSelStyle.Render(s)
		} else {
			parts[i] = fxStyle.Render(s)
		}
	}
	return strings.Join(parts, "  ")
}

func (m tuiModel) renderPresetLine() string {
	if len(m.presets) == 0 {
		return dimStyle.Render("  no presets saved")
	}
	name := m.presets[m.presetIdx]
	extra := ""
	if p, ok := m.store.Get(name); ok && p.Category != "" {
		extra = " (" + p.Category + ")"
	}
	return fmt.Sprintf("  preset %s%s %s",
		cursorStyle.Render(name),
		dimStyle.Render(extra),
		dimStyle.Render(fmt.Sprintf("[%d/%d]", m.presetIdx+1, len(m.presets))))
}

func (m tuiModel) renderPrompt() string {
	label := ""
	switch m.promptStage {
	case promptName:
		label = "preset name"
	case promptCategory:
		label = "category (optional)"
	case promptTags:
		label = "tags, comma separated (optional)"
	}
	return statusStyle.Render(fmt.Sprintf("  %s: %s_", label, m.promptBuf))
}

func renderBar(v, max float64, width int) string {
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	filled := int(v / max * float64(width))
	return barFillStyle.Render(strings.Repeat("█", filled)) +
		barRestStyle.Render(strings.Repeat("░", width-filled))
}

func renderMeter(level float64) string {
	scaled := level * 8
	if scaled > 1 {
		scaled = 1
	}
	filled := int(scaled * float64(meterWidth))
	return meterStyle.Render(strings.Repeat("▮", filled)) +
		barRestStyle.Render(strings.Repeat("▯", meterWidth-filled))
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// tuiSink forwards core events into the Bubble Tea program.
type tuiSink struct{}

func (tuiSink) SlotsChanged(slots []mixer.SlotState) { tuiSend(SlotsMsg{Slots: slots}) }
func (tuiSink) MuteChanged(muted bool)               { tuiSend(MuteMsg{Muted: muted}) }
func (tuiSink) PresetsChanged(names []string)        { tuiSend(PresetListMsg{Names: names}) }
func (tuiSink) Status(text string)                   { tuiSend(StatusMsg{Text: text}) }
