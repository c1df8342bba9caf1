//go:build gui

package gui

import (
	_ "embed"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/ZaviQ7/ambient-sound-generator/mixer"
	"github.com/ZaviQ7/ambient-sound-generator/preset"
)

//go:embed assets/tray.png
var trayIcon []byte

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	mix     *mixer.Mixer
	store   *preset.Store

	playButtons map[string]*widget.Button
	volSliders  map[string]*widget.Slider
	fxSliders   map[string]*fxRow
	masterSlide *widget.Slider
	muteCheck   *widget.Check
	presetSel   *widget.Select
	status      *widget.Label

	// Set by the caller to observe preset activity.
	OnPresetSaved   func(p preset.Preset)
	OnPresetApplied func(name string)
}

type fxRow struct {
	reverb, low, mid, high *widget.Slider
}

func NewApp(mix *mixer.Mixer, store *preset.Store) *App {
	return &App{
		mix:         mix,
		store:       store,
		playButtons: make(map[string]*widget.Button),
		volSliders:  make(map[string]*widget.Slider),
		fxSliders:   make(map[string]*fxRow),
	}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.ambient.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		icon := fyne.NewStaticResource("tray.png", trayIcon)
		menu := fyne.NewMenu("ambient",
			fyne.NewMenuItem("Pause All", func() {
				for _, st := range a.mix.Slots() {
					if st.Playing {
						a.mix.Stop(st.Name)
					}
				}
				a.refreshFromMixer()
			}),
			fyne.NewMenuItem("Quit", func() {
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(icon)
	}

	a.window = a.fyneApp.NewWindow("Ambient Sound Generator")
	a.status = widget.NewLabel("")

	tabs := container.NewAppTabs(
		container.NewTabItem("Mixer", a.buildMixerTab()),
		container.NewTabItem("Effects", a.buildEffectsTab()),
	)

	a.window.SetContent(container.NewBorder(nil, a.status, nil, nil, tabs))
	a.window.Resize(fyne.NewSize(520, 560))
	a.window.SetMaster()
	a.refreshFromMixer()

	a.window.Show()
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) buildMixerTab() fyne.CanvasObject {
	var rows []fyne.CanvasObject

	for _, st := range a.mix.Slots() {
		name := st.Name
		btn := widget.NewButton("Play", func() {
			playing, err := a.mix.Toggle(name)
			if err != nil {
				a.setStatus(err.Error())
				return
			}
			a.setPlayLabel(name, playing)
		})
		if !st.Loaded {
			btn.Disable()
		}
		vol := widget.NewSlider(0, 1)
		vol.Step = 0.01
		vol.Value = st.Volume
		vol.OnChanged = func(v float64) {
			a.mix.SetVolume(name, v)
		}
		a.playButtons[name] = btn
		a.volSliders[name] = vol

		label := widget.NewLabel(name)
		if !st.Loaded {
			label.SetText(name + " (missing)")
		}
		rows = append(rows, container.NewBorder(nil, nil, label, btn, vol))
	}

	a.masterSlide = widget.NewSlider(0, 1)
	a.masterSlide.Step = 0.01
	a.masterSlide.Value = a.mix.Master()
	a.masterSlide.OnChanged = func(v float64) {
		a.mix.SetMaster(v)
	}
	a.muteCheck = widget.NewCheck("Mute", func(on bool) {
		a.mix.SetMuted(on)
	})
	rows = append(rows,
		widget.NewSeparator(),
		container.NewBorder(nil, nil, widget.NewLabel("Master"), a.muteCheck, a.masterSlide),
		widget.NewSeparator(),
		a.buildPresetPane(),
	)

	return container.NewVBox(rows...)
}

func (a *App) buildEffectsTab() fyne.CanvasObject {
	var rows []fyne.CanvasObject

	for _, st := range a.mix.Slots() {
		name := st.Name
		row := &fxRow{
			reverb: widget.NewSlider(0, 1),
			low:    widget.NewSlider(0, 2),
			mid:    widget.NewSlider(0, 2),
			high:   widget.NewSlider(0, 2),
		}
		for _, s := range []*widget.Slider{row.reverb, row.low, row.mid, row.high} {
			s.Step = 0.01
		}
		apply := func(float64) {
			a.mix.SetEffects(name, mixer.Effects{
				Reverb: row.reverb.Value,
				EQLow:  row.low.Value,
				EQMid:  row.mid.Value,
				EQHigh: row.high.Value,
			})
		}
		row.reverb.OnChanged = apply
		row.low.OnChanged = apply
		row.mid.OnChanged = apply
		row.high.OnChanged = apply
		a.fxSliders[name] = row

		grid := container.NewVBox(
			container.NewBorder(nil, nil, widget.NewLabel("Reverb"), nil, row.reverb),
			container.NewBorder(nil, nil, widget.NewLabel("Low"), nil, row.low),
			container.NewBorder(nil, nil, widget.NewLabel("Mid"), nil, row.mid),
			container.NewBorder(nil, nil, widget.NewLabel("High"), nil, row.high),
		)
		rows = append(rows, widget.NewCard(name, "", grid))
	}

	return container.NewVScroll(container.NewVBox(rows...))
}

func (a *App) buildPresetPane() fyne.CanvasObject {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Preset name")
	categoryEntry := widget.NewEntry()
	categoryEntry.SetPlaceHolder("Category")
	tagsEntry := widget.NewEntry()
	tagsEntry.SetPlaceHolder("Tags (comma separated)")

	save := widget.NewButton("Save", func() {
		p := preset.Preset{
			Name:     strings.TrimSpace(nameEntry.Text),
			Settings: a.mix.Snapshot(),
			Category: strings.TrimSpace(categoryEntry.Text),
			Tags:     preset.ParseTags(tagsEntry.Text),
		}
		if err := a.store.Save(p); err != nil {
			a.setStatus(fmt.Sprintf("save failed: %v", err))
			return
		}
		a.RefreshPresets()
		a.setStatus(fmt.Sprintf("saved %q", p.Name))
		if a.OnPresetSaved != nil {
			a.OnPresetSaved(p)
		}
	})

	a.presetSel = widget.NewSelect(a.store.Names(), nil)
	a.presetSel.PlaceHolder = "Select preset"

	load := widget.NewButton("Apply", func() {
		name := a.presetSel.Selected
		if name == "" {
			return
		}
		p, ok := a.store.Get(name)
		if !ok {
			a.setStatus(fmt.Sprintf("preset %q no longer exists", name))
			return
		}
		a.mix.Apply(p.Settings)
		a.refreshFromMixer()
		a.setStatus(fmt.Sprintf("applied %q", name))
		if a.OnPresetApplied != nil {
			a.OnPresetApplied(name)
		}
	})

	del := widget.NewButton("Delete", func() {
		name := a.presetSel.Selected
		if name == "" {
			return
		}
		if _, err := a.store.Delete(name); err != nil {
			a.setStatus(fmt.Sprintf("delete failed: %v", err))
			return
		}
		a.presetSel.ClearSelected()
		a.RefreshPresets()
		a.setStatus(fmt.Sprintf("deleted %q", name))
	})

	return container.NewVBox(
		nameEntry,
		container.NewGridWithColumns(2, categoryEntry, tagsEntry),
		container.NewGridWithColumns(3, save, load, del),
		a.presetSel,
	)
}

// RefreshPresets reloads the dropdown options. Safe to call from any
// goroutine, including the store's watch callback.
func (a *App) RefreshPresets() {
	if a.fyneApp == nil {
		return
	}
	fyne.Do(func() {
		if a.presetSel != nil {
			a.presetSel.Options = a.store.Names()
			a.presetSel.Refresh()
		}
	})
}

func (a *App) refreshFromMixer() {
	for _, st := range a.mix.Slots() {
		a.setPlayLabel(st.Name, st.Playing)
		if s, ok := a.volSliders[st.Name]; ok {
			s.Value = st.Volume
			s.Refresh()
		}
		if row, ok := a.fxSliders[st.Name]; ok {
			row.reverb.Value = st.Effects.Reverb
			row.low.Value = st.Effects.EQLow
			row.mid.Value = st.Effects.EQMid
			row.high.Value = st.Effects.EQHigh
			for _, s := range []*widget.Slider{row.reverb, row.low, row.mid, row.high} {
				s.Refresh()
			}
		}
	}
	if a.masterSlide != nil {
		a.masterSlide.Value = a.mix.Master()
		a.masterSlide.Refresh()
	}
	if a.muteCheck != nil {
		a.muteCheck.SetChecked(a.mix.Muted())
	}
}

func (a *App) setPlayLabel(name string, playing bool) {
	btn, ok := a.playButtons[name]
	if !ok {
		return
	}
	if playing {
		btn.SetText("Stop")
	} else {
		btn.SetText("Play")
	}
}

func (a *App) setStatus(msg string) {
	if a.fyneApp == nil {
		return
	}
	fyne.Do(func() {
		if a.status != nil {
			a.status.SetText(msg)
		}
	})
}

// EventSink implementation, called from core goroutines.

func (a *App) SlotsChanged([]mixer.SlotState) {
	if a.fyneApp == nil {
		return
	}
	fyne.Do(a.refreshFromMixer)
}

func (a *App) MuteChanged(muted bool) {
	if a.fyneApp == nil {
		return
	}
	fyne.Do(func() {
		if a.muteCheck != nil {
			a.muteCheck.SetChecked(muted)
		}
	})
}

func (a *App) PresetsChanged([]string) {
	a.RefreshPresets()
}

func (a *App) Status(text string) {
	a.setStatus(text)
}
