package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/geoffmyers/multitrack-audio-visualizer/internal/config"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/driver"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/playback"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/render"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/track"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/util"
	"github.com/geoffmyers/multitrack-audio-visualizer/internal/viz"
)

// reservedRows is the chrome around the frame pane: header, meter,
// progress, help.
const reservedRows = 4

var windowDurations = []float64{0.5, 1.0, 2.0, 5.0}

type tickMsg time.Time

// Model is the Bubbletea model for the live view: a realtime frame
// driver feeding the compositor, rendered to the terminal each tick.
type Model struct {
	store      *track.Store
	player     *playback.Player
	opts       config.Options
	presetPath string

	rt       *driver.Realtime
	surface  *render.Surface
	comp     *render.Compositor
	frames   *FrameRenderer
	frameStr string

	prog progress.Model
	vu   vuSpring

	width    int
	height   int
	saveMsg  string
	saveTime time.Time
	quitting bool
}

// New creates the live view model. presetPath enables the save-preset
// key when non-empty.
func New(store *track.Store, player *playback.Player, opts config.Options, presetPath string) Model {
	return Model{
		store:      store,
		player:     player,
		opts:       opts,
		presetPath: presetPath,
		rt:         driver.NewRealtime(player, opts.FPS),
		frames:     NewFrameRenderer(),
		prog:       progress.New(progress.WithDefaultGradient()),
		vu:         newVUSpring(opts.FPS),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), tea.SetWindowTitle("multitrack visualizer"))
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.rt.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildSurface()
		m.renderFrame(m.player.CurrentTime())
		return m, nil

	case tickMsg:
		m.rt.Step(time.Time(msg), func(currentTime float64) {
			m.renderFrame(currentTime)
		})
		m.stepMeter()
		if m.quitting {
			return m, tea.Quit
		}
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.player.Close()
		return *m, tea.Quit
	}

	switch msg.String() {
	case " ":
		m.player.TogglePause()
	case "left":
		m.player.Seek(-5 * time.Second)
	case "right":
		m.player.Seek(5 * time.Second)
	case "l":
		m.opts.Layout = nextLayout(m.opts.Layout)
	case "a":
		if m.opts.Amplitude == render.AmplitudeIndividual {
			m.opts.Amplitude = render.AmplitudeNormalized
		} else {
			m.opts.Amplitude = render.AmplitudeIndividual
		}
	case "up":
		m.opts.HeightPercent += 5
		if m.opts.HeightPercent > 100 {
			m.opts.HeightPercent = 100
		}
	case "down":
		m.opts.HeightPercent -= 5
		if m.opts.HeightPercent < 1 {
			m.opts.HeightPercent = 1
		}
	case "m":
		m.opts.Smoothing = (m.opts.Smoothing + 1) % 6
	case "w":
		m.opts.WindowDur = nextWindowDuration(m.opts.WindowDur)
	case "s":
		if m.presetPath != "" {
			if err := config.SavePreset(m.presetPath, config.PresetFrom(m.opts)); err != nil {
				m.saveMsg = fmt.Sprintf("save failed: %v", err)
			} else {
				m.saveMsg = "preset saved"
			}
			m.saveTime = time.Now()
		}
	}
	return *m, nil
}

func nextLayout(cur render.Layout) render.Layout {
	layouts := render.Layouts()
	for i, l := range layouts {
		if l == cur {
			return layouts[(i+1)%len(layouts)]
		}
	}
	return layouts[0]
}

func nextWindowDuration(cur float64) float64 {
	for i, d := range windowDurations {
		if d == cur {
			return windowDurations[(i+1)%len(windowDurations)]
		}
	}
	return windowDurations[0]
}

// rebuildSurface recreates the pixel surface to match the terminal pane:
// one pixel column per cell, two pixel rows per cell row (half-block).
func (m *Model) rebuildSurface() {
	w := m.width
	h := (m.height - reservedRows) * 2
	if w < 4 {
		w = 4
	}
	if h < 4 {
		h = 4
	}
	m.surface = render.NewSurface(render.LiveDimensions(w, h))
	m.comp = render.NewCompositor(m.surface)
}

func (m *Model) renderFrame(currentTime float64) {
	if m.surface == nil {
		return
	}
	dims := m.surface.Dims()
	m.comp.Render(m.store.Tracks(), currentTime, m.player.Duration(), m.opts.RenderSettings())
	m.frameStr = m.frames.Render(m.surface.RGB24(), dims.Width, dims.Height)
}

// stepMeter advances the spring-smoothed header level toward the current
// frame's loudest peak.
func (m *Model) stepMeter() {
	target := 0.0
	for _, tr := range m.store.Tracks() {
		buf := viz.Waveform(tr, m.player.CurrentTime(), m.opts.WindowDur, 1, 0)
		if len(buf) > 0 && buf[0] > target {
			target = buf[0]
		}
	}
	m.vu.step(target)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder

	names := make([]string, 0, m.store.Len())
	for _, tr := range m.store.Tracks() {
		names = append(names, tr.Name)
	}
	header := titleStyle.Render(fmt.Sprintf("%d tracks", len(names))) + "  " +
		trackStyle.Render(strings.Join(names, " · "))
	status := statusStyle.Render(fmt.Sprintf("%s · %s", m.opts.Layout, m.opts.Amplitude))
	if m.player.Paused() {
		status += statusStyle.Render("  [paused]")
	}
	if m.saveMsg != "" && time.Since(m.saveTime) < 3*time.Second {
		status += "  " + statusStyle.Render(m.saveMsg)
	}
	b.WriteString(truncate(header+"  "+status, m.width))
	b.WriteByte('\n')

	meterWidth := m.width - 20
	if meterWidth < 8 {
		meterWidth = 8
	}
	elapsed := util.FormatDuration(m.player.Position())
	total := util.FormatDuration(time.Duration(m.player.Duration() * float64(time.Second)))
	b.WriteString(timeStyle.Render(fmt.Sprintf("%s / %s  ", elapsed, total)))
	b.WriteString(m.vu.meter(meterWidth))
	b.WriteByte('\n')

	b.WriteString(m.frameStr)
	b.WriteByte('\n')

	frac := 0.0
	if d := m.player.Duration(); d > 0 {
		frac = m.player.CurrentTime() / d
	}
	m.prog.Width = m.width
	b.WriteString(m.prog.ViewAs(frac))
	b.WriteByte('\n')

	b.WriteString(helpStyle.Render(truncate(helpText(m.presetPath != ""), m.width)))
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
