// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tel84/instruments/protocol"
)

// Instrument is the protocol surface the monitor drives.
// *ccdclient.Client implements it.
type Instrument interface {
	Init(ctx context.Context, binX, binY int) error
	Expose(ctx context.Context, seconds int) (string, error)
	Progress(ctx context.Context, id string) (int, error)
	Status(ctx context.Context) (string, error)
	Temperature(ctx context.Context) (float64, error)
}

// Defaults for Options fields left zero.
const (
	DefaultRefreshInterval = time.Second
	DefaultRequestTimeout  = 5 * time.Second
	defaultBarWidth        = 40
)

// Options configures a Model.
type Options struct {
	// Address is shown in the header.
	Address string

	// BinX and BinY are sent by the init key.
	BinX int
	BinY int

	// ExposureSeconds is sent by the expose key.
	ExposureSeconds int

	RefreshInterval time.Duration

	// RequestTimeout bounds each instrument call.
	RequestTimeout time.Duration

	Theme *Theme
}

// refreshTickMsg schedules the next poll.
type refreshTickMsg struct{}

// pollResultMsg carries one round of STATUS, TEMP and, while an
// exposure is tracked, PROGRESO.
type pollResultMsg struct {
	status         string
	statusErr      error
	temperature    float64
	temperatureErr error

	// exposureID is the token the progress belongs to; empty when no
	// exposure was polled.
	exposureID  string
	progress    int
	progressErr error
}

// initResultMsg is sent when an INIT completes.
type initResultMsg struct {
	binX, binY int
	err        error
}

// exposeResultMsg is sent when an EXPONE completes.
type exposeResultMsg struct {
	seconds int
	id      string
	err     error
}

// Model is the bubbletea model for the CCD monitor.
type Model struct {
	instrument Instrument
	options    Options
	keys       KeyMap
	theme      Theme
	help       help.Model
	bar        progress.Model

	width int

	status         string
	temperature    float64
	hasTemperature bool
	binning        string

	exposureID string
	progress   int

	// notice is the last command outcome; failed marks it as an error.
	notice string
	failed bool

	// pollError is the most recent polling failure, cleared by the
	// next fully successful poll.
	pollError string
}

// NewModel returns a monitor for instrument.
func NewModel(instrument Instrument, options Options) Model {
	if options.RefreshInterval <= 0 {
		options.RefreshInterval = DefaultRefreshInterval
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = DefaultRequestTimeout
	}
	if options.BinX <= 0 {
		options.BinX = 1
	}
	if options.BinY <= 0 {
		options.BinY = 1
	}
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}

	return Model{
		instrument: instrument,
		options:    options,
		keys:       DefaultKeyMap,
		theme:      theme,
		help:       help.New(),
		bar: progress.New(
			progress.WithGradient(theme.ProgressStart, theme.ProgressEnd),
			progress.WithWidth(defaultBarWidth),
		),
	}
}

func (model Model) Init() tea.Cmd {
	return model.poll()
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.bar.Width = min(defaultBarWidth, max(10, message.Width-4))
		model.help.Width = message.Width
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)

	case refreshTickMsg:
		return model, model.poll()

	case pollResultMsg:
		model.applyPoll(message)
		return model, model.scheduleRefresh()

	case initResultMsg:
		if message.err != nil {
			model.setNotice(true, "INIT %dx%d failed: %v", message.binX, message.binY, message.err)
			return model, nil
		}
		model.binning = fmt.Sprintf("%dx%d", message.binX, message.binY)
		model.setNotice(false, "initialized %s", model.binning)
		return model, nil

	case exposeResultMsg:
		switch {
		case errors.Is(message.err, protocol.ErrAlreadyExposing):
			model.setNotice(true, "ccd already exposing")
		case message.err != nil:
			model.setNotice(true, "EXPONE %d failed: %v", message.seconds, message.err)
		default:
			model.exposureID = message.id
			model.progress = 0
			model.setNotice(false, "exposure %s started", message.id)
		}
		return model, nil
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Initialize):
		return model, model.initialize()
	case key.Matches(message, model.keys.Expose):
		return model, model.expose()
	case key.Matches(message, model.keys.Refresh):
		return model, model.poll()
	}
	return model, nil
}

func (model *Model) setNotice(failed bool, format string, args ...any) {
	model.notice = fmt.Sprintf(format, args...)
	model.failed = failed
}

func (model *Model) applyPoll(result pollResultMsg) {
	var problems []string

	if result.statusErr != nil {
		problems = append(problems, "STATUS: "+result.statusErr.Error())
	} else {
		model.status = result.status
	}

	if result.temperatureErr != nil {
		problems = append(problems, "TEMP: "+result.temperatureErr.Error())
	} else {
		model.temperature = result.temperature
		model.hasTemperature = true
	}

	// A result for an exposure replaced while the poll was in flight
	// is stale.
	if result.exposureID != "" && result.exposureID == model.exposureID {
		switch {
		case errors.Is(result.progressErr, protocol.ErrInvalidID):
			model.exposureID = ""
			model.progress = 0
			model.setNotice(true, "instrument no longer tracks exposure %s", result.exposureID)
		case result.progressErr != nil:
			problems = append(problems, "PROGRESO: "+result.progressErr.Error())
		default:
			model.progress = result.progress
		}
	}

	model.pollError = strings.Join(problems, "; ")
}

func (model Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(model.options.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// poll queries the instrument. PROGRESO is skipped once the tracked
// exposure has reached 100.
func (model Model) poll() tea.Cmd {
	instrument := model.instrument
	timeout := model.options.RequestTimeout
	exposureID := model.exposureID
	if model.progress >= 100 {
		exposureID = ""
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var result pollResultMsg
		result.status, result.statusErr = instrument.Status(ctx)
		result.temperature, result.temperatureErr = instrument.Temperature(ctx)
		if exposureID != "" {
			result.exposureID = exposureID
			result.progress, result.progressErr = instrument.Progress(ctx, exposureID)
		}
		return result
	}
}

func (model Model) initialize() tea.Cmd {
	instrument := model.instrument
	timeout := model.options.RequestTimeout
	binX, binY := model.options.BinX, model.options.BinY

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return initResultMsg{binX: binX, binY: binY, err: instrument.Init(ctx, binX, binY)}
	}
}

func (model Model) expose() tea.Cmd {
	instrument := model.instrument
	timeout := model.options.RequestTimeout
	seconds := model.options.ExposureSeconds

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, err := instrument.Expose(ctx, seconds)
		return exposeResultMsg{seconds: seconds, id: id, err: err}
	}
}

func (model Model) View() string {
	theme := model.theme
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)
	label := lipgloss.NewStyle().Foreground(theme.FaintText).Width(13)
	value := lipgloss.NewStyle().Foreground(theme.NormalText)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	title := "CCD monitor"
	if model.options.Address != "" {
		title += " " + faint.Render(model.options.Address)
	}

	status := "waiting"
	if model.status != "" {
		status = model.status
	}
	temperature := faint.Render("waiting")
	if model.hasTemperature {
		temperature = value.Render(protocol.FormatTemperature(model.temperature) + " °C")
	}
	binning := faint.Render("not initialized")
	if model.binning != "" {
		binning = value.Render(model.binning)
	}
	exposure := faint.Render("none")
	if model.exposureID != "" {
		exposure = value.Render(model.exposureID)
	}

	lines := []string{
		header.Render(title),
		"",
		label.Render("Status") + lipgloss.NewStyle().Bold(true).Foreground(theme.StatusColor(model.status)).Render(status),
		label.Render("Temperature") + temperature,
		label.Render("Binning") + binning,
		label.Render("Exposure") + exposure,
		label.Render("Progress") + model.bar.ViewAs(float64(model.progress)/100),
		"",
	}

	if model.notice != "" {
		color := theme.NormalText
		if model.failed {
			color = theme.Warning
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Render(model.notice))
	}
	if model.pollError != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Error).Render(model.pollError))
	}
	lines = append(lines, model.help.View(model.keys))

	if model.width > 0 {
		for index, line := range lines {
			lines[index] = ansi.Truncate(line, model.width, "…")
		}
	}
	return strings.Join(lines, "\n")
}
