// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tel84/instruments/lib/clock"
	"github.com/tel84/instruments/protocol"
)

// Status is the instrument state as reported by STATUS.
type Status string

const (
	StatusIdle     Status = protocol.StatusIdle
	StatusReady    Status = protocol.StatusReady
	StatusExposing Status = protocol.StatusExposing
)

// Simulation defaults.
const (
	// ExposureSteps is the number of progress steps in every exposure.
	ExposureSteps = 100

	// DefaultTickInterval is the wait before each progress step, giving
	// roughly 30 seconds per exposure.
	DefaultTickInterval = 300 * time.Millisecond

	DefaultTemperatureMin = -120.0
	DefaultTemperatureMax = -105.0
)

// Binning is the pixel grouping factor set by INIT.
type Binning struct {
	X int
	Y int
}

// Options configures a Device. The zero value gives the stock
// simulator on the real clock.
type Options struct {
	// Clock drives the exposure ticks. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives exposure lifecycle events. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// TickInterval is the wait before each of the ExposureSteps
	// progress steps. Defaults to DefaultTickInterval.
	TickInterval time.Duration

	// TemperatureMin and TemperatureMax bound the simulated sensor
	// reading. Both zero selects the default range.
	TemperatureMin float64
	TemperatureMax float64

	// Random is the source for temperature readings. Defaults to a
	// randomly seeded PCG generator.
	Random *rand.Rand

	// NewID generates exposure tokens. Defaults to uuid.NewString.
	NewID func() string
}

// Snapshot is a consistent copy of the device state.
type Snapshot struct {
	Status           Status
	Binning          Binning
	ExposureID       string
	Progress         int
	RequestedSeconds int
}

// Device is the single shared CCD state. Methods are safe for
// concurrent use.
type Device struct {
	baseContext context.Context
	clock       clock.Clock
	logger      *slog.Logger
	tick        time.Duration
	newID       func() string
	tempMin     float64
	tempMax     float64

	mu               sync.Mutex
	random           *rand.Rand
	status           Status
	binning          Binning
	exposure         *exposure
	progress         int
	requestedSeconds int
}

// New returns an idle Device with binning 1x1. Cancelling ctx stops
// any running exposure simulator without completing it; use it only
// for process shutdown.
func New(ctx context.Context, options Options) *Device {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.TemperatureMin == 0 && options.TemperatureMax == 0 {
		options.TemperatureMin = DefaultTemperatureMin
		options.TemperatureMax = DefaultTemperatureMax
	}
	if options.Random == nil {
		options.Random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if options.NewID == nil {
		options.NewID = uuid.NewString
	}

	return &Device{
		baseContext: ctx,
		clock:       options.Clock,
		logger:      options.Logger,
		tick:        options.TickInterval,
		newID:       options.NewID,
		tempMin:     options.TemperatureMin,
		tempMax:     options.TemperatureMax,
		random:      options.Random,
		status:      StatusIdle,
		binning:     Binning{X: 1, Y: 1},
	}
}

// CanonicalExposureID is the one normalization applied to exposure
// tokens, both when a token is generated and when a caller's token is
// looked up.
func CanonicalExposureID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// TickInterval returns the wait before each progress step.
func (d *Device) TickInterval() time.Duration {
	return d.tick
}

// Init sets the binning and moves the device to LISTO. It always
// succeeds. Mid-exposure only the binning changes: the status stays
// EXPONIENDO until the simulator completes, so a second exposure can
// never start on top of the running one.
func (d *Device) Init(binning Binning) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.binning = binning
	if d.exposure == nil {
		d.status = StatusReady
	}
}

// StartExposure begins a new exposure and returns its token. It fails
// with ErrAlreadyExposing while another exposure is running.
func (d *Device) StartExposure(seconds int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.exposure != nil {
		return "", ErrAlreadyExposing
	}

	ctx, cancel := context.WithCancel(d.baseContext)
	record := &exposure{
		id:     CanonicalExposureID(d.newID()),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	d.exposure = record
	d.status = StatusExposing
	d.progress = 0
	d.requestedSeconds = seconds

	d.logger.Info("exposure started",
		"exposure_id", record.id,
		"requested_seconds", seconds,
		"tick_interval", d.tick,
	)

	go d.simulate(ctx, record)
	return record.id, nil
}

// Progress reports the progress of the exposure identified by id.
// With no exposure active it returns the last known progress whatever
// the id; with one active, a non-matching id yields ErrInvalidID.
func (d *Device) Progress(id string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.exposure != nil && CanonicalExposureID(id) != d.exposure.id {
		return 0, ErrInvalidID
	}
	return d.progress, nil
}

// Status returns the current status.
func (d *Device) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Temperature returns a simulated sensor reading in degrees Celsius,
// uniform over the configured range and rounded to two decimals.
func (d *Device) Temperature() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw := d.tempMin + d.random.Float64()*(d.tempMax-d.tempMin)
	return math.Round(raw*100) / 100
}

// Snapshot returns a copy of every field taken under one lock.
func (d *Device) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := Snapshot{
		Status:           d.status,
		Binning:          d.binning,
		Progress:         d.progress,
		RequestedSeconds: d.requestedSeconds,
	}
	if d.exposure != nil {
		snapshot.ExposureID = d.exposure.id
	}
	return snapshot
}

// ExposureDone returns a channel closed when the active exposure
// completes, or nil if no exposure is active.
func (d *Device) ExposureDone() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exposure == nil {
		return nil
	}
	return d.exposure.done
}
