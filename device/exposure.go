// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package device

import "context"

// exposure is the record of the running exposure task, owned by the
// Device and cleared by the simulator when it finishes.
type exposure struct {
	id   string
	done chan struct{}

	// cancel releases the exposure's context. The simulator calls it
	// on exit; an abort command would call it early.
	cancel context.CancelFunc
}

// simulate advances progress one step per tick and finalizes the
// device when the last step is done. It holds the device lock only for
// each individual update, never across a tick wait.
func (d *Device) simulate(ctx context.Context, record *exposure) {
	defer record.cancel()

	for step := 0; step < ExposureSteps; step++ {
		select {
		case <-ctx.Done():
			d.logger.Warn("exposure simulator stopped before completion",
				"exposure_id", record.id,
				"progress", step,
			)
			return
		case <-d.clock.After(d.tick):
		}

		d.mu.Lock()
		d.progress = step
		d.mu.Unlock()

		d.logger.Debug("exposure progress", "exposure_id", record.id, "progress", step)
	}

	d.mu.Lock()
	d.progress = 100
	d.status = StatusReady
	d.exposure = nil
	close(record.done)
	d.mu.Unlock()

	d.logger.Info("exposure complete", "exposure_id", record.id)
}
