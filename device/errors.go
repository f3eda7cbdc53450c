// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package device

import "errors"

var (
	// ErrAlreadyExposing is returned by StartExposure while an
	// exposure is in progress. The running exposure is unaffected.
	ErrAlreadyExposing = errors.New("device: exposure already in progress")

	// ErrInvalidID is returned by Progress when an exposure is active
	// and the given id is not its token.
	ErrInvalidID = errors.New("device: exposure id does not match the active exposure")
)
