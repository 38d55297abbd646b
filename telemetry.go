// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// TelemetryData holds all telemetry data of an expansion.
type TelemetryData struct {
	// DegradedArchives is the number of nested archives that could not be expanded
	// and were kept as opaque files
	DegradedArchives int64 `json:"degraded_archives"`

	// ExpandedArchives is the number of expanded archives, including the input
	ExpandedArchives int64 `json:"expanded_archives"`

	// ExpandedFiles is the number of leaf files in the resulting tree
	ExpandedFiles int64 `json:"expanded_files"`

	// ExpansionDuration is the time it took to expand the input
	ExpansionDuration time.Duration `json:"expansion_duration"`

	// ExpansionErrors is the number of errors during expansion
	ExpansionErrors int64 `json:"expansion_errors"`

	// ExpansionSize is the size of all decompressed entries
	ExpansionSize int64 `json:"expansion_size"`

	// InputSize is the size of the input
	InputSize int64 `json:"input_size"`

	// InputType is the format of the top-level input
	InputType string `json:"input_type"`

	// LastExpansionError is the last error during expansion
	LastExpansionError error `json:"last_expansion_error"`

	// MaxDepth is the deepest nesting level that was reached
	MaxDepth int64 `json:"max_depth"`
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastExpansionError != nil {
		lastError = m.LastExpansionError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastExpansionError string `json:"last_expansion_error"`
		*Alias
	}{
		LastExpansionError: lastError,
		Alias:              (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after an expansion has finished which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// telemetryRecorder guards [TelemetryData] while sibling archives are
// expanded in parallel.
type telemetryRecorder struct {
	mu sync.Mutex
	td TelemetryData
}

func (r *telemetryRecorder) update(fn func(td *TelemetryData)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.td)
}

// snapshot returns a copy of the recorded data.
func (r *telemetryRecorder) snapshot() *TelemetryData {
	r.mu.Lock()
	defer r.mu.Unlock()
	td := r.td
	return &td
}

// now is a function point that returns time.Now to the caller.
var now = time.Now
