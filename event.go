// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import "context"

// EventType identifies a degraded fallback decision.
type EventType string

const (
	// EventNestedArchiveFailed is emitted when a nested archive could not be
	// decompressed and is kept as an opaque file.
	EventNestedArchiveFailed EventType = "nested-archive-failed"

	// EventPreviewFallback is emitted when a preview is rendered with lower
	// fidelity than its content kind asks for.
	EventPreviewFallback EventType = "preview-fallback"
)

// Event describes a single degraded fallback decision.
type Event struct {
	// Type of the decision
	Type EventType

	// Name is the path of the affected entry
	Name string

	// Reason is a short, human readable explanation
	Reason string

	// Err is the error that caused the fallback, if any
	Err error
}

// EventHook is a function type that receives an [Event] for every degraded fallback
// decision, so a host application can surface or suppress diagnostics.
type EventHook func(context.Context, Event)
