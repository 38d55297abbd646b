// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrResourceExhausted is wrapped by every error that reports an exceeded
	// expansion limit. An expansion that fails with it is aborted as a whole.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrMaxDepthExceeded indicates that archives are nested deeper than allowed.
	ErrMaxDepthExceeded = fmt.Errorf("%w: maximum nesting depth exceeded", ErrResourceExhausted)

	// ErrMaxExpansionSizeExceeded indicates that the decompressed bytes of all
	// archives exceed the configured maximum.
	ErrMaxExpansionSizeExceeded = fmt.Errorf("%w: maximum expansion size exceeded", ErrResourceExhausted)

	// ErrMaxEntriesExceeded indicates that more entries were decompressed than allowed.
	ErrMaxEntriesExceeded = fmt.Errorf("%w: maximum number of entries exceeded", ErrResourceExhausted)

	// ErrMaxInputSizeExceeded indicates that the top-level input is larger than allowed.
	ErrMaxInputSizeExceeded = fmt.Errorf("%w: maximum input size exceeded", ErrResourceExhausted)

	// ErrMaxExportSizeExceeded indicates that an export grew larger than allowed.
	ErrMaxExportSizeExceeded = fmt.Errorf("%w: maximum export size exceeded", ErrResourceExhausted)

	// ErrUnsupportedFormat is returned by a codec that cannot identify its input.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNotPreviewable is returned when a nested archive is handed to the previewer.
	// Nested archives are expanded, not previewed.
	ErrNotPreviewable = errors.New("nested archives cannot be previewed")
)

// CodecError is returned when compressed input is malformed, truncated or unsupported.
// Inside a nested archive it is recovered by keeping the entry as an opaque leaf,
// at the top level it fails the expansion.
type CodecError struct {
	Format string
	Err    error
}

func (e *CodecError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("codec error: %s", e.Err)
	}
	return fmt.Sprintf("codec error (%s): %s", e.Format, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newCodecError wraps err into a [CodecError] unless it already is one or it reports
// an exhausted resource or a canceled context. Those must not be degraded.
func newCodecError(format string, err error) error {
	var ce *CodecError
	if errors.As(err, &ce) || errors.Is(err, ErrResourceExhausted) || isContextError(err) {
		return err
	}
	return &CodecError{Format: format, Err: err}
}

// PreviewDecodeError describes a text, JSON or data URL decoding failure. It never aborts
// a preview, it is reported through the event hook while a lower fidelity rendering is used.
type PreviewDecodeError struct {
	Name   string
	Reason string
	Err    error
}

func (e *PreviewDecodeError) Error() string {
	return fmt.Sprintf("cannot decode %q (%s): %s", e.Name, e.Reason, e.Err)
}

func (e *PreviewDecodeError) Unwrap() error {
	return e.Err
}

// ImageDisplayError signals that a rendered image could not be displayed. Callers
// fall back to [Previewer.ImageFallback] when they receive it.
type ImageDisplayError struct {
	MIME string
	Err  error
}

func (e *ImageDisplayError) Error() string {
	return fmt.Sprintf("cannot display %s image: %s", e.MIME, e.Err)
}

func (e *ImageDisplayError) Unwrap() error {
	return e.Err
}

// ExportError is returned when flattened files cannot be assembled into an archive.
// The expanded tree is not modified, so the export can be retried.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export failed: %s", e.Err)
	}
	return fmt.Sprintf("export of %q failed: %s", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// isContextError reports whether err stems from a canceled or expired context.
func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
