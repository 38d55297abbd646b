// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for expansion and preview.
// The configuration options can be adjusted using the option pattern style.
//
// The default configuration is designed to be secure by default and bounds nesting
// depth, entry count and the total number of decompressed bytes.
type Config struct {
	// archiveSuffixes are the name suffixes that mark a nested archive. If empty,
	// the suffixes are derived from formats.
	archiveSuffixes []string

	// codec overrides the codec built from formats
	codec Codec

	// concurrency is the number of sibling archives expanded in parallel
	concurrency int

	// eventHook receives one event per degraded fallback decision
	eventHook EventHook

	// formats are the names of the registered formats the default codec understands
	formats []string

	// hexDumpLimit is the number of bytes rendered by a hex dump.
	// Set value to -1 to disable truncation.
	hexDumpLimit int

	// logger stream for expansion and preview
	logger logger

	// maxDepth is the maximum nesting depth of archives below the top-level input.
	// Set value to -1 to disable the check.
	maxDepth int64

	// maxEntries is the maximum number of entries over all decompressed archives.
	// Set value to -1 to disable the check.
	maxEntries int64

	// maxExpansionSize is the maximum size over all decompressed entries.
	// Set value to -1 to disable the check.
	maxExpansionSize int64

	// maxInputSize is the maximum size of the top-level input.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// telemetryHook is a function to consume telemetry data after finished expansion
	// Important: do not adjust this value after expansion started
	telemetryHook TelemetryHook
}

// ArchiveSuffixes returns the lower case name suffixes that mark an entry as nested archive.
// Unless set with [WithArchiveSuffixes], these are the [MultiCodec.Suffixes] of the configured
// codec or formats. Unknown formats yield no suffixes.
func (c *Config) ArchiveSuffixes() []string {
	if len(c.archiveSuffixes) > 0 {
		return c.archiveSuffixes
	}
	if mc, ok := c.codec.(*MultiCodec); ok {
		return mc.Suffixes()
	}
	mc, err := NewCodec(c.formats...)
	if err != nil {
		return nil
	}
	return mc.Suffixes()
}

// CheckMaxDepth checks if depth exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxDepthExceeded] error is returned.
func (c *Config) CheckMaxDepth(depth int64) error {
	if c.MaxDepth() == -1 {
		return nil
	}
	if depth > c.MaxDepth() {
		return ErrMaxDepthExceeded
	}
	return nil
}

// CheckMaxEntries checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxEntriesExceeded] error is returned.
func (c *Config) CheckMaxEntries(counter int64) error {
	if c.MaxEntries() == -1 {
		return nil
	}
	if counter > c.MaxEntries() {
		return ErrMaxEntriesExceeded
	}
	return nil
}

// CheckExpansionSize checks if size exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExpansionSizeExceeded] error is returned.
func (c *Config) CheckExpansionSize(size int64) error {
	if c.MaxExpansionSize() == -1 {
		return nil
	}
	if size > c.MaxExpansionSize() {
		return ErrMaxExpansionSizeExceeded
	}
	return nil
}

// CheckInputSize checks if size exceeds the configured maximum input size. If the maximum
// is exceeded, a [ErrMaxInputSizeExceeded] error is returned.
func (c *Config) CheckInputSize(size int64) error {
	if c.MaxInputSize() == -1 {
		return nil
	}
	if size > c.MaxInputSize() {
		return ErrMaxInputSizeExceeded
	}
	return nil
}

// Codec returns the codec used for expansion. Unless a custom codec was configured,
// a [MultiCodec] for the configured formats is built.
func (c *Config) Codec() (Codec, error) {
	if c.codec != nil {
		return c.codec, nil
	}
	mc, err := NewCodec(c.formats...)
	if err != nil {
		return nil, err
	}
	mc.SetMaxEntrySize(c.maxExpansionSize)
	return mc, nil
}

// Concurrency returns the number of sibling archives that are expanded in parallel.
func (c *Config) Concurrency() int {
	return c.concurrency
}

// EventHook returns the event hook.
func (c *Config) EventHook() EventHook {
	if c.eventHook == nil {
		return defaultEventHook
	}
	return c.eventHook
}

// Formats returns the names of the formats the default codec understands.
func (c *Config) Formats() []string {
	return c.formats
}

// HexDumpLimit returns the number of bytes rendered in a hex dump, -1 if unlimited.
func (c *Config) HexDumpLimit() int {
	return c.hexDumpLimit
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxDepth returns the maximum nesting depth of archives.
func (c *Config) MaxDepth() int64 {
	return c.maxDepth
}

// MaxEntries returns the maximum number of entries over all decompressed archives.
func (c *Config) MaxEntries() int64 {
	return c.maxEntries
}

// MaxExpansionSize returns the maximum size over all decompressed entries.
func (c *Config) MaxExpansionSize() int64 {
	return c.maxExpansionSize
}

// MaxInputSize returns the maximum size of the input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

const (
	defaultConcurrency      = 1             // expand siblings sequentially
	defaultHexDumpLimit     = 1024          // 1 Kb
	defaultMaxDepth         = 16            // nesting levels below the input
	defaultMaxEntries       = 100000        // 100k entries
	defaultMaxExpansionSize = 1 << (10 * 3) // 1 Gb
	defaultMaxInputSize     = 1 << (10 * 3) // 1 Gb
)

var (
	// the nested archive format of the original tool
	defaultFormats = []string{FormatLZ4}
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
	// no operation event hook
	defaultEventHook = func(ctx context.Context, e Event) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		concurrency:      defaultConcurrency,
		eventHook:        defaultEventHook,
		formats:          defaultFormats,
		hexDumpLimit:     defaultHexDumpLimit,
		logger:           defaultLogger,
		maxDepth:         defaultMaxDepth,
		maxEntries:       defaultMaxEntries,
		maxExpansionSize: defaultMaxExpansionSize,
		maxInputSize:     defaultMaxInputSize,
		telemetryHook:    defaultTelemetryHook,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithArchiveSuffixes options pattern function to set the name suffixes that mark an entry
// as nested archive. Suffixes are matched case-insensitive.
func WithArchiveSuffixes(suffixes ...string) ConfigOption {
	return func(c *Config) {
		c.archiveSuffixes = nil
		for _, s := range suffixes {
			if len(s) > 0 {
				c.archiveSuffixes = append(c.archiveSuffixes, strings.ToLower(s))
			}
		}
	}
}

// WithCodec options pattern function to replace the codec built from the configured formats.
func WithCodec(codec Codec) ConfigOption {
	return func(c *Config) {
		c.codec = codec
	}
}

// WithConcurrency options pattern function to expand up to n sibling archives in parallel.
// Values below 1 are treated as 1.
func WithConcurrency(n int) ConfigOption {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// WithEventHook options pattern function to set an [EventHook], which is called for every
// degraded fallback decision.
func WithEventHook(hook EventHook) ConfigOption {
	return func(c *Config) {
		c.eventHook = hook
	}
}

// WithFormats options pattern function to set the formats the default codec understands,
// e.g. [FormatLZ4] or [FormatZstd]. The formats also define the nested archive suffixes,
// unless [WithArchiveSuffixes] is used.
func WithFormats(formats ...string) ConfigOption {
	return func(c *Config) {
		if len(formats) > 0 {
			c.formats = formats
		}
	}
}

// WithHexDumpLimit options pattern function to set the number of bytes rendered by a
// hex dump. (-1 to disable truncation)
func WithHexDumpLimit(limit int) ConfigOption {
	return func(c *Config) {
		c.hexDumpLimit = limit
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxDepth options pattern function to set the maximum nesting depth of archives.
// (-1 to disable check)
func WithMaxDepth(maxDepth int64) ConfigOption {
	return func(c *Config) {
		c.maxDepth = maxDepth
	}
}

// WithMaxEntries options pattern function to set the maximum number of entries over all
// decompressed archives. (-1 to disable check)
func WithMaxEntries(maxEntries int64) ConfigOption {
	return func(c *Config) {
		c.maxEntries = maxEntries
	}
}

// WithMaxExpansionSize options pattern function to set maximum size over all decompressed
// entries. (-1 to disable check)
func WithMaxExpansionSize(maxExpansionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExpansionSize = maxExpansionSize
	}
}

// WithMaxInputSize options pattern function to set MaxInputSize for the top-level input. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after expansion.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
