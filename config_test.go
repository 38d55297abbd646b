// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, defaultConcurrency, cfg.Concurrency())
	assert.Equal(t, []string{FormatLZ4}, cfg.Formats())
	assert.Equal(t, []string{".lz4"}, cfg.ArchiveSuffixes())
	assert.Equal(t, defaultHexDumpLimit, cfg.HexDumpLimit())
	assert.Equal(t, int64(defaultMaxDepth), cfg.MaxDepth())
	assert.Equal(t, int64(defaultMaxEntries), cfg.MaxEntries())
	assert.Equal(t, int64(defaultMaxExpansionSize), cfg.MaxExpansionSize())
	assert.Equal(t, int64(defaultMaxInputSize), cfg.MaxInputSize())
	assert.NotNil(t, cfg.Logger())
	assert.NotNil(t, cfg.EventHook())
	assert.NotNil(t, cfg.TelemetryHook())

	codec, err := cfg.Codec()
	require.NoError(t, err)
	mc, ok := codec.(*MultiCodec)
	require.True(t, ok)
	assert.Equal(t, []string{FormatLZ4}, mc.Formats())
}

func TestConfigOptions(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	codec := CodecFunc(func(ctx context.Context, name string, src []byte) ([]RawEntry, error) {
		return nil, nil
	})

	cfg := NewConfig(
		WithArchiveSuffixes(".LZ4", "", ".pack"),
		WithCodec(codec),
		WithConcurrency(8),
		WithFormats(FormatZstd, FormatGZip),
		WithHexDumpLimit(-1),
		WithLogger(logger),
		WithMaxDepth(3),
		WithMaxEntries(10),
		WithMaxExpansionSize(100),
		WithMaxInputSize(50),
	)

	assert.Equal(t, []string{".lz4", ".pack"}, cfg.ArchiveSuffixes())
	assert.Equal(t, 8, cfg.Concurrency())
	assert.Equal(t, []string{FormatZstd, FormatGZip}, cfg.Formats())
	assert.Equal(t, -1, cfg.HexDumpLimit())
	assert.Equal(t, logger, cfg.Logger())
	assert.Equal(t, int64(3), cfg.MaxDepth())
	assert.Equal(t, int64(10), cfg.MaxEntries())
	assert.Equal(t, int64(100), cfg.MaxExpansionSize())
	assert.Equal(t, int64(50), cfg.MaxInputSize())

	got, err := cfg.Codec()
	require.NoError(t, err)
	_, ok := got.(CodecFunc)
	assert.True(t, ok, "custom codec is returned")
}

func TestConfigArchiveSuffixesFromFormats(t *testing.T) {
	cfg := NewConfig(WithFormats(FormatZstd, FormatGZip))
	assert.Equal(t, []string{".zst", ".gz"}, cfg.ArchiveSuffixes())

	// an empty option keeps the defaults
	cfg = NewConfig(WithFormats())
	assert.Equal(t, []string{".lz4"}, cfg.ArchiveSuffixes())

	// a configured codec defines the suffixes
	mc, err := NewCodec(FormatXz, FormatBzip2)
	require.NoError(t, err)
	cfg = NewConfig(WithCodec(mc))
	assert.Equal(t, []string{".xz", ".bz2"}, cfg.ArchiveSuffixes())

	// unknown formats have no suffixes
	cfg = NewConfig(WithFormats("lz5"))
	assert.Empty(t, cfg.ArchiveSuffixes())
}

func TestConfigCodecUnknownFormat(t *testing.T) {
	_, err := NewConfig(WithFormats("lz5")).Codec()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestConfigCodecMaxEntrySize(t *testing.T) {
	codec, err := NewConfig(WithMaxExpansionSize(16)).Codec()
	require.NoError(t, err)

	_, err = codec.Decompress(context.Background(), "big.lz4", compressLZ4(t, make([]byte, 32)))
	assert.ErrorIs(t, err, ErrMaxExpansionSizeExceeded)
}

func TestWithConcurrency(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{input: -5, want: 1},
		{input: 0, want: 1},
		{input: 1, want: 1},
		{input: 16, want: 16},
	}
	for _, tc := range tests {
		if got := NewConfig(WithConcurrency(tc.input)).Concurrency(); got != tc.want {
			t.Errorf("WithConcurrency(%d): got %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestConfigChecks(t *testing.T) {
	cfg := NewConfig(WithMaxDepth(2), WithMaxEntries(2), WithMaxExpansionSize(2), WithMaxInputSize(2))
	unlimited := NewConfig(WithMaxDepth(-1), WithMaxEntries(-1), WithMaxExpansionSize(-1), WithMaxInputSize(-1))

	tests := []struct {
		name    string
		check   func(c *Config, v int64) error
		wantErr error
	}{
		{name: "depth", check: (*Config).CheckMaxDepth, wantErr: ErrMaxDepthExceeded},
		{name: "entries", check: (*Config).CheckMaxEntries, wantErr: ErrMaxEntriesExceeded},
		{name: "expansion size", check: (*Config).CheckExpansionSize, wantErr: ErrMaxExpansionSizeExceeded},
		{name: "input size", check: (*Config).CheckInputSize, wantErr: ErrMaxInputSizeExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, tc.check(cfg, 0))
			assert.NoError(t, tc.check(cfg, 2))
			err := tc.check(cfg, 3)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrResourceExhausted)
			assert.NoError(t, tc.check(unlimited, 1<<40))
		})
	}
}

func TestConfigLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	input := lz4Bundle(t, RawEntry{Name: "bad.lz4", Data: []byte("garbage")})
	_, err := Expand(context.Background(), "input.lz4", input, NewConfig(WithLogger(logger)))
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "msg=expand")
	assert.Contains(t, logs.String(), "cannot expand nested archive")
	assert.Contains(t, logs.String(), "name=bad.lz4")
}
