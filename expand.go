// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Expander rebuilds the file tree of an archive whose entries may be archives themselves.
// An Expander is safe for concurrent use.
type Expander struct {
	cfg        *Config
	codec      Codec
	classifier *Classifier
}

// NewExpander returns an [Expander] for cfg. A nil cfg is replaced by the default
// configuration.
func NewExpander(cfg *Config) (*Expander, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	codec, err := cfg.Codec()
	if err != nil {
		return nil, fmt.Errorf("cannot create codec: %w", err)
	}
	return &Expander{
		cfg:        cfg,
		codec:      codec,
		classifier: NewClassifier(cfg.ArchiveSuffixes()...),
	}, nil
}

// Expand is a shortcut for [NewExpander] and [Expander.Expand].
func Expand(ctx context.Context, name string, src []byte, cfg *Config) (*Node, error) {
	e, err := NewExpander(cfg)
	if err != nil {
		return nil, err
	}
	return e.Expand(ctx, name, src)
}

// Expand decompresses src and recursively every entry classified as nested archive.
// The returned root is a folder named after name holding the entries of src in the
// order the codec emitted them.
//
// A nested archive that cannot be decompressed is kept as leaf with [Node.ExpandErr]
// set. A codec failure on src itself, an exceeded limit (see [ErrResourceExhausted])
// and a canceled ctx abort the expansion.
func (e *Expander) Expand(ctx context.Context, name string, src []byte) (*Node, error) {
	x := &expansion{Expander: e}

	// prepare telemetry data collection and emit
	defer func() { e.cfg.TelemetryHook()(ctx, x.rec.snapshot()) }()
	defer x.captureExpansionDuration(now())
	x.rec.update(func(td *TelemetryData) {
		td.InputSize = int64(len(src))
		td.InputType = extension(name)
	})

	e.cfg.Logger().Info("expand", "name", name, "size", len(src))

	if err := e.cfg.CheckInputSize(int64(len(src))); err != nil {
		return nil, x.handleError("cannot expand input", err)
	}

	children, err := x.expand(ctx, name, src, 0)
	if err != nil {
		return nil, x.handleError("cannot expand input", err)
	}

	return &Node{
		Name:        name,
		DisplayName: e.classifier.TrimArchiveSuffix(name),
		Kind:        kindNestedArchive,
		Data:        src,
		Children:    children,
		folder:      true,
	}, nil
}

// expansion holds the state of a single [Expander.Expand] call, shared by all
// levels and siblings.
type expansion struct {
	*Expander
	entries atomic.Int64
	size    atomic.Int64
	rec     telemetryRecorder
}

// expand decompresses src, which is nested depth levels below the input, and
// returns its entries as nodes.
func (x *expansion) expand(ctx context.Context, name string, src []byte, depth int64) ([]*Node, error) {
	if err := x.cfg.CheckMaxDepth(depth); err != nil {
		return nil, err
	}

	// check if context is canceled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := x.codec.Decompress(ctx, name, src)
	if err != nil {
		return nil, newCodecError(extension(name), err)
	}

	if err := x.account(entries, depth); err != nil {
		return nil, err
	}

	nodes := make([]*Node, len(entries))
	if x.cfg.Concurrency() > 1 {
		err = x.expandParallel(ctx, entries, nodes, depth)
	} else {
		err = x.expandSequential(ctx, entries, nodes, depth)
	}
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// account adds entries to the budget of the expansion and fails if a limit is exceeded.
func (x *expansion) account(entries []RawEntry, depth int64) error {
	var size int64
	for _, entry := range entries {
		size += int64(len(entry.Data))
	}

	if err := x.cfg.CheckMaxEntries(x.entries.Add(int64(len(entries)))); err != nil {
		return err
	}
	total := x.size.Add(size)
	if err := x.cfg.CheckExpansionSize(total); err != nil {
		return err
	}

	x.rec.update(func(td *TelemetryData) {
		td.ExpandedArchives++
		td.ExpansionSize += size
		if depth > td.MaxDepth {
			td.MaxDepth = depth
		}
	})
	return nil
}

func (x *expansion) expandSequential(ctx context.Context, entries []RawEntry, nodes []*Node, depth int64) error {
	for i, entry := range entries {
		n, err := x.node(ctx, entry, depth)
		if err != nil {
			return err
		}
		nodes[i] = n
	}
	return nil
}

// expandParallel expands entries with up to [Config.Concurrency] goroutines. Every
// goroutine writes its own slot of nodes, so the order of entries is kept.
func (x *expansion) expandParallel(ctx context.Context, entries []RawEntry, nodes []*Node, depth int64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.cfg.Concurrency())
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			n, err := x.node(gctx, entry, depth)
			if err != nil {
				return err
			}
			nodes[i] = n
			return nil
		})
	}
	return g.Wait()
}

// node classifies entry and expands it if it is a nested archive.
func (x *expansion) node(ctx context.Context, entry RawEntry, depth int64) (*Node, error) {
	kind := x.classifier.Classify(entry.Name, sniff(entry.Data, SniffLength))
	if kind.Kind != KindNestedArchive {
		x.rec.update(func(td *TelemetryData) { td.ExpandedFiles++ })
		return &Node{Name: entry.Name, DisplayName: entry.Name, Kind: kind, Data: entry.Data}, nil
	}

	children, err := x.expand(ctx, entry.Name, entry.Data, depth+1)
	switch {
	case err == nil:
		return &Node{
			Name:        entry.Name,
			DisplayName: x.classifier.TrimArchiveSuffix(entry.Name),
			Kind:        kind,
			Data:        entry.Data,
			Children:    children,
			folder:      true,
		}, nil
	case errors.Is(err, ErrResourceExhausted), isContextError(err):
		return nil, err
	}

	// keep the broken archive as opaque file
	x.degrade(ctx, entry, err)
	return &Node{Name: entry.Name, DisplayName: entry.Name, Kind: kind, Data: entry.Data, ExpandErr: err}, nil
}

// degrade reports a nested archive that is kept as leaf.
func (x *expansion) degrade(ctx context.Context, entry RawEntry, err error) {
	x.cfg.Logger().Warn("cannot expand nested archive", "name", entry.Name, "error", err)
	x.rec.update(func(td *TelemetryData) {
		td.DegradedArchives++
		td.ExpandedFiles++
		td.ExpansionErrors++
		td.LastExpansionError = fmt.Errorf("cannot expand %s: %w", entry.Name, err)
	})
	x.cfg.EventHook()(ctx, Event{
		Type:   EventNestedArchiveFailed,
		Name:   entry.Name,
		Reason: "kept as file",
		Err:    err,
	})
}

// handleError records err in the telemetry data and returns it wrapped with msg.
func (x *expansion) handleError(msg string, err error) error {
	err = fmt.Errorf("%s: %w", msg, err)
	x.cfg.Logger().Error(msg, "error", err)
	x.rec.update(func(td *TelemetryData) {
		td.ExpansionErrors++
		td.LastExpansionError = err
	})
	return err
}

// captureExpansionDuration captures the duration of the expansion
func (x *expansion) captureExpansionDuration(start time.Time) {
	stop := now()
	x.rec.update(func(td *TelemetryData) { td.ExpansionDuration = stop.Sub(start) })
}
