// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"context"
	"errors"
)

// RenderType identifies the variant of a [Rendered] preview.
type RenderType uint8

const (
	// RenderImage carries image bytes in [Rendered.Data] with [Rendered.MIME].
	RenderImage RenderType = iota + 1

	// RenderText carries formatted text in [Rendered.Text].
	RenderText

	// RenderHexDump carries a hex dump in [Rendered.Text], optionally explained by [Rendered.Header].
	RenderHexDump
)

// String returns the name of the render type.
func (t RenderType) String() string {
	switch t {
	case RenderImage:
		return "image"
	case RenderText:
		return "text"
	case RenderHexDump:
		return "hexdump"
	default:
		return "unknown"
	}
}

// Rendered is the human viewable representation of an entry.
type Rendered struct {
	Type RenderType

	// MIME is the mime type of an image
	MIME string

	// Data is the image payload
	Data []byte

	// Text is the formatted text or hex dump
	Text string

	// Header explains why a hex dump is shown instead of the requested rendering
	Header string
}

const (
	headerDataURL      = "failed to decode image data URL"
	headerDisplayImage = "failed to display as image"
	headerUnrecognized = "not a recognized image format"
)

// Previewer renders entries according to their [ContentKind]. Rendering never fails
// because of the content of an entry, a lower fidelity rendering is returned instead
// and reported through the event hook.
type Previewer struct {
	cfg *Config
}

// NewPreviewer returns a [Previewer] for cfg. A nil cfg is replaced by the default
// configuration.
func NewPreviewer(cfg *Config) *Previewer {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Previewer{cfg: cfg}
}

// Preview is a shortcut for [NewPreviewer] and [Previewer.Preview].
func Preview(ctx context.Context, entry RawEntry, kind ContentKind, cfg *Config) (*Rendered, error) {
	return NewPreviewer(cfg).Preview(ctx, entry, kind)
}

// Preview renders entry. Nested archives are not previewed and fail with [ErrNotPreviewable].
func (p *Previewer) Preview(ctx context.Context, entry RawEntry, kind ContentKind) (*Rendered, error) {
	// check if context is canceled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch kind.Kind {
	case KindNestedArchive:
		return nil, ErrNotPreviewable
	case KindImage:
		return p.previewImage(ctx, entry, kind), nil
	case KindPlainText:
		return p.previewText(ctx, entry, kind), nil
	default:
		if extension(entry.Name) == genericImageExtension {
			p.fallback(ctx, entry.Name, headerUnrecognized, nil)
			return p.hexDump(entry, headerUnrecognized), nil
		}
		return p.hexDump(entry, ""), nil
	}
}

// ImageFallback renders entry as hex dump after its image rendering could not be
// displayed, see [DecodeImage].
func (p *Previewer) ImageFallback(ctx context.Context, entry RawEntry, cause error) *Rendered {
	p.fallback(ctx, entry.Name, headerDisplayImage, cause)
	return p.hexDump(entry, headerDisplayImage)
}

func (p *Previewer) previewImage(ctx context.Context, entry RawEntry, kind ContentKind) *Rendered {
	// images embedded as text take precedence over magic bytes
	if isDataURL(entry.Data) {
		mime, payload, err := decodeDataURL(entry.Data)
		if err != nil {
			p.fallback(ctx, entry.Name, headerDataURL, &PreviewDecodeError{Name: entry.Name, Reason: "data url", Err: err})
			return p.hexDump(entry, headerDataURL)
		}
		return &Rendered{Type: RenderImage, MIME: mime, Data: payload}
	}

	format := kind.Image
	if extension(entry.Name) == genericImageExtension {
		if format == ImageUnknown {
			format = SniffImage(sniff(entry.Data, SniffLength))
		}
		if format == ImageUnknown {
			p.fallback(ctx, entry.Name, headerUnrecognized, nil)
			return p.hexDump(entry, headerUnrecognized)
		}
		return &Rendered{Type: RenderImage, MIME: format.MIME(), Data: entry.Data}
	}

	return &Rendered{Type: RenderImage, MIME: MIMEType(entry.Name), Data: entry.Data}
}

func (p *Previewer) previewText(ctx context.Context, entry RawEntry, kind ContentKind) *Rendered {
	text, err := decodeText(entry.Data)
	if err != nil {
		p.fallback(ctx, entry.Name, "text rendered without decoding", &PreviewDecodeError{Name: entry.Name, Reason: "utf-8", Err: err})
		text = string(entry.Data)
	}
	if !kind.JSON {
		return &Rendered{Type: RenderText, Text: text}
	}

	formatted, err := FormatJSON(text)
	if err != nil {
		p.fallback(ctx, entry.Name, "json rendered as text", &PreviewDecodeError{Name: entry.Name, Reason: "json", Err: err})
	}
	return &Rendered{Type: RenderText, Text: formatted}
}

func (p *Previewer) hexDump(entry RawEntry, header string) *Rendered {
	return &Rendered{
		Type:   RenderHexDump,
		Text:   FormatBinaryDump(entry.Data, p.cfg.HexDumpLimit()),
		Header: header,
	}
}

// fallback reports a lower fidelity rendering.
func (p *Previewer) fallback(ctx context.Context, name string, reason string, err error) {
	p.cfg.Logger().Debug("preview fallback", "name", name, "reason", reason, "error", err)
	if err == nil {
		err = errors.New(reason)
	}
	p.cfg.EventHook()(ctx, Event{
		Type:   EventPreviewFallback,
		Name:   name,
		Reason: reason,
		Err:    err,
	})
}
