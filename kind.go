// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"path"
	"strings"
)

// Kind is the closed set of content kinds a file can be classified as.
type Kind uint8

const (
	// KindBinary is any content without a more specific kind.
	KindBinary Kind = iota

	// KindNestedArchive is a compressed container that is expanded further.
	KindNestedArchive

	// KindImage is a raster image, see [ContentKind.Image] for the format.
	KindImage

	// KindPlainText is human readable text, see [ContentKind.JSON].
	KindPlainText
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNestedArchive:
		return "nested-archive"
	case KindImage:
		return "image"
	case KindPlainText:
		return "text"
	default:
		return "binary"
	}
}

// ContentKind is the classification of a single entry. It is derived from the
// entry's name and leading bytes and never stored.
type ContentKind struct {
	// Kind is the tag of the classification
	Kind Kind

	// JSON marks plain text that should be rendered as JSON
	JSON bool

	// Image is the format hint of an image, ImageUnknown otherwise
	Image ImageFormat
}

var (
	kindBinary        = ContentKind{Kind: KindBinary}
	kindNestedArchive = ContentKind{Kind: KindNestedArchive}
)

// String returns a short description, e.g. "image/png" or "text/json".
func (c ContentKind) String() string {
	switch {
	case c.Kind == KindImage && c.Image != ImageUnknown:
		return c.Image.MIME()
	case c.Kind == KindPlainText && c.JSON:
		return "text/json"
	default:
		return c.Kind.String()
	}
}

// IconClass returns the icon hint a user interface shows next to the entry.
func (c ContentKind) IconClass() string {
	switch c.Kind {
	case KindNestedArchive:
		return "archive-icon"
	case KindImage:
		return "image-icon"
	case KindPlainText:
		return "text-icon"
	default:
		return ""
	}
}

// ImageFormat is the format hint of an image.
type ImageFormat uint8

const (
	ImageUnknown ImageFormat = iota
	ImagePNG
	ImageJPEG
	ImageGIF
	ImageBMP
	ImageWebP
)

// MIME returns the mime type of the image format.
func (f ImageFormat) MIME() string {
	switch f {
	case ImagePNG:
		return "image/png"
	case ImageJPEG:
		return "image/jpeg"
	case ImageGIF:
		return "image/gif"
	case ImageBMP:
		return "image/bmp"
	case ImageWebP:
		return "image/webp"
	default:
		return mimeOctetStream
	}
}

// String returns the short name of the image format.
func (f ImageFormat) String() string {
	switch f {
	case ImagePNG:
		return "png"
	case ImageJPEG:
		return "jpeg"
	case ImageGIF:
		return "gif"
	case ImageBMP:
		return "bmp"
	case ImageWebP:
		return "webp"
	default:
		return "unknown"
	}
}

const mimeOctetStream = "application/octet-stream"

// imageExtensions maps file extensions to the image format they imply.
var imageExtensions = map[string]ImageFormat{
	"jpg":  ImageJPEG,
	"jpeg": ImageJPEG,
	"png":  ImagePNG,
	"gif":  ImageGIF,
	"bmp":  ImageBMP,
	"webp": ImageWebP,
}

// MIMEType returns the mime type implied by the extension of name, or
// application/octet-stream for unknown extensions.
func MIMEType(name string) string {
	if f, ok := imageExtensions[extension(name)]; ok {
		return f.MIME()
	}
	return mimeOctetStream
}

// extension returns the lower case extension of name without the leading dot.
func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}
