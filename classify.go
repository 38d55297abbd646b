// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"strings"
)

// genericImageExtension marks an image whose format is only known from its magic bytes.
const genericImageExtension = "img"

// textExtensions are the extensions of files rendered as text.
var textExtensions = map[string]bool{
	"txt":  true,
	"json": true,
	"js":   true,
	"html": true,
	"css":  true,
	"md":   true,
	"xml":  true,
	"csv":  true,
}

// imageSignature is a magic byte check for one image format.
type imageSignature struct {
	Format      ImageFormat
	HeaderCheck headerCheck
}

// headerCheck is a function that checks if the given header matches the expected magic bytes.
type headerCheck func([]byte) bool

// imageSignatures are probed in this order, the first match wins.
var imageSignatures = []imageSignature{
	{ImagePNG, func(h []byte) bool { return matchesMagicBytes(h, 0, [][]byte{{0x89, 0x50, 0x4E, 0x47}}) }},
	{ImageJPEG, func(h []byte) bool { return matchesMagicBytes(h, 0, [][]byte{{0xFF, 0xD8, 0xFF}}) }},
	{ImageGIF, func(h []byte) bool { return matchesMagicBytes(h, 0, [][]byte{{0x47, 0x49, 0x46, 0x38}}) }},
	{ImageBMP, func(h []byte) bool { return matchesMagicBytes(h, 0, [][]byte{{0x42, 0x4D}}) }},
	{ImageWebP, isWebP},
}

// isWebP checks for a RIFF container carrying the WEBP tag at offset 8.
func isWebP(header []byte) bool {
	return matchesMagicBytes(header, 0, [][]byte{[]byte("RIFF")}) &&
		matchesMagicBytes(header, 8, [][]byte{[]byte("WEBP")})
}

// SniffImage returns the image format whose signature matches header, or ImageUnknown.
func SniffImage(header []byte) ImageFormat {
	for _, sig := range imageSignatures {
		if sig.HeaderCheck(header) {
			return sig.Format
		}
	}
	return ImageUnknown
}

// Classifier maps entry names and leading bytes to a [ContentKind].
type Classifier struct {
	suffixes []string
}

// NewClassifier returns a classifier that treats names ending with one of the
// suffixes as nested archives. Suffixes are matched case-insensitive.
func NewClassifier(suffixes ...string) *Classifier {
	c := &Classifier{}
	for _, s := range suffixes {
		if len(s) > 0 {
			c.suffixes = append(c.suffixes, strings.ToLower(s))
		}
	}
	return c
}

// defaultClassifier recognizes lz4 files as nested archives.
var defaultClassifier = NewClassifier("." + FormatLZ4)

// Classify classifies name and sniff with the default archive suffix ".lz4".
func Classify(name string, sniff []byte) ContentKind {
	return defaultClassifier.Classify(name, sniff)
}

// Classify returns the content kind of an entry. sniff holds the leading bytes of the
// entry (at least [SniffLength] to detect every signature) and may be nil. The archive
// suffix takes priority over every other check, and an unrecognized generic image
// falls back to binary.
func (c *Classifier) Classify(name string, sniff []byte) ContentKind {
	if c.IsArchive(name) {
		return kindNestedArchive
	}

	ext := extension(name)
	if f, ok := imageExtensions[ext]; ok {
		return ContentKind{Kind: KindImage, Image: f}
	}
	if ext == genericImageExtension {
		// the format of an embedded data url is read from its header when previewed
		if bytes.HasPrefix(sniff, []byte(dataURLPrefix)) {
			return ContentKind{Kind: KindImage}
		}
		if f := SniffImage(sniff); f != ImageUnknown {
			return ContentKind{Kind: KindImage, Image: f}
		}
		return kindBinary
	}

	if textExtensions[ext] {
		return ContentKind{Kind: KindPlainText, JSON: ext == "json"}
	}

	return kindBinary
}

// IsArchive reports whether name ends with one of the archive suffixes.
func (c *Classifier) IsArchive(name string) bool {
	return c.archiveSuffix(name) != ""
}

// TrimArchiveSuffix removes the longest matching archive suffix from the end of name.
// Names without a suffix are returned unchanged, a name that is only a suffix becomes
// decompressed-content.
func (c *Classifier) TrimArchiveSuffix(name string) string {
	suffix := c.archiveSuffix(name)
	trimmed := name[:len(name)-len(suffix)]
	if trimmed == "" {
		return defaultDecompressionName
	}
	return trimmed
}

// archiveSuffix returns the longest archive suffix name ends with, or "".
func (c *Classifier) archiveSuffix(name string) string {
	lower := strings.ToLower(name)
	var longest string
	for _, s := range c.suffixes {
		if strings.HasSuffix(lower, s) && len(s) > len(longest) {
			longest = s
		}
	}
	return longest
}
