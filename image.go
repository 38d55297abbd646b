// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder
	"strings"

	_ "golang.org/x/image/bmp"  // register bmp decoder
	_ "golang.org/x/image/webp" // register webp decoder
)

const (
	// dataURLPrefix marks an image that is embedded as text
	dataURLPrefix = "data:image/"

	// dataURLSniffLength is the number of bytes inspected for dataURLPrefix
	dataURLSniffLength = 30
)

// isDataURL reports whether data starts with an image data URL.
func isDataURL(data []byte) bool {
	return strings.HasPrefix(string(sniff(data, dataURLSniffLength)), dataURLPrefix)
}

// decodeDataURL decodes the Base64 payload after the first comma of an image data URL
// and returns it with the declared mime type.
func decodeDataURL(data []byte) (string, []byte, error) {
	head, payload, found := strings.Cut(string(data), ",")
	if !found {
		return "", nil, errors.New("missing payload separator")
	}

	mime := strings.TrimPrefix(head, "data:")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}

	payload = strings.TrimSpace(payload)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// padding is optional in data urls
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return "", nil, err
		}
	}
	return mime, raw, nil
}

// DecodeImage decodes a rendered image. It returns an [*ImageDisplayError] if r is not
// an image or its payload cannot be displayed, in which case callers render the entry
// with [Previewer.ImageFallback].
func DecodeImage(r *Rendered) (image.Config, error) {
	if r == nil || r.Type != RenderImage {
		return image.Config{}, &ImageDisplayError{Err: errors.New("not an image rendering")}
	}

	img, _, err := image.Decode(bytes.NewReader(r.Data))
	if err != nil {
		return image.Config{}, &ImageDisplayError{MIME: r.MIME, Err: err}
	}

	bounds := img.Bounds()
	return image.Config{
		ColorModel: img.ColorModel(),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}
