// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// jsonIndent is the indentation of pretty printed JSON.
const jsonIndent = "  "

// decodeText decodes data as UTF-8. A byte order mark is removed and invalid
// sequences are replaced by U+FFFD.
func decodeText(data []byte) (string, error) {
	b, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatJSON pretty prints text with an indentation of two spaces. Text that is a
// quoted string literal is unquoted first, to recover JSON that was encoded as string.
// The order of object keys is kept. If text is no valid JSON, it is returned
// unchanged together with the parse error.
func FormatJSON(text string) (string, error) {
	clean := strings.TrimSpace(text)
	if len(clean) >= 2 && strings.HasPrefix(clean, `"`) && strings.HasSuffix(clean, `"`) {
		clean = strings.ReplaceAll(clean[1:len(clean)-1], `\"`, `"`)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(clean), "", jsonIndent); err != nil {
		return text, err
	}
	return buf.String(), nil
}
