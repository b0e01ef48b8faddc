// Package preview encodes the document text for delivery to a rendering
// surface.
package preview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Encode returns text as a quoted string literal that is safe to splice into
// a script, an HTML attribute or an SSE data line: carriage returns are
// dropped; quotes, backslashes, newlines and other control characters are
// escaped; <, >, &, U+2028 and U+2029 are \u-escaped.
func Encode(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	// json.Marshal of a string cannot fail.
	out, _ := json.Marshal(text)
	return string(out)
}

// Decode reverses Encode.
func Decode(payload string) (string, error) {
	var text string
	if err := json.Unmarshal([]byte(payload), &text); err != nil {
		return "", fmt.Errorf("preview: decode payload: %w", err)
	}
	return text, nil
}

// Script wraps payload in the call the HTML preview shell evaluates.
func Script(payload string) string {
	return "updateContent(" + payload + ");"
}
