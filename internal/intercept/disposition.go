package intercept

import (
	"net/url"
	"regexp"
	"strings"
)

// Patterns for the two filename forms a Content-Disposition header can
// carry: the RFC 5987 extended form is preferred when both are present.
var (
	extFilenamePattern    = regexp.MustCompile(`(?i)filename\*\s*=\s*utf-8''([^;]+)`)
	quotedFilenamePattern = regexp.MustCompile(`(?i)filename\s*=\s*"([^"]*)"`)
	bareFilenamePattern   = regexp.MustCompile(`(?i)filename\s*=\s*([^;\s]+)`)
)

// Filename extracts the filename parameter from a Content-Disposition
// header value, percent-decoding the UTF-8 extended form. ok is false when
// the header is empty or carries no filename.
func Filename(header string) (name string, ok bool) {
	if header == "" {
		return "", false
	}

	if m := extFilenamePattern.FindStringSubmatch(header); m != nil {
		decoded, err := url.PathUnescape(strings.TrimSpace(m[1]))
		if err == nil && decoded != "" {
			return decoded, true
		}
	}
	if m := quotedFilenamePattern.FindStringSubmatch(header); m != nil {
		return m[1], m[1] != ""
	}
	if m := bareFilenamePattern.FindStringSubmatch(header); m != nil && m[1] != "" {
		return m[1], true
	}
	return "", false
}

// IsAttachment reports whether a Content-Disposition header value marks the
// response body as a downloadable file.
func IsAttachment(header string) bool {
	return strings.Contains(strings.ToLower(header), "attachment")
}
