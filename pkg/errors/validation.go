package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateRouteKey validates the final path segment of a collection name
// before it is put into a navigation URL.
//
//   - No empty keys
//   - No path separators or traversal sequences
//   - No control characters
//   - Maximum length of 256 characters
func ValidateRouteKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "route key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "route key too long (max 256 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "route key contains invalid control characters")
		}
	}
	if key == "." || key == ".." || strings.ContainsAny(key, "/\\?#") {
		return New(ErrCodeInvalidInput, "route key contains invalid characters: %q", key)
	}
	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host, as needed for the console base URL and link prefixes.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
