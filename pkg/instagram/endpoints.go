package instagram

import (
	"fmt"
	"strings"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"
)

// PostURL constructs the page URL for a post shortcode
func PostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/", BaseURL, shortcode)
}

// IsValidShortcode checks whether a shortcode looks like an Instagram
// post identifier
func IsValidShortcode(shortcode string) bool {
	if shortcode == "" || len(shortcode) > 40 {
		return false
	}

	for _, char := range shortcode {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeShortcode extracts a bare shortcode from user input that may
// be a full post URL or carry trailing separators
func SanitizeShortcode(input string) string {
	s := input

	// Accept full post URLs
	for _, prefix := range []string{BaseURL + "/p/", BaseURL + "/reel/", "/p/", "/reel/"} {
		if len(s) > len(prefix) && s[:len(prefix)] == prefix {
			s = s[len(prefix):]
			break
		}
	}

	// Pasted URLs often carry a query string, e.g. ?img_index=2
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}

	for len(s) > 0 && (s[len(s)-1] == '/' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}

	return s
}
