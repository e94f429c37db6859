package common

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

// feedNamePattern matches subreddit style names.
var feedNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_]{1,20}$`)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// SanitizeFeedName cleans up a feed name typed on the command line.
// Accepts "pics", "r/pics", "/r/pics/" and stray copy-paste punctuation.
func SanitizeFeedName(raw string) string {
	cleaned := strings.TrimSpace(raw)

	trailingChars := []string{",", ".", ")", "]", "\"", "'", ";", "/"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	leadingChars := []string{"(", "[", "\"", "'", "/"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	cleaned = strings.TrimPrefix(cleaned, "r/")
	return strings.TrimSpace(cleaned)
}

// SanitizeFeedNames sanitizes all names and returns (valid, invalid).
// Duplicates are dropped, keeping the first occurrence. Feed URLs are
// passed through untouched for sources that take URLs.
func SanitizeFeedNames(names []string, allowURLs bool) ([]string, []string) {
	valid := make([]string, 0, len(names))
	var invalid []string
	seen := make(map[string]bool)

	for _, raw := range names {
		var cleaned string
		if allowURLs {
			cleaned = strings.TrimSpace(raw)
			if !strings.HasPrefix(cleaned, "http://") && !strings.HasPrefix(cleaned, "https://") {
				invalid = append(invalid, raw)
				continue
			}
		} else {
			cleaned = SanitizeFeedName(raw)
			if !feedNamePattern.MatchString(cleaned) {
				invalid = append(invalid, raw)
				continue
			}
		}

		key := strings.ToLower(cleaned)
		if seen[key] {
			continue
		}
		seen[key] = true
		valid = append(valid, cleaned)
	}

	return valid, invalid
}
