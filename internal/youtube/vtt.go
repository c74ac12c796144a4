package youtube

import (
	"regexp"
	"strings"
)

// Auto-generated caption cues carry a positioning prefix before the
// spoken text; cue timing lines without it are dropped entirely.
var cuePrefixExpr = regexp.MustCompile(`^[\d:.,\s>-]+align:start position:\d+%\s*`)

// CleanTranscript turns raw WebVTT caption content into a single clean
// readable string. Header and timing lines are removed, positioning
// prefixes are stripped, and consecutive duplicate lines (auto-captions
// repeat each cue as it scrolls) are de-duplicated while preserving
// first-seen order.
func CleanTranscript(raw string) string {
	if raw == "" {
		return ""
	}

	var parts []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Contains(line, "WEBVTT") {
			continue
		}
		if strings.Contains(line, "-->") && !strings.Contains(line, "align:start") {
			continue
		}

		cleaned := strings.TrimSpace(cuePrefixExpr.ReplaceAllString(line, ""))
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		parts = append(parts, cleaned)
	}

	return strings.Join(parts, " ")
}
