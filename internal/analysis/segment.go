// Package analysis implements the transcript analysis engine: sentence
// segmentation, company-mention matching, and per-company sentiment
// scoring against a company registry.
package analysis

// Segment splits transcript text into sentence-like units. It splits on
// whitespace immediately following '.' or '?', except where the
// preceding characters look like an abbreviation ("U.S.", "e.g.",
// "Mr."), where over-splitting is the failure mode to avoid. The text
// is padded with one space on each side to stabilize boundary checks.
// Order is preserved and empty pieces are not filtered here.
func Segment(text string) []string {
	padded := " " + text + " "

	var sentences []string
	start := 0
	for i := 1; i < len(padded); i++ {
		if !isSpace(padded[i]) {
			continue
		}
		prev := padded[i-1]
		if prev != '.' && prev != '?' {
			continue
		}
		if looksLikeAbbreviation(padded, i) {
			continue
		}
		sentences = append(sentences, padded[start:i])
		start = i + 1
	}
	sentences = append(sentences, padded[start:])
	return sentences
}

// looksLikeAbbreviation reports whether the characters before the
// whitespace at index i match an abbreviation shape: a short
// letter-dot-letter-dot run ("U.S.", "e.g.") or an uppercase-lowercase
// initial followed by a period ("Mr.").
func looksLikeAbbreviation(s string, i int) bool {
	if i >= 4 && isWordChar(s[i-4]) && s[i-3] == '.' && isWordChar(s[i-2]) {
		return true
	}
	if i >= 3 && isUpper(s[i-3]) && isLower(s[i-2]) && s[i-1] == '.' {
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
