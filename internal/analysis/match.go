package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tickerlens/tickerlens/pkg/models"
)

var (
	legalSuffixExpr = regexp.MustCompile(`(?i)\b(Inc|LLC|Corp|Corporation)\b`)
	spaceRunExpr    = regexp.MustCompile(`\s+`)
)

// NormalizeName strips legal-entity suffixes from a company display
// name and collapses the surrounding whitespace. The result may be
// empty when the name consisted only of suffixes.
func NormalizeName(name string) string {
	cleaned := legalSuffixExpr.ReplaceAllString(name, "")
	return strings.TrimSpace(spaceRunExpr.ReplaceAllString(cleaned, " "))
}

// FindMentions returns the sentences mentioning the company, trimmed and
// in original order. A sentence matches when it contains the ticker or
// the normalized company name as a case-insensitive whole-word token.
// When the normalized name is empty, name matching is skipped entirely
// so an empty pattern never degenerates into matching everything.
func FindMentions(sentences []string, company models.Company) ([]string, error) {
	tickerExpr, err := wholeWordPattern(company.Ticker)
	if err != nil {
		return nil, fmt.Errorf("ticker pattern for %s: %w", company.Ticker, err)
	}

	var nameExpr *regexp.Regexp
	if name := NormalizeName(company.Name); name != "" {
		nameExpr, err = wholeWordPattern(name)
		if err != nil {
			return nil, fmt.Errorf("name pattern for %s: %w", company.Ticker, err)
		}
	}

	var mentions []string
	for _, s := range sentences {
		if tickerExpr.MatchString(s) || (nameExpr != nil && nameExpr.MatchString(s)) {
			mentions = append(mentions, strings.TrimSpace(s))
		}
	}
	return mentions, nil
}

func wholeWordPattern(token string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(token) + `\b`)
}
