package geolocate

import (
	"regexp"
	"strings"
)

// locationPatterns are the fallback regex families, in fixed priority order:
// "City, State" pairs, numbered street addresses, area phrases, landmark
// phrases, then generic preposition + capitalized phrase. The first capture
// group is the candidate; patterns without a group contribute the full match.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)*,\s(?:[A-Z]{2}|[A-Z][a-z]+))\b`),
	regexp.MustCompile(`\b(\d{1,5}\s(?:[A-Z][a-zA-Z]+\s)+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln))\b`),
	regexp.MustCompile(`(?i)\b(?:in|at|near|around)\s+(?:the\s+)?([A-Za-z][A-Za-z ]*?\s(?:area|district|region|zone|neighborhood))\b`),
	regexp.MustCompile(`\b(?:at|near)\s+(?:the\s+)?([A-Z][a-zA-Z]*(?:\s[A-Z][a-zA-Z]*)*\s(?:Park|Bridge|Center|Centre|Mall|School|Hospital|Station|Stadium|Airport|Shelter))\b`),
	regexp.MustCompile(`\b(?:in|at|near)\s+([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)*)\b`),
}

// patternStopWords are candidates that look like locations to the generic
// pattern but never are.
var patternStopWords = map[string]struct{}{
	"the":       {},
	"this":      {},
	"that":      {},
	"there":     {},
	"here":      {},
	"where":     {},
	"emergency": {},
	"urgent":    {},
	"help":      {},
	"please":    {},
	"danger":    {},
}

// matchPatterns applies every fallback pattern to text, collects all matches
// in discovery order, removes duplicates and stop words, and returns the
// first surviving candidate. Discovery order wins: candidates are not
// re-ranked by specificity.
func matchPatterns(text string) (string, bool) {
	var candidates []string
	seen := make(map[string]struct{})

	for _, re := range locationPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if len(m) > 1 {
				candidate = m[1]
			}
			candidate = strings.TrimSpace(candidate)
			if candidate == "" {
				continue
			}

			key := strings.ToLower(candidate)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, stop := patternStopWords[key]; stop {
				continue
			}
			candidates = append(candidates, candidate)
		}
	}

	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}
