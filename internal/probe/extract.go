package probe

import "regexp"

var (
	emailPattern = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	urlPattern   = regexp.MustCompile(`(?i)\bhttps?://[^\s<>'"]+`)

	// phonePattern is intentionally loose; candidates go through real
	// phone validation before anything is scored.
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`)
)

// Candidates holds identifiers extracted from free text, such as a
// pasted listing description or chat transcript.
type Candidates struct {
	Emails []string `json:"emails"`
	URLs   []string `json:"urls"`
	Phones []string `json:"phones"`
}

// ExtractCandidates pulls email addresses, URLs, and phone-like tokens
// out of free text. Each list is deduplicated in first-seen order and
// capped at ten entries.
func ExtractCandidates(text string) *Candidates {
	return &Candidates{
		Emails: uniqueMatches(emailPattern, text, 10),
		URLs:   uniqueMatches(urlPattern, text, 10),
		Phones: uniqueMatches(phonePattern, text, 10),
	}
}

func uniqueMatches(re *regexp.Regexp, text string, limit int) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, m := range re.FindAllString(text, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}
