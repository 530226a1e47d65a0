package ticker

import (
	"regexp"
	"strings"
)

var (
	cashtagPattern = regexp.MustCompile(`\$([A-Za-z]{2,10})\b`)
	bareCapPattern = regexp.MustCompile(`\b([A-Z]{2,6})\b`)
)

// Common all-caps words that look like tickers but are not.
var stopwords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "NOT": true, "YOU": true,
	"ALL": true, "NEW": true, "NOW": true, "GET": true, "ITS": true,
	"ARE": true, "WAS": true, "CAN": true, "OUT": true, "BUY": true,
	"HODL": true, "GM": true, "WAGMI": true, "NFT": true, "DM": true,
	"AMA": true, "IMO": true, "FYI": true, "LOL": true, "ATH": true,
}

// FirstTicker scans ranked cast texts in strict rank order and returns the
// first token symbol it finds, uppercased without the leading dollar sign.
// Within a single post a cashtag like $SOCIAL beats a bare all-caps word,
// since bare caps are noisy on social text; across posts the higher rank
// always wins. Returns "" when nothing matches.
func FirstTicker(texts []string) string {
	for _, text := range texts {
		if m := cashtagPattern.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[1])
		}
		for _, m := range bareCapPattern.FindAllStringSubmatch(text, -1) {
			if !stopwords[m[1]] {
				return m[1]
			}
		}
	}
	return ""
}
