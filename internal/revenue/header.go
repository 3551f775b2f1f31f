package revenue

import (
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/models"
)

// headerLabels terminates a captured header value at the next label on the
// same line.
const headerLabels = `(?:\b(?:check|owner)\s*#|\b(?:check\s*(?:no|number|date|amount|amt)|owner\s*(?:no|number|name|id)|payor|operator|remit(?:ter)?|date|amount)\b|$)`

var (
	payorRe       = regexp.MustCompile(`(?i)\b(?:payor|operator|remitter)\s*(?:name)?\s*:\s*(.+?)\s*` + headerLabels)
	checkNumberRe = regexp.MustCompile(`(?i)\bcheck\s*(?:#|no\.?|number)\s*:?\s*([A-Z0-9-]+)`)
	checkDateRe   = regexp.MustCompile(`(?i)\bcheck\s*date\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`)
	checkAmountRe = regexp.MustCompile(`(?i)\bcheck\s*(?:amount|amt)\s*:?\s*(\(?-?\$?\s*[\d,]+\.\d{2}\)?)`)
	ownerNumberRe = regexp.MustCompile(`(?i)\bowner\s*(?:#|no\.?|number|id)\s*:?\s*([A-Z0-9-]+)`)
	ownerNameRe   = regexp.MustCompile(`(?i)\bowner\s*name\s*:\s*(.+?)\s*` + headerLabels)
)

// scrapeHeader fills statement header fields from the first labelled line
// that carries each one.
func scrapeHeader(st *models.RevenueStatement, lines []string) {
	for _, line := range lines {
		if st.Payor == "" {
			st.Payor = capture(payorRe, line)
		}
		if st.CheckNumber == "" {
			st.CheckNumber = capture(checkNumberRe, line)
		}
		if st.CheckDate == "" {
			st.CheckDate = capture(checkDateRe, line)
		}
		if st.CheckAmount == nil {
			if v := capture(checkAmountRe, line); v != "" {
				st.CheckAmount = ParseAmount(v)
			}
		}
		if st.OwnerNumber == "" {
			st.OwnerNumber = capture(ownerNumberRe, line)
		}
		if st.OwnerName == "" {
			st.OwnerName = capture(ownerNameRe, line)
		}
	}
}

func capture(re *regexp.Regexp, line string) string {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
