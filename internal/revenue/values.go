package revenue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	slashDateRe   = regexp.MustCompile(`^(\d{1,2})/(?:(\d{1,2})/)?(\d{2}|\d{4})$`)
	isoMonthRe    = regexp.MustCompile(`^(\d{4})-(\d{2})(?:-\d{2})?$`)
	dashMonthRe   = regexp.MustCompile(`^(\d{1,2})-(\d{4})$`)
	compactDateRe = regexp.MustCompile(`^(\d{4})(\d{2})$`)
	namedMonthRe  = regexp.MustCompile(`(?i)^([A-Z]{3})[A-Z]*[\s.-]*'?(\d{2}|\d{4})$`)
	amountRe      = regexp.MustCompile(`^\(?-?\$?\s*[\d,]*\.?\d+\)?-?$`)
)

var monthNumbers = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// SalesMonth normalizes a production date token to the first of its month
// as YYYY-MM-01. ok is false when s is not a recognizable date.
func SalesMonth(s string) (string, bool) {
	s = strings.TrimSpace(s)
	var year, month int
	switch {
	case slashDateRe.MatchString(s):
		m := slashDateRe.FindStringSubmatch(s)
		month, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[3])
	case isoMonthRe.MatchString(s):
		m := isoMonthRe.FindStringSubmatch(s)
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
	case dashMonthRe.MatchString(s):
		m := dashMonthRe.FindStringSubmatch(s)
		month, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[2])
	case compactDateRe.MatchString(s):
		m := compactDateRe.FindStringSubmatch(s)
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
	case namedMonthRe.MatchString(s):
		m := namedMonthRe.FindStringSubmatch(s)
		n, ok := monthNumbers[strings.ToUpper(m[1])]
		if !ok {
			return "", false
		}
		month = n
		year, _ = strconv.Atoi(m[2])
	default:
		return "", false
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || year < 1900 || year > 2200 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-01", year, month), true
}

// ParseAmount reads a statement number: thousands separators, a leading
// dollar sign, and parentheses or a trailing minus for negatives. It
// returns nil for anything else.
func ParseAmount(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" || !amountRe.MatchString(s) {
		return nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		neg = !neg
		s = strings.TrimSuffix(s, "-")
	}
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if neg {
		v = -v
	}
	return &v
}

func abs(p *float64) *float64 {
	if p == nil || *p >= 0 {
		return p
	}
	v := -*p
	return &v
}

func addAmount(dst **float64, v float64) {
	if *dst == nil {
		*dst = &v
		return
	}
	sum := **dst + v
	*dst = &sum
}
