package address

import "strings"

// stateNames maps every accepted 2-letter code to its full name. Codes
// outside this set are never treated as states.
var stateNames = map[string]string{
	"AL": "ALABAMA", "AK": "ALASKA", "AZ": "ARIZONA", "AR": "ARKANSAS",
	"CA": "CALIFORNIA", "CO": "COLORADO", "CT": "CONNECTICUT", "DE": "DELAWARE",
	"FL": "FLORIDA", "GA": "GEORGIA", "HI": "HAWAII", "ID": "IDAHO",
	"IL": "ILLINOIS", "IN": "INDIANA", "IA": "IOWA", "KS": "KANSAS",
	"KY": "KENTUCKY", "LA": "LOUISIANA", "ME": "MAINE", "MD": "MARYLAND",
	"MA": "MASSACHUSETTS", "MI": "MICHIGAN", "MN": "MINNESOTA", "MS": "MISSISSIPPI",
	"MO": "MISSOURI", "MT": "MONTANA", "NE": "NEBRASKA", "NV": "NEVADA",
	"NH": "NEW HAMPSHIRE", "NJ": "NEW JERSEY", "NM": "NEW MEXICO", "NY": "NEW YORK",
	"NC": "NORTH CAROLINA", "ND": "NORTH DAKOTA", "OH": "OHIO", "OK": "OKLAHOMA",
	"OR": "OREGON", "PA": "PENNSYLVANIA", "RI": "RHODE ISLAND", "SC": "SOUTH CAROLINA",
	"SD": "SOUTH DAKOTA", "TN": "TENNESSEE", "TX": "TEXAS", "UT": "UTAH",
	"VT": "VERMONT", "VA": "VIRGINIA", "WA": "WASHINGTON", "WV": "WEST VIRGINIA",
	"WI": "WISCONSIN", "WY": "WYOMING", "DC": "DISTRICT OF COLUMBIA",
	"PR": "PUERTO RICO", "VI": "VIRGIN ISLANDS", "GU": "GUAM",
	"AS": "AMERICAN SAMOA", "MP": "NORTHERN MARIANA ISLANDS",
}

// nameToState is the reverse of stateNames.
var nameToState = func() map[string]string {
	m := make(map[string]string, len(stateNames))
	for code, name := range stateNames {
		m[name] = code
	}
	return m
}()

// IsValidState reports whether code is a 2-letter code in the fixed set.
func IsValidState(code string) bool {
	_, ok := stateNames[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// NormalizeState returns the upper-cased 2-letter code for a state code or
// full state name. ok is false for anything else, including 2-letter tokens
// outside the fixed set.
func NormalizeState(s string) (code string, ok bool) {
	upper := strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ".")))
	if len(upper) == 2 {
		if _, found := stateNames[upper]; found {
			return upper, true
		}
		return "", false
	}
	if c, found := nameToState[strings.Join(strings.Fields(upper), " ")]; found {
		return c, true
	}
	return "", false
}

// States returns every accepted 2-letter code.
func States() []string {
	out := make([]string, 0, len(stateNames))
	for code := range stateNames {
		out = append(out, code)
	}
	return out
}
