package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/address"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/names"
)

// MinNameLength is the shortest primary name accepted without review.
const MinNameLength = 10

// maxRawText bounds the raw text kept on a failed entry.
const maxRawText = 500

var (
	addressUnknownRe = regexp.MustCompile(`(?i)[, \t]*\baddress[ \t]+unknown\b[, \t]*`)
	digitRunRe       = regexp.MustCompile(`\d{3,}`)
	looseZipRe       = regexp.MustCompile(`\b\d{4,}(?:-\d+)?\s*$`)
)

// flagRule adds reason when check reports true.
type flagRule struct {
	reason string
	check  func(e *models.PartyEntry, addrText string) bool
}

var flagRules = []flagRule{
	{"missing address", func(e *models.PartyEntry, addrText string) bool {
		return !e.AddressUnknown && e.MailingAddress == "" && e.City == ""
	}},
	{"invalid state", func(e *models.PartyEntry, addrText string) bool {
		return addrText != "" && e.State == "" && (e.ZipCode != "" || e.City != "")
	}},
	{"malformed ZIP", func(e *models.PartyEntry, addrText string) bool {
		return addrText != "" && e.ZipCode == "" && looseZipRe.MatchString(addrText)
	}},
	{"missing ZIP", func(e *models.PartyEntry, addrText string) bool {
		return addrText != "" && e.ZipCode == "" && !looseZipRe.MatchString(addrText)
	}},
	{fmt.Sprintf("name shorter than %d characters", MinNameLength), func(e *models.PartyEntry, _ string) bool {
		return len([]rune(e.PrimaryName)) < MinNameLength
	}},
	{"name contains digits, possible address leakage", func(e *models.PartyEntry, _ string) bool {
		return digitRunRe.MatchString(e.PrimaryName)
	}},
}

// parseChunk turns one numbered chunk into a PartyEntry. It may panic on
// pathological input; callers wrap it with safeParse.
func parseChunk(c Chunk) models.PartyEntry {
	entry := models.PartyEntry{
		EntryNumber:   c.Label(),
		UnknownCohort: c.Unknown,
		RawText:       c.Text,
	}

	text := c.Text
	if addressUnknownRe.MatchString(text) {
		entry.AddressUnknown = true
		text = addressUnknownRe.ReplaceAllString(text, " ")
	}
	if c.Unknown {
		entry.AddressUnknown = true
	}

	text, notes, signals := StripAnnotations(text)
	entry.Signals = signals

	name, addrText := SplitNameAddress(text)
	entry.PrimaryName = strings.Trim(name, ",.; ")
	entry.EntityType = Classify(entry.PrimaryName)

	if addrText != "" {
		a := address.Parse(addrText)
		entry.MailingAddress = a.Street
		entry.MailingAddress2 = a.Street2
		entry.City = a.City
		entry.State = a.State
		entry.ZipCode = a.Zip
	}

	if entry.EntityType == models.EntityIndividual {
		pn := names.ExtractParser.ParseIndividual(entry.PrimaryName)
		entry.FirstName = pn.First
		entry.MiddleName = pn.Middle
		entry.LastName = pn.Last
		entry.Suffix = pn.Suffix
	}

	entry.Notes = strings.Join(notes, "; ")

	var reasons []string
	if entry.PrimaryName == "" {
		reasons = append(reasons, "missing name")
	}
	for _, r := range flagRules {
		if r.check(&entry, addrText) {
			reasons = append(reasons, r.reason)
		}
	}
	if len(reasons) > 0 {
		entry.Flagged = true
		entry.FlagReason = strings.Join(reasons, "; ")
	}
	return entry
}

// safeParse runs parse and converts a panic into a flagged placeholder that
// keeps the entry number and truncated raw text.
func safeParse(c Chunk, parse func(Chunk) models.PartyEntry) (entry models.PartyEntry) {
	defer func() {
		if r := recover(); r != nil {
			raw := c.Text
			if len([]rune(raw)) > maxRawText {
				raw = string([]rune(raw)[:maxRawText])
			}
			entry = models.PartyEntry{
				EntryNumber:   c.Label(),
				PrimaryName:   firstLine(raw),
				EntityType:    models.EntityIndividual,
				UnknownCohort: c.Unknown,
				RawText:       raw,
				Flagged:       true,
				FlagReason:    "entry could not be parsed",
				ErrorMessage:  fmt.Sprint(r),
			}
		}
	}()
	return parse(c)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
