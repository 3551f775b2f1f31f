package title

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stwalsh4118/landman/api/internal/address"
	"github.com/stwalsh4118/landman/api/internal/extract"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/names"
	"github.com/stwalsh4118/landman/api/internal/textnorm"
)

var (
	fractionRe = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
	percentRe  = regexp.MustCompile(`^([\d.]+)\s*%$`)
	unknownRe  = regexp.MustCompile(`(?i)^(?:unknown|unknown\s+owners?|owner\s+unknown)$`)
	careOfRe   = regexp.MustCompile(`(?i)^\s*(?:c/o|care of|attn:?)\s`)
)

// titleTypes are checked after the trusts, estates and heirs rules and
// before the company patterns they would otherwise fall into.
var titleTypes = []struct {
	entityType models.EntityType
	re         *regexp.Regexp
}{
	{models.EntityFoundation, regexp.MustCompile(`(?i)\bfoundation\b`)},
	{models.EntityUniversity, regexp.MustCompile(`(?i)\b(?:university|college|board\s+of\s+regents)\b`)},
	{models.EntityChurch, regexp.MustCompile(`(?i)\b(?:church|diocese|parish|ministr(?:y|ies)|congregation)\b`)},
	{models.EntityMineralCo, regexp.MustCompile(`(?i)\b(?:minerals?|royalt(?:y|ies)|mineral\s+(?:co|company|fund))\b`)},
}

// ClassifyOwner returns the entity type of a title owner name.
func ClassifyOwner(name string) models.EntityType {
	name = strings.TrimSpace(name)
	if name == "" || unknownRe.MatchString(name) {
		return models.EntityUnknown
	}
	base := extract.Classify(name)
	switch base {
	case models.EntityTrust, models.EntityEstate, models.EntityUnknownHeirs, models.EntityGovernment:
		return base
	}
	for _, t := range titleTypes {
		if t.re.MatchString(name) {
			return t.entityType
		}
	}
	return base
}

// ParseInterest reads an ownership fraction written as a decimal, a
// fraction such as 1/8, or a percentage. Bare numbers above 1 are taken
// as percentages.
func ParseInterest(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	var v float64
	switch {
	case fractionRe.MatchString(s):
		m := fractionRe.FindStringSubmatch(s)
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return nil
		}
		v = num / den
	case percentRe.MatchString(s):
		p, err := strconv.ParseFloat(percentRe.FindStringSubmatch(s)[1], 64)
		if err != nil {
			return nil
		}
		v = p / 100
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		v = f
		if v > 1 && v <= 100 {
			v /= 100
		}
	}
	if v < 0 || v > 1 {
		return nil
	}
	return &v
}

// parseNumber reads an acreage figure.
func parseNumber(s string) *float64 {
	s = strings.NewReplacer(",", "", "$", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// newOwner builds an owner from a raw name and the address and note lines
// that accompany it.
func newOwner(row int, rawName string, addrLines, notes []string) models.OwnerEntry {
	name, annotationNotes, signals := extract.StripAnnotations(textnorm.CollapseSpace(rawName))
	name = strings.Trim(textnorm.CollapseSpace(names.Clean(name)), ",.; ")

	o := models.OwnerEntry{
		RowNumber:  row,
		FullName:   name,
		EntityType: ClassifyOwner(name),
		Signals:    signals,
	}
	if len(addrLines) > 0 {
		a := address.Parse(strings.Join(addrLines, ", "))
		o.Address = a.Street
		o.Address2 = a.Street2
		o.City = a.City
		o.State = a.State
		o.Zip = a.Zip
	}
	if o.EntityType == models.EntityIndividual {
		pn := names.TitleParser.ParseIndividual(name)
		o.FirstName = pn.First
		o.MiddleName = pn.Middle
		o.LastName = pn.Last
		o.Suffix = pn.Suffix
	}
	o.Notes = joinNotes(append(annotationNotes, notes...)...)
	return o
}

// fromParty converts an Exhibit-A style entry into an owner row.
func fromParty(row int, e models.PartyEntry) models.OwnerEntry {
	o := models.OwnerEntry{
		RowNumber:  row,
		FullName:   e.PrimaryName,
		EntityType: ClassifyOwner(e.PrimaryName),
		Address:    e.MailingAddress,
		Address2:   e.MailingAddress2,
		City:       e.City,
		State:      e.State,
		Zip:        e.ZipCode,
		Notes:      e.Notes,
		Signals:    e.Signals,
	}
	if o.EntityType == models.EntityIndividual {
		pn := names.TitleParser.ParseIndividual(o.FullName)
		o.FirstName, o.MiddleName, o.LastName, o.Suffix = pn.First, pn.Middle, pn.Last, pn.Suffix
	}
	if e.Flagged {
		o.FlagReason = e.FlagReason
	}
	return o
}

// isAddressLine reports whether a cell line belongs to the mailing address.
func isAddressLine(line string) bool {
	return address.LooksLikeStreet(line) || address.IsPOBox(line) ||
		address.IsUnitLine(line) || address.IsCityStateZip(line)
}

// splitCellLines separates the lines after a name into address lines and
// notes. Care-of lines are kept as notes.
func splitCellLines(lines []string) (addr, notes []string) {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		switch {
		case l == "":
		case careOfRe.MatchString(l):
			notes = append(notes, l)
		case isAddressLine(l):
			addr = append(addr, l)
		default:
			notes = append(notes, l)
		}
	}
	return addr, notes
}

func joinNotes(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "; ")
}

func cellLines(cell string) []string {
	raw := strings.Split(strings.ReplaceAll(cell, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
