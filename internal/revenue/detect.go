package revenue

import "strings"

// Format names a statement family with its own row reconstruction strategy.
type Format string

const (
	FormatPositional     Format = "positional"
	FormatEnergyLink     Format = "energylink"
	FormatEnergyTransfer Format = "energy_transfer"
)

// DetectFormat picks a parser from the statement text. Statements that do
// not name a known legacy family use positional parsing.
func DetectFormat(text string) Format {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "ENERGYLINK") || strings.Contains(upper, "ENERGY LINK"):
		return FormatEnergyLink
	case strings.Contains(upper, "ENERGY TRANSFER"):
		return FormatEnergyTransfer
	default:
		return FormatPositional
	}
}
