// Package quality defines the fixed catalog of audio quality tiers offered
// for download. The catalog is process-wide constant data.
package quality

import "strings"

// Tier describes a single selectable audio quality.
type Tier struct {
	Code        string
	Name        string
	Description string
}

// Ask is the configuration sentinel meaning "prompt the user per download".
const Ask = "ask"

var tiers = []Tier{
	{Code: "standard", Name: "Standard", Description: "128kbps MP3"},
	{Code: "exhigh", Name: "Extra High", Description: "320kbps MP3"},
	{Code: "lossless", Name: "Lossless", Description: "FLAC"},
	{Code: "hires", Name: "Hi-Res", Description: "24bit/96kHz"},
	{Code: "sky", Name: "Immersive Surround", Description: "spatial audio"},
	{Code: "jyeffect", Name: "HD Surround", Description: "surround effect"},
	{Code: "jymaster", Name: "Ultra Master", Description: "master tape"},
}

// Tiers returns the ordered tier catalog. The returned slice must not be mutated.
func Tiers() []Tier {
	return tiers
}

// Count returns the number of tiers in the catalog.
func Count() int {
	return len(tiers)
}

// ByCode looks up a tier by its wire code.
func ByCode(code string) (Tier, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, t := range tiers {
		if t.Code == code {
			return t, true
		}
	}
	return Tier{}, false
}

// ByOrdinal looks up a tier by its 1-based menu position.
func ByOrdinal(n int) (Tier, bool) {
	if n < 1 || n > len(tiers) {
		return Tier{}, false
	}
	return tiers[n-1], true
}

// ValidCode reports whether code names a known tier or the Ask sentinel.
func ValidCode(code string) bool {
	if strings.EqualFold(strings.TrimSpace(code), Ask) {
		return true
	}
	_, ok := ByCode(code)
	return ok
}
