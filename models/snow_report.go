package models

import (
	"regexp"
	"strconv"
	"strings"
)

// InchRange describes a snow depth, either a single measurement or a
// lower/upper range as reported by the resort.
type InchRange struct {
	Inches      *int `json:"inches,omitempty"`
	InchesLower *int `json:"inchesLower,omitempty"`
	InchesUpper *int `json:"inchesUpper,omitempty"`
}

// SnowReport is the opaque blob of snow metrics attached to a resort.
// Stored as JSONB; any section a site does not report stays nil.
// RecentSnow is keyed by trailing-hour window (24, 48, 168): sites that
// report a single "new snow" figure fill only the 24-hour entry.
type SnowReport struct {
	BaseLayer  *InchRange         `json:"baseLayer"`
	RecentSnow map[int]*InchRange `json:"recentSnow"`
	SeasonSnow *InchRange         `json:"seasonSnow"`
}

var notADigit = regexp.MustCompile(`\D+`)

// ParseInchRange turns a depth string like `6 - 12"` (with dubious
// whitespace and unit marks) into an InchRange. Returns nil when no
// number can be recovered.
func ParseInchRange(s string) *InchRange {
	return ParseInchRangeSep(s, "-")
}

// ParseInchRangeSep is ParseInchRange with an explicit range separator.
func ParseInchRangeSep(s, separator string) *InchRange {
	var numbers []int
	for _, component := range strings.Split(s, separator) {
		digits := notADigit.ReplaceAllString(component, "")
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}

	switch len(numbers) {
	case 1:
		return &InchRange{Inches: &numbers[0]}
	case 2:
		return &InchRange{InchesLower: &numbers[0], InchesUpper: &numbers[1]}
	default:
		return nil
	}
}
