package types

import (
	"fmt"
	"strings"
)

// Granularity controls how aggressively the postprocessor merges adjacent
// entities. The values form a total order: Fine < Medium < Coarse.
type Granularity int

const (
	// GranularityFine merges only consecutive runs of same-kind imports,
	// constants, and variables.
	GranularityFine Granularity = iota
	// GranularityMedium merges any consecutive entities up to half the
	// configured maximum snippet size.
	GranularityMedium
	// GranularityCoarse merges any consecutive entities up to the full
	// configured maximum snippet size.
	GranularityCoarse
)

func (g Granularity) String() string {
	switch g {
	case GranularityMedium:
		return "medium"
	case GranularityCoarse:
		return "coarse"
	default:
		return "fine"
	}
}

// ParseGranularity converts a string to a Granularity, rejecting unknown
// values. Callers that want lenient handling use GranularityOrDefault.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "fine":
		return GranularityFine, nil
	case "medium":
		return GranularityMedium, nil
	case "coarse":
		return GranularityCoarse, nil
	default:
		return GranularityFine, fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
}

// GranularityOrDefault parses s leniently: empty or unrecognized values fall
// back to GranularityFine.
func GranularityOrDefault(s string) Granularity {
	g, err := ParseGranularity(s)
	if err != nil {
		return GranularityFine
	}
	return g
}
