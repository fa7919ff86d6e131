package roomstat

import (
	"fmt"
	"strings"
)

// QueryID names one of the fixed aggregation queries.
type QueryID string

const (
	// QueryRoomOccupancy lists every room with its student count.
	QueryRoomOccupancy QueryID = "room-occupancy"

	// QueryYoungestRooms lists the rooms with the lowest average student age.
	QueryYoungestRooms QueryID = "youngest-rooms"

	// QueryAgeSpread lists the rooms with the largest student age difference.
	QueryAgeSpread QueryID = "age-spread"

	// QueryMixedSex lists the rooms housing students of both sexes.
	QueryMixedSex QueryID = "mixed-sex"
)

// AllQueries returns every query in its fixed execution and output order.
func AllQueries() []QueryID {
	return []QueryID{QueryRoomOccupancy, QueryYoungestRooms, QueryAgeSpread, QueryMixedSex}
}

// String returns the query name.
func (q QueryID) String() string { return string(q) }

// IsValid returns true if q is one of the fixed queries.
func (q QueryID) IsValid() bool {
	for _, known := range AllQueries() {
		if q == known {
			return true
		}
	}
	return false
}

// Ordinal returns the 1-based position of q in AllQueries, or 0 if unknown.
func (q QueryID) Ordinal() int {
	for i, known := range AllQueries() {
		if q == known {
			return i + 1
		}
	}
	return 0
}

// ParseQueryID resolves a query by name or by its 1-based ordinal ("1".."4").
func ParseQueryID(s string) (QueryID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	all := AllQueries()
	for i, q := range all {
		if s == string(q) || s == fmt.Sprint(i+1) {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown query %q: %w", s, ErrInvalidConfig)
}

// Format is an output serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// FormatNames lists the supported format names.
func FormatNames() []string {
	return []string{string(FormatJSON), string(FormatXML)}
}

// ParseFormat resolves a case-insensitive format name.
// Unknown names yield *UnsupportedFormatError.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXML:
		return f, nil
	default:
		return "", &UnsupportedFormatError{Format: s}
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string { return "." + string(f) }
