package matching

import (
	"fmt"
	"strconv"
	"strings"
)

// Recognized criterion names. Keys outside this set are ignored by the
// engine; missing keys score as "no preference".
const (
	CriterionBudget    = "budget"
	CriterionArea      = "area"
	CriterionFloors    = "floors"
	CriterionRooms     = "rooms"
	CriterionBathrooms = "bathrooms"
	CriterionMaterial  = "material"
	CriterionGarage    = "garage"
	CriterionStyle     = "style"
)

// CriterionNames lists all recognized criteria in scoring order.
var CriterionNames = []string{
	CriterionBudget,
	CriterionArea,
	CriterionFloors,
	CriterionRooms,
	CriterionBathrooms,
	CriterionGarage,
	CriterionStyle,
	CriterionMaterial,
}

// Preferences maps a criterion name to the raw answer collected from
// the user. Values stay untyped strings; the scorers parse them.
type Preferences map[string]string

// Get returns the raw value for a criterion, or "" when the user never
// answered it.
func (p Preferences) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Clone returns an independent copy so a snapshot handed to the engine
// cannot be mutated by a later survey step.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Don't-care markers. The survey emits "any", the free-text flow leaves
// Russian "не важно"/"не указан(а)" phrases in place.
var noPreferenceMarkers = []string{"важно", "не указан", "any", "not important"}

// NoPreference reports whether the raw value means the user has no
// constraint on the criterion. Empty (missing) values count too.
func NoPreference(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return true
	}
	for _, marker := range noPreferenceMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Range is a parsed numeric preference. Known is false when the raw
// value could not be parsed; callers must treat that as "unknown", not
// as a real zero-valued bound.
type Range struct {
	Min   float64
	Max   float64
	Known bool
}

// Contains reports whether v falls inside the range, bounds inclusive.
func (r Range) Contains(v float64) bool {
	return r.Known && v >= r.Min && v <= r.Max
}

var unitSuffixes = []string{"млн", "м²", "м2", "руб"}

func stripUnits(s string) string {
	for _, u := range unitSuffixes {
		s = strings.ReplaceAll(s, u, "")
	}
	return strings.TrimSpace(s)
}

// ParseRange parses a numeric preference of the form "A-B", "A+" or a
// single value. Open-ended "A+" becomes the bounded range [A, 2A] so
// every scorer can use one containment path. Unparseable input and
// inverted ranges ("13-10") yield a not-Known zero range and an error;
// they are never silently reordered.
func ParseRange(raw string) (Range, error) {
	s := stripUnits(raw)

	switch {
	case strings.Contains(s, "+"):
		num, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, "+", "")), 64)
		if err != nil {
			return Range{}, fmt.Errorf("parse open range %q: %w", raw, err)
		}
		return Range{Min: num, Max: num * 2, Known: true}, nil

	case strings.Contains(s, "-"):
		parts := strings.SplitN(s, "-", 2)
		lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return Range{}, fmt.Errorf("parse range %q: %w", raw, err)
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return Range{}, fmt.Errorf("parse range %q: %w", raw, err)
		}
		if lo > hi {
			return Range{}, fmt.Errorf("inverted range %q", raw)
		}
		return Range{Min: lo, Max: hi, Known: true}, nil

	default:
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Range{}, fmt.Errorf("parse value %q: %w", raw, err)
		}
		return Range{Min: num, Max: num, Known: true}, nil
	}
}

// ListingNumber extracts the leading numeric token from a raw catalog
// field like "11.9 млн" or "593 м²". Returns 0 when no number is
// there, meaning "unavailable".
func ListingNumber(raw string) float64 {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

// Survey answers arrive as English tokens; the catalog is described in
// Russian. Unknown tokens fall through verbatim.
var materialSynonyms = map[string]string{
	"brick":     "кирпич",
	"wood":      "дерево",
	"gasobeton": "газобетон",
	"frame":     "каркасный",
}

var styleSynonyms = map[string]string{
	"classic":      "классический",
	"modern":       "современный",
	"chalet":       "шале",
	"american":     "американский",
	"scandinavian": "скандинавский",
}

// categoricalMatch reports whether the user's term, mapped through the
// synonym table, appears anywhere inside the listing's descriptive
// field. Substring containment is deliberate: catalog text is noisy.
func categoricalMatch(listingValue, userValue string, synonyms map[string]string) bool {
	user := strings.ToLower(strings.TrimSpace(userValue))
	if mapped, ok := synonyms[user]; ok {
		user = mapped
	}
	return user != "" && strings.Contains(strings.ToLower(listingValue), user)
}

// Garage fields are boolean-ish text on both sides: the catalog marks
// presence with a Russian "да", the survey answers with "yes".
func listingHasGarage(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "да")
}

func userWantsGarage(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "yes")
}
