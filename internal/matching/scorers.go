package matching

import (
	"strconv"
	"strings"
)

// Per-criterion scorers. Each is a pure function mapping a listing
// field and the user's raw preference to a score in [0,1]. A missing
// or "don't care" preference always scores the neutral 0.5: never a
// knockout, never an inflator.
const NeutralScore = 0.5

// PriceScore compares the listing price against the budget range.
// Inside the budget it is a perfect 1.0. Under-budget decays from 0.7
// with the relative shortfall; over-budget decays from 0.5 with the
// relative excess, so blowing the budget hurts more than undershooting
// it. Never negative.
func PriceScore(price float64, budget string) float64 {
	if NoPreference(budget) {
		return NeutralScore
	}
	r, err := ParseRange(budget)
	if err != nil || !r.Known {
		return NeutralScore
	}
	switch {
	case r.Contains(price):
		return 1.0
	case price < r.Min:
		return clamp01(0.7 - (r.Min-price)/r.Min)
	default:
		return clamp01(0.5 - (price-r.Max)/r.Max)
	}
}

// AreaScore uses the same range logic as PriceScore with gentler
// overshoot: a house that is too big loses half as fast as one that is
// too small.
func AreaScore(area float64, want string) float64 {
	if NoPreference(want) {
		return NeutralScore
	}
	r, err := ParseRange(want)
	if err != nil || !r.Known {
		return NeutralScore
	}
	switch {
	case r.Contains(area):
		return 1.0
	case area < r.Min:
		return clamp01(0.6 - (r.Min-area)/r.Min)
	default:
		return clamp01(0.7 - 0.5*(area-r.Max)/r.Max)
	}
}

// FloorsScore is exact-match only: no partial credit for an off-by-one
// floor count. Floor counts may be fractional ("1.5" is ground floor
// plus attic).
func FloorsScore(floors *float64, want string) float64 {
	if NoPreference(want) {
		return NeutralScore
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.ReplaceAll(want, "этажный", "")), "-"))
	wantNum, err := strconv.ParseFloat(s, 64)
	if err != nil || floors == nil {
		return 0.3
	}
	if *floors == wantNum {
		return 1.0
	}
	return 0.3
}

// RoomsScore gives graduated credit: exact match 1.0, off-by-one 0.7,
// then a decaying tail. A "N+" preference is an open lower bound.
func RoomsScore(rooms *int, want string) float64 {
	if NoPreference(want) {
		return NeutralScore
	}
	if rooms == nil {
		return NeutralScore
	}
	w := strings.TrimSpace(want)
	if strings.Contains(w, "+") {
		min, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(w, "+", "")))
		if err != nil {
			return NeutralScore
		}
		if *rooms >= min {
			return 1.0
		}
		return clamp01(0.5 - 0.2*float64(min-*rooms))
	}
	wantNum, err := strconv.Atoi(w)
	if err != nil {
		return NeutralScore
	}
	diff := *rooms - wantNum
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1.0
	case 1:
		return 0.7
	default:
		return clamp01(0.4 - 0.1*float64(diff))
	}
}

// BathroomsScore is meets-or-exceeds with flat penalties: 0.6 below an
// open "N+" bound, 0.7 below a plain bound. Unlike rooms there is no
// graduated tail.
func BathroomsScore(bathrooms *int, want string) float64 {
	if NoPreference(want) {
		return NeutralScore
	}
	if bathrooms == nil {
		return NeutralScore
	}
	w := strings.TrimSpace(want)
	if strings.Contains(w, "+") {
		min, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(w, "+", "")))
		if err != nil {
			return NeutralScore
		}
		if *bathrooms >= min {
			return 1.0
		}
		return 0.6
	}
	wantNum, err := strconv.Atoi(w)
	if err != nil {
		return NeutralScore
	}
	if *bathrooms >= wantNum {
		return 1.0
	}
	return 0.7
}

// GarageScore reduces both sides to boolean intent. Wanting a garage
// the house lacks is a near-knockout 0.2; an unwanted garage is only a
// mild 0.7.
func GarageScore(garage, want string) float64 {
	if NoPreference(want) {
		return NeutralScore
	}
	has := listingHasGarage(garage)
	wants := userWantsGarage(want)
	switch {
	case has == wants:
		return 1.0
	case wants && !has:
		return 0.2
	default:
		return 0.7
	}
}

// MaterialScore is a soft categorical match: 0.3 on a miss, never
// zero, since the description may simply omit the material.
func MaterialScore(material, want string) float64 {
	if NoPreference(want) {
		return NeutralScore
	}
	if categoricalMatch(material, want, materialSynonyms) {
		return 1.0
	}
	return 0.3
}

// StyleScore mirrors MaterialScore with a 0.4 miss.
func StyleScore(style, want string) float64 {
	if NoPreference(want) {
		return NeutralScore
	}
	if categoricalMatch(style, want, styleSynonyms) {
		return 1.0
	}
	return 0.4
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
