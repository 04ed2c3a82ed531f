package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRange_Bounded(t *testing.T) {
	r, err := ParseRange("10-13")
	assert.NoError(t, err)
	assert.Equal(t, Range{Min: 10, Max: 13, Known: true}, r)
}

func TestParseRange_OpenEnded(t *testing.T) {
	r, err := ParseRange("300+ м²")
	assert.NoError(t, err)
	assert.Equal(t, Range{Min: 300, Max: 600, Known: true}, r)

	r, err = ParseRange("25+ млн")
	assert.NoError(t, err)
	assert.Equal(t, Range{Min: 25, Max: 50, Known: true}, r)
}

func TestParseRange_SingleValue(t *testing.T) {
	r, err := ParseRange("150 м²")
	assert.NoError(t, err)
	assert.Equal(t, Range{Min: 150, Max: 150, Known: true}, r)
}

func TestParseRange_Inverted(t *testing.T) {
	r, err := ParseRange("13-10")
	assert.Error(t, err)
	assert.False(t, r.Known)
}

func TestParseRange_Garbage(t *testing.T) {
	for _, raw := range []string{"", "дорого", "a-b", "10-"} {
		r, err := ParseRange(raw)
		assert.Error(t, err, "raw %q", raw)
		assert.False(t, r.Known, "raw %q", raw)
		assert.Zero(t, r.Min)
		assert.Zero(t, r.Max)
	}
}

func TestRange_Contains(t *testing.T) {
	r := Range{Min: 10, Max: 13, Known: true}
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(13))
	assert.False(t, r.Contains(9.99))
	// A not-Known range contains nothing, even zero.
	assert.False(t, Range{}.Contains(0))
}

func TestListingNumber(t *testing.T) {
	assert.Equal(t, 11.9, ListingNumber("11.9 млн"))
	assert.Equal(t, 593.0, ListingNumber("593 м²"))
	assert.Equal(t, 2.0, ListingNumber("2 этажа"))
	assert.Equal(t, 0.0, ListingNumber("по запросу"))
	assert.Equal(t, 0.0, ListingNumber(""))
}

func TestNoPreference(t *testing.T) {
	for _, raw := range []string{"", "не важно", "Не важно", "не указан", "не указана", "any", "not important"} {
		assert.True(t, NoPreference(raw), "raw %q", raw)
	}
	for _, raw := range []string{"10-13", "3", "brick", "yes", "no"} {
		assert.False(t, NoPreference(raw), "raw %q", raw)
	}
}

func TestPreferences_GetAndClone(t *testing.T) {
	p := Preferences{CriterionBudget: "10-13"}
	assert.Equal(t, "10-13", p.Get(CriterionBudget))
	assert.Equal(t, "", p.Get(CriterionStyle))

	var nilPrefs Preferences
	assert.Equal(t, "", nilPrefs.Get(CriterionBudget))

	clone := p.Clone()
	clone[CriterionBudget] = "17-25"
	assert.Equal(t, "10-13", p.Get(CriterionBudget))
}
