package matching

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasons_DerivedFromBreakdown(t *testing.T) {
	breakdown := map[string]float64{
		CriterionBudget: 1.0,
		CriterionArea:   0.85,
		CriterionRooms:  0.7,
		CriterionGarage: 0.2,
	}
	reasons := Reasons(breakdown)
	assert.Equal(t, []string{
		"Оптимальное соотношение цена-качество",
		"Соответствует вашим предпочтениям по площади",
	}, reasons)
}

func TestReasons_EmptyBelowThreshold(t *testing.T) {
	assert.Empty(t, Reasons(map[string]float64{CriterionBudget: 0.79}))
	assert.Empty(t, Reasons(nil))
}

func TestMockReasons_SeededAndReproducible(t *testing.T) {
	a := MockReasons(rand.New(rand.NewSource(42)), 3)
	b := MockReasons(rand.New(rand.NewSource(42)), 3)
	assert.Equal(t, a, b)
	assert.Len(t, a, 3)
}

func TestMockReasons_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Empty(t, MockReasons(rng, 0))
	assert.Len(t, MockReasons(rng, 100), len(mockReasonPool))
}
