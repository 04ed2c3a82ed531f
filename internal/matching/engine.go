package matching

import (
	"fmt"
	"math"
	"sort"

	"rubkoff/assistant/internal/models"
)

// Weights holds the fixed per-criterion coefficients. They must sum to
// 1.0 so that a fully "don't care" preference set aggregates to
// exactly the neutral 0.5.
type Weights struct {
	Price     float64 `json:"price"`
	Area      float64 `json:"area"`
	Floors    float64 `json:"floors"`
	Rooms     float64 `json:"rooms"`
	Bathrooms float64 `json:"bathrooms"`
	Garage    float64 `json:"garage"`
	Style     float64 `json:"style"`
	Material  float64 `json:"material"`
}

// DefaultWeights returns the production weight vector.
func DefaultWeights() Weights {
	return Weights{
		Price:     0.25,
		Area:      0.20,
		Floors:    0.10,
		Rooms:     0.15,
		Bathrooms: 0.05,
		Garage:    0.05,
		Style:     0.10,
		Material:  0.10,
	}
}

func (w Weights) sum() float64 {
	return w.Price + w.Area + w.Floors + w.Rooms + w.Bathrooms + w.Garage + w.Style + w.Material
}

// Validate rejects weight vectors that do not sum to 1.0.
func (w Weights) Validate() error {
	if math.Abs(w.sum()-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %v", w.sum())
	}
	return nil
}

// Candidate is one scored house. Created fresh on every scoring pass
// and never mutated afterwards.
type Candidate struct {
	House     models.House       `json:"house"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
	Reasons   []string           `json:"reasons,omitempty"`
}

// Engine scores houses against a preference set. It holds only the
// immutable weight vector, so every method is a pure function of its
// arguments.
type Engine struct {
	weights Weights
}

func NewEngine(w Weights) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: w}, nil
}

// Score computes the per-criterion breakdown and the weighted overall
// score for one house. The overall score is rounded to 2 decimals,
// half away from zero. No criterion ever short-circuits: a "don't
// care" answer still contributes its weighted 0.5.
func (e *Engine) Score(h models.House, prefs Preferences) Candidate {
	breakdown := map[string]float64{
		CriterionBudget:    PriceScore(h.Price, prefs.Get(CriterionBudget)),
		CriterionArea:      AreaScore(h.Area, prefs.Get(CriterionArea)),
		CriterionFloors:    FloorsScore(h.Floors, prefs.Get(CriterionFloors)),
		CriterionRooms:     RoomsScore(h.Bedrooms, prefs.Get(CriterionRooms)),
		CriterionBathrooms: BathroomsScore(h.Bathrooms, prefs.Get(CriterionBathrooms)),
		CriterionGarage:    GarageScore(h.Garage, prefs.Get(CriterionGarage)),
		CriterionStyle:     StyleScore(h.Style, prefs.Get(CriterionStyle)),
		CriterionMaterial:  MaterialScore(h.Material, prefs.Get(CriterionMaterial)),
	}

	total := breakdown[CriterionBudget]*e.weights.Price +
		breakdown[CriterionArea]*e.weights.Area +
		breakdown[CriterionFloors]*e.weights.Floors +
		breakdown[CriterionRooms]*e.weights.Rooms +
		breakdown[CriterionBathrooms]*e.weights.Bathrooms +
		breakdown[CriterionGarage]*e.weights.Garage +
		breakdown[CriterionStyle]*e.weights.Style +
		breakdown[CriterionMaterial]*e.weights.Material

	return Candidate{
		House:     h,
		Score:     round2(total),
		Breakdown: breakdown,
		Reasons:   Reasons(breakdown),
	}
}

// Rank scores every house and returns the top limit candidates by
// descending score. Ties keep catalog order: the sort is stable by
// contract, so the same catalog and preferences always produce the
// identical list. A limit <= 0 defaults to 5. An empty catalog yields
// an empty result, not an error.
func (e *Engine) Rank(houses []models.House, prefs Preferences, limit int) []Candidate {
	out := make([]Candidate, 0, len(houses))
	for _, h := range houses {
		out = append(out, e.Score(h, prefs))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if limit <= 0 {
		limit = 5
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
