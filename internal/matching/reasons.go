package matching

import "math/rand"

// reasonThreshold is the per-criterion score above which a criterion
// counts as a match worth mentioning.
const reasonThreshold = 0.8

var reasonPhrases = map[string]string{
	CriterionBudget:    "Оптимальное соотношение цена-качество",
	CriterionArea:      "Соответствует вашим предпочтениям по площади",
	CriterionFloors:    "Подходящая этажность",
	CriterionRooms:     "Подходящее количество комнат",
	CriterionBathrooms: "Удобное количество санузлов",
	CriterionGarage:    "Наличие гаража соответствует пожеланиям",
	CriterionStyle:     "Современный архитектурный стиль",
	CriterionMaterial:  "Качественные материалы строительства",
}

// Reasons derives human-readable match reasons from a per-criterion
// breakdown. The output is fully deterministic: criteria are walked in
// scoring order and a phrase appears only when its score crosses the
// threshold.
func Reasons(breakdown map[string]float64) []string {
	var out []string
	for _, name := range CriterionNames {
		if breakdown[name] >= reasonThreshold {
			out = append(out, reasonPhrases[name])
		}
	}
	return out
}

// mockReasonPool backs the mock selection mode, which presents houses
// without a real scoring pass.
var mockReasonPool = []string{
	"Соответствует вашим предпочтениям по площади",
	"Оптимальное соотношение цена-качество",
	"Подходящее количество комнат",
	"Удачная планировка дома",
	"Качественные материалы строительства",
	"Современный архитектурный стиль",
	"Хорошее расположение участка",
	"Энергоэффективные решения",
	"Продуманная планировка участка",
	"Высокое качество отделки",
	"Надежная конструкция дома",
	"Экологичные материалы",
	"Функциональная планировка",
	"Привлекательный внешний вид",
}

// MockReasons samples n phrases from the mock pool using the supplied
// source, so mock output is reproducible for a fixed seed.
func MockReasons(rng *rand.Rand, n int) []string {
	pool := make([]string, len(mockReasonPool))
	copy(pool, mockReasonPool)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < 0 {
		n = 0
	}
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}
