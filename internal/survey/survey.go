package survey

import (
	"fmt"

	"rubkoff/assistant/internal/matching"
)

// Option is one predefined answer for a survey question. Value is
// what the scoring engine consumes, Label is what the client shows.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is a single step of the preference survey.
type Question struct {
	Key         string   `json:"key"`
	Prompt      string   `json:"prompt"`
	Options     []Option `json:"options"`
	AllowCustom bool     `json:"allow_custom"`
}

// Questions lists the survey steps in the order they are asked.
// Keys line up with the criteria the scoring engine understands.
var Questions = []Question{
	{
		Key:    matching.CriterionBudget,
		Prompt: "Какой у вас бюджет на строительство дома?",
		Options: []Option{
			{Value: "10-13", Label: "10-13 млн"},
			{Value: "13-17", Label: "13-17 млн"},
			{Value: "17-25", Label: "17-25 млн"},
			{Value: "25+", Label: "25+ млн"},
		},
		AllowCustom: true,
	},
	{
		Key:    matching.CriterionArea,
		Prompt: "Какая площадь дома вам нужна?",
		Options: []Option{
			{Value: "100-150", Label: "100-150 м²"},
			{Value: "150-200", Label: "150-200 м²"},
			{Value: "200-300", Label: "200-300 м²"},
			{Value: "300+", Label: "300+ м²"},
		},
		AllowCustom: true,
	},
	{
		Key:    matching.CriterionFloors,
		Prompt: "Сколько этажей должно быть в доме?",
		Options: []Option{
			{Value: "1", Label: "Одноэтажный"},
			{Value: "2", Label: "Двухэтажный"},
			{Value: "3", Label: "Трехэтажный"},
			{Value: "any", Label: "Не важно"},
		},
	},
	{
		Key:    matching.CriterionRooms,
		Prompt: "Сколько комнат вам нужно?",
		Options: []Option{
			{Value: "2", Label: "2 комнаты"},
			{Value: "3", Label: "3 комнаты"},
			{Value: "4", Label: "4 комнаты"},
			{Value: "5+", Label: "5+ комнат"},
		},
		AllowCustom: true,
	},
	{
		Key:    matching.CriterionBathrooms,
		Prompt: "Сколько санузлов вам нужно?",
		Options: []Option{
			{Value: "1", Label: "1 санузел"},
			{Value: "2", Label: "2 санузла"},
			{Value: "3+", Label: "3+ санузла"},
			{Value: "any", Label: "Не важно"},
		},
	},
	{
		Key:    matching.CriterionMaterial,
		Prompt: "Из какого материала должен быть дом?",
		Options: []Option{
			{Value: "brick", Label: "Камень"},
			{Value: "wood", Label: "Дерево"},
			{Value: "any", Label: "Не важно"},
		},
	},
	{
		Key:    matching.CriterionGarage,
		Prompt: "Нужен ли вам гараж?",
		Options: []Option{
			{Value: "yes", Label: "Да, нужен гараж"},
			{Value: "no", Label: "Не нужен"},
			{Value: "any", Label: "Не важно"},
		},
	},
	{
		Key:    matching.CriterionStyle,
		Prompt: "Какой архитектурный стиль вам нравится?",
		Options: []Option{
			{Value: "classic", Label: "Классический"},
			{Value: "modern", Label: "Современный"},
			{Value: "chalet", Label: "Шале"},
			{Value: "american", Label: "Американский"},
			{Value: "scandinavian", Label: "Скандинавский"},
			{Value: "any", Label: "Не важно"},
		},
	},
}

var questionsByKey = func() map[string]*Question {
	m := make(map[string]*Question, len(Questions))
	for i := range Questions {
		m[Questions[i].Key] = &Questions[i]
	}
	return m
}()

// QuestionByKey returns the survey question for a criterion key, or
// nil when the key is not part of the survey.
func QuestionByKey(key string) *Question {
	return questionsByKey[key]
}

// hasOption reports whether value is one of the question's predefined
// answers.
func (q *Question) hasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Session walks a user through the survey one question at a time and
// accumulates their answers.
type Session struct {
	answers matching.Preferences
	step    int
}

// NewSession starts an empty survey session.
func NewSession() *Session {
	return &Session{answers: matching.Preferences{}}
}

// Current returns the question awaiting an answer, or nil when the
// survey is finished.
func (s *Session) Current() *Question {
	if s.step >= len(Questions) {
		return nil
	}
	return &Questions[s.step]
}

// Done reports whether every question has been answered.
func (s *Session) Done() bool {
	return s.step >= len(Questions)
}

// Answer records a reply to the current question and advances to the
// next one. Questions without free-form input reject values outside
// their predefined options.
func (s *Session) Answer(value string) error {
	q := s.Current()
	if q == nil {
		return fmt.Errorf("survey already finished")
	}
	if value == "" {
		return fmt.Errorf("empty answer for %q", q.Key)
	}
	if !q.AllowCustom && !q.hasOption(value) {
		return fmt.Errorf("answer %q is not an option for %q", value, q.Key)
	}
	s.answers[q.Key] = value
	s.step++
	return nil
}

// Preferences returns a copy of the collected answers, so callers
// cannot mutate session state through the map.
func (s *Session) Preferences() matching.Preferences {
	return s.answers.Clone()
}

// ValidateAnswers checks a full answer set submitted in one request,
// as the web client does. Unknown keys are rejected; known keys with
// fixed options must use one of them.
func ValidateAnswers(answers matching.Preferences) error {
	for key, value := range answers {
		q := QuestionByKey(key)
		if q == nil {
			return fmt.Errorf("unknown survey key %q", key)
		}
		if value == "" {
			return fmt.Errorf("empty answer for %q", key)
		}
		if !q.AllowCustom && !q.hasOption(value) && !matching.NoPreference(value) {
			return fmt.Errorf("answer %q is not an option for %q", value, key)
		}
	}
	return nil
}
