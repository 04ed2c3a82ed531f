package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubkoff/assistant/internal/matching"
)

func TestQuestionsCoverAllCriteria(t *testing.T) {
	require.Len(t, Questions, len(matching.CriterionNames))

	seen := make(map[string]bool)
	for _, q := range Questions {
		assert.NotEmpty(t, q.Prompt, q.Key)
		assert.NotEmpty(t, q.Options, q.Key)
		seen[q.Key] = true
	}
	for _, name := range matching.CriterionNames {
		assert.True(t, seen[name], "no question for criterion %q", name)
	}
}

func TestSessionWalksQuestionsInOrder(t *testing.T) {
	s := NewSession()

	answers := []string{"13-17", "150-200", "2", "4", "2", "brick", "yes", "modern"}
	for i, a := range answers {
		q := s.Current()
		require.NotNil(t, q)
		assert.Equal(t, Questions[i].Key, q.Key)
		require.NoError(t, s.Answer(a))
	}

	assert.True(t, s.Done())
	assert.Nil(t, s.Current())

	prefs := s.Preferences()
	assert.Equal(t, "13-17", prefs.Get(matching.CriterionBudget))
	assert.Equal(t, "brick", prefs.Get(matching.CriterionMaterial))
	assert.Equal(t, "modern", prefs.Get(matching.CriterionStyle))
}

func TestSessionRejectsInvalidAnswers(t *testing.T) {
	s := NewSession()

	// Budget allows custom input.
	require.NoError(t, s.Answer("11-14"))
	// So does area.
	require.NoError(t, s.Answer("180+"))

	// Floors is fixed-choice.
	assert.Error(t, s.Answer("4"))
	assert.Error(t, s.Answer(""))
	require.NoError(t, s.Answer("any"))
}

func TestSessionAnswerAfterFinish(t *testing.T) {
	s := NewSession()
	answers := []string{"10-13", "100-150", "1", "2", "1", "wood", "no", "chalet"}
	for _, a := range answers {
		require.NoError(t, s.Answer(a))
	}
	assert.Error(t, s.Answer("extra"))
}

func TestPreferencesCopyIsIndependent(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Answer("10-13"))

	p := s.Preferences()
	p[matching.CriterionBudget] = "25+"

	assert.Equal(t, "10-13", s.Preferences().Get(matching.CriterionBudget))
}

func TestValidateAnswers(t *testing.T) {
	assert.NoError(t, ValidateAnswers(matching.Preferences{
		"budget": "13-17",
		"floors": "2",
		"style":  "modern",
	}))

	// Don't-care answers pass even for fixed-choice questions.
	assert.NoError(t, ValidateAnswers(matching.Preferences{
		"garage": "не важно",
	}))

	assert.Error(t, ValidateAnswers(matching.Preferences{"pool": "yes"}))
	assert.Error(t, ValidateAnswers(matching.Preferences{"floors": "4"}))
	assert.Error(t, ValidateAnswers(matching.Preferences{"budget": ""}))
}

func TestQuestionByKey(t *testing.T) {
	q := QuestionByKey(matching.CriterionGarage)
	require.NotNil(t, q)
	assert.Equal(t, matching.CriterionGarage, q.Key)
	assert.Nil(t, QuestionByKey("pool"))
}
