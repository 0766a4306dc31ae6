package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownSymptom is returned when an answer targets a key outside the canonical questionnaire.
var ErrUnknownSymptom = errors.New("unknown symptom key")

// SymptomKey identifies one question of the TB screening questionnaire.
type SymptomKey string

const (
	SymptomCough2Weeks   SymptomKey = "cough2Weeks"
	SymptomNightSweat    SymptomKey = "nightSweat"
	SymptomWeightLoss    SymptomKey = "weightLoss"
	SymptomFever         SymptomKey = "fever"
	SymptomChestPain     SymptomKey = "chestPain"
	SymptomBloodInSputum SymptomKey = "bloodInSputum"
	SymptomFatigue       SymptomKey = "fatigue"
	SymptomContactWithTB SymptomKey = "contactWithTb"
)

// SymptomQuestion is a single question shown by the diagnosis wizard.
type SymptomQuestion struct {
	Key    SymptomKey `json:"key"`
	Prompt string     `json:"prompt"`
}

// QuestionCount is the number of canonical questions.
const QuestionCount = 8

var questions = [QuestionCount]SymptomQuestion{
	{Key: SymptomCough2Weeks, Prompt: "Has the patient been coughing for more than 2 weeks?"},
	{Key: SymptomNightSweat, Prompt: "Does the patient experience night sweats?"},
	{Key: SymptomWeightLoss, Prompt: "Has the patient experienced weight loss?"},
	{Key: SymptomFever, Prompt: "Does the patient have fever?"},
	{Key: SymptomChestPain, Prompt: "Is the patient having chest pain?"},
	{Key: SymptomBloodInSputum, Prompt: "Is there blood in the patient's sputum?"},
	{Key: SymptomFatigue, Prompt: "Is the patient experiencing fatigue?"},
	{Key: SymptomContactWithTB, Prompt: "Has the patient been in contact with a TB patient?"},
}

// Questions returns the canonical questionnaire in display order.
func Questions() []SymptomQuestion {
	out := make([]SymptomQuestion, QuestionCount)
	copy(out, questions[:])
	return out
}

// QuestionAt returns the question shown at the given wizard step.
func QuestionAt(step int) (SymptomQuestion, bool) {
	if step < 0 || step >= QuestionCount {
		return SymptomQuestion{}, false
	}
	return questions[step], true
}

func symptomIndex(key SymptomKey) (int, bool) {
	for i, q := range questions {
		if q.Key == key {
			return i, true
		}
	}
	return 0, false
}

// ParseSymptomKey validates a raw key against the canonical set.
func ParseSymptomKey(raw string) (SymptomKey, error) {
	key := SymptomKey(raw)
	if _, ok := symptomIndex(key); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSymptom, raw)
	}
	return key, nil
}

// AnswerMap holds one boolean per canonical question. It is a value type: the zero
// value answers every question with false, and SetAnswer returns a modified copy.
type AnswerMap struct {
	values [QuestionCount]bool
}

// SetAnswer returns a copy of m with key bound to value.
func (m AnswerMap) SetAnswer(key SymptomKey, value bool) (AnswerMap, error) {
	i, ok := symptomIndex(key)
	if !ok {
		return m, fmt.Errorf("%w: %q", ErrUnknownSymptom, key)
	}
	m.values[i] = value
	return m, nil
}

// Get reports the answer bound to key.
func (m AnswerMap) Get(key SymptomKey) (bool, error) {
	i, ok := symptomIndex(key)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownSymptom, key)
	}
	return m.values[i], nil
}

// IsComplete is always true: every canonical key is present by construction.
func (m AnswerMap) IsComplete() bool {
	return len(m.values) == QuestionCount
}

// Fields returns the answers keyed by their wire names.
func (m AnswerMap) Fields() map[string]bool {
	out := make(map[string]bool, QuestionCount)
	for i, q := range questions {
		out[string(q.Key)] = m.values[i]
	}
	return out
}

// Positive returns the keys answered with true, in questionnaire order.
func (m AnswerMap) Positive() []SymptomKey {
	var keys []SymptomKey
	for i, q := range questions {
		if m.values[i] {
			keys = append(keys, q.Key)
		}
	}
	return keys
}

func (m AnswerMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Fields())
}

// UnmarshalJSON accepts an object holding a subset of the canonical keys; missing keys
// stay false and unknown keys are rejected.
func (m *AnswerMap) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out AnswerMap
	for k, v := range raw {
		key, err := ParseSymptomKey(k)
		if err != nil {
			return err
		}
		out, _ = out.SetAnswer(key, v)
	}
	*m = out
	return nil
}
