package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestions_CanonicalOrder(t *testing.T) {
	qs := Questions()
	require.Len(t, qs, QuestionCount)
	assert.Equal(t, SymptomCough2Weeks, qs[0].Key)
	assert.Equal(t, SymptomContactWithTB, qs[QuestionCount-1].Key)

	// callers get a copy
	qs[0].Prompt = "changed"
	assert.NotEqual(t, "changed", Questions()[0].Prompt)
}

func TestAnswerMap_SetAnswerIsPure(t *testing.T) {
	var m AnswerMap
	updated, err := m.SetAnswer(SymptomFever, true)
	require.NoError(t, err)

	before, _ := m.Get(SymptomFever)
	after, _ := updated.Get(SymptomFever)
	assert.False(t, before)
	assert.True(t, after)

	for _, q := range Questions() {
		if q.Key == SymptomFever {
			continue
		}
		v, err := updated.Get(q.Key)
		require.NoError(t, err)
		assert.False(t, v, q.Key)
	}
}

func TestAnswerMap_RejectsUnknownKey(t *testing.T) {
	var m AnswerMap
	_, err := m.SetAnswer("headache", true)
	assert.ErrorIs(t, err, ErrUnknownSymptom)

	_, err = m.Get("headache")
	assert.ErrorIs(t, err, ErrUnknownSymptom)

	_, err = ParseSymptomKey("headache")
	assert.ErrorIs(t, err, ErrUnknownSymptom)
}

func TestAnswerMap_JSONHasExactlyCanonicalKeys(t *testing.T) {
	m, _ := AnswerMap{}.SetAnswer(SymptomNightSweat, true)
	assert.True(t, m.IsComplete())

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]bool
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, QuestionCount)
	assert.True(t, raw["nightSweat"])
	assert.False(t, raw["fever"])

	var decoded AnswerMap
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m, decoded)
	assert.Equal(t, []SymptomKey{SymptomNightSweat}, decoded.Positive())
}

func TestAnswerMap_UnmarshalRejectsUnknownKey(t *testing.T) {
	var m AnswerMap
	err := json.Unmarshal([]byte(`{"fever":true,"rash":true}`), &m)
	assert.ErrorIs(t, err, ErrUnknownSymptom)
}

func TestID_UnmarshalStringOrNumber(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"abc-1","b":42,"c":null}`), &v))
	assert.Equal(t, ID("abc-1"), v.A)
	assert.Equal(t, ID("42"), v.B)
	assert.True(t, v.C.IsZero())
}

func TestPatient_Matches(t *testing.T) {
	p := &Patient{FullName: "Siti Rahma", PatientCode: "PT-0042"}
	assert.True(t, p.Matches(""))
	assert.True(t, p.Matches("siti"))
	assert.True(t, p.Matches("pt-00"))
	assert.False(t, p.Matches("budi"))
}
