// Package wizard implements the step-sequencing state machine of the diagnosis wizard.
package wizard

import (
	"errors"
	"fmt"
	"math"

	"tb-intake/internal/domain/entity"
)

// ErrWizardComplete is returned when an answer is given after the review step was reached.
var ErrWizardComplete = errors.New("wizard is in review state")

// Progress describes how far the wizard has advanced.
type Progress struct {
	Percent  int `json:"percent"`
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Controller steps through the canonical questionnaire. Step N (the question count) is
// the terminal review state. A Controller is not safe for concurrent use; it is owned by
// a single wizard instance.
type Controller struct {
	step    int
	answers entity.AnswerMap
}

// NewController starts a wizard at the first question with every answer false.
func NewController() *Controller {
	return &Controller{}
}

// Restore rebuilds a controller from persisted state, clamping the step into range.
func Restore(step int, answers entity.AnswerMap) *Controller {
	return &Controller{step: clamp(step), answers: answers}
}

// Answer records value for key and advances one step.
func (c *Controller) Answer(key entity.SymptomKey, value bool) error {
	if c.InReview() {
		return fmt.Errorf("answer %q: %w", key, ErrWizardComplete)
	}

	answers, err := c.answers.SetAnswer(key, value)
	if err != nil {
		return err
	}

	c.answers = answers
	c.step = min(c.step+1, entity.QuestionCount)
	return nil
}

// AnswerCurrent answers the question shown at the current step.
func (c *Controller) AnswerCurrent(value bool) error {
	q, ok := c.Current()
	if !ok {
		return ErrWizardComplete
	}
	return c.Answer(q.Key, value)
}

// GoBack moves one step back, floored at the first question. From the review state it
// returns to the last question.
func (c *Controller) GoBack() {
	c.step = max(c.step-1, 0)
}

// RestartFromFirst returns to the first question without clearing answers.
func (c *Controller) RestartFromFirst() {
	c.step = 0
}

// Progress returns the rounded completion percentage and the answered/total pair.
func (c *Controller) Progress() Progress {
	answered := min(c.step, entity.QuestionCount)
	return Progress{
		Percent:  int(math.Round(float64(answered) / float64(entity.QuestionCount) * 100)),
		Answered: answered,
		Total:    entity.QuestionCount,
	}
}

// Current returns the question at the current step; false in the review state.
func (c *Controller) Current() (entity.SymptomQuestion, bool) {
	return entity.QuestionAt(c.step)
}

func (c *Controller) Step() int {
	return c.step
}

func (c *Controller) InReview() bool {
	return c.step >= entity.QuestionCount
}

func (c *Controller) Answers() entity.AnswerMap {
	return c.answers
}

func clamp(step int) int {
	return min(max(step, 0), entity.QuestionCount)
}
