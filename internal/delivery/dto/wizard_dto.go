package dto

import "time"

// Request DTOs

type WizardOpenRequest struct {
	PatientID string `json:"patient_id" validate:"required"`
}

type WizardAnswerRequest struct {
	Key   string `json:"key" validate:"required"`
	Value *bool  `json:"value" validate:"required"`
}

// Response DTOs

type QuestionResponse struct {
	Index  int    `json:"index"`
	Key    string `json:"key"`
	Prompt string `json:"prompt"`
}

type QuestionListResponse struct {
	Questions []QuestionResponse `json:"questions"`
	Total     int                `json:"total"`
}

type ProgressResponse struct {
	Percent  int `json:"percent"`
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type NotificationResponse struct {
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

type RedirectResponse struct {
	Target  string `json:"target"`
	DelayMs int64  `json:"delay_ms"`
}

// WizardResponse is the client view of a wizard session.
// Question is nil once every question has been answered.
type WizardResponse struct {
	SessionID      string                 `json:"session_id"`
	Patient        *PatientResponse       `json:"patient,omitempty"`
	Step           int                    `json:"step"`
	InReview       bool                   `json:"in_review"`
	Question       *QuestionResponse      `json:"question,omitempty"`
	Progress       ProgressResponse       `json:"progress"`
	Answers        map[string]bool        `json:"answers"`
	Status         string                 `json:"status"`
	DiagnosisID    string                 `json:"diagnosis_id,omitempty"`
	CanSubmit      bool                   `json:"can_submit"`
	AwaitingReport bool                   `json:"awaiting_report"`
	Notifications  []NotificationResponse `json:"notifications,omitempty"`
	Redirect       *RedirectResponse      `json:"redirect,omitempty"`
}

type WizardOpenResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int64           `json:"expires_in"`
	Wizard    *WizardResponse `json:"wizard"`
}
