package entity

import "time"

// SubmissionStatus tracks the submission pipeline of a wizard session.
type SubmissionStatus string

const (
	SubmissionIdle              SubmissionStatus = "idle"
	SubmissionCreatingDiagnosis SubmissionStatus = "creating_diagnosis"
	SubmissionGeneratingReport  SubmissionStatus = "generating_report"
	SubmissionCompleted         SubmissionStatus = "completed"
	SubmissionFailed            SubmissionStatus = "failed"
)

// Severity classifies an operator notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a message surfaced to the operator.
type Notification struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Redirect is a navigation scheduled for the operator's client.
type Redirect struct {
	Target string        `json:"target"`
	Delay  time.Duration `json:"delay"`
}

// WizardSession is the persisted state of one in-progress diagnosis wizard.
type WizardSession struct {
	ID             string           `json:"id"`
	PatientID      ID               `json:"patientId"`
	Patient        *Patient         `json:"patient,omitempty"`
	Step           int              `json:"step"`
	Answers        AnswerMap        `json:"answers"`
	Status         SubmissionStatus `json:"status"`
	DiagnosisID    ID               `json:"diagnosisId,omitempty"`
	IdempotencyKey string           `json:"idempotencyKey"`
	Notifications  []Notification   `json:"notifications,omitempty"`
	Redirect       *Redirect        `json:"redirect,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Notify appends an operator notification.
func (s *WizardSession) Notify(severity Severity, message string) {
	s.Notifications = append(s.Notifications, Notification{
		Severity: severity,
		Message:  message,
		At:       time.Now().UTC(),
	})
}

// DrainNotifications returns pending notifications and clears them.
func (s *WizardSession) DrainNotifications() []Notification {
	out := s.Notifications
	s.Notifications = nil
	return out
}

// AwaitingReport reports whether a diagnosis exists without a generated report.
func (s *WizardSession) AwaitingReport() bool {
	return !s.DiagnosisID.IsZero() && s.Status == SubmissionFailed
}
