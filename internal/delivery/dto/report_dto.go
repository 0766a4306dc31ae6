package dto

import "time"

// ReportResponse carries a report whose text has already been formatted for display.
type ReportResponse struct {
	ID          string    `json:"id"`
	DiagnosisID string    `json:"diagnosis_id"`
	PatientID   string    `json:"patient_id"`
	Text        string    `json:"text"`
	Lines       []string  `json:"lines"`
	CreatedAt   time.Time `json:"created_at"`
}

type PatientReportsResponse struct {
	Patient       *PatientResponse       `json:"patient"`
	Reports       []ReportResponse       `json:"reports"`
	Notifications []NotificationResponse `json:"notifications,omitempty"`
}
