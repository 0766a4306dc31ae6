package entity

import "time"

// Report is backend-generated narrative text derived from a diagnosis.
type Report struct {
	ID          ID        `json:"id"`
	DiagnosisID ID        `json:"diagnosisId,omitempty"`
	PatientID   ID        `json:"patientId,omitempty"`
	ReportText  string    `json:"reportText"`
	CreatedAt   time.Time `json:"createdAt"`
}
