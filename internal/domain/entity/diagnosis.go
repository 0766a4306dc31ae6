package entity

// Diagnosis is the backend record created from a completed answer set.
type Diagnosis struct {
	ID        ID        `json:"id"`
	PatientID ID        `json:"patientId"`
	Answers   AnswerMap `json:"answers"`
}
