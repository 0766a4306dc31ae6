package entity

import "strings"

// Gender is the patient's recorded gender.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderOther:
		return true
	}
	return false
}

// Patient is owned by the clinical backend; the intake service only reads it,
// apart from registration.
type Patient struct {
	ID          ID     `json:"id"`
	FullName    string `json:"fullName"`
	PatientCode string `json:"patientCode"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

// Matches reports whether query is a case-insensitive substring of the patient's
// name or code. An empty query matches every patient.
func (p *Patient) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.FullName), query) ||
		strings.Contains(strings.ToLower(p.PatientCode), query)
}
