package dto

// PatientResponse represents a patient in responses
type PatientResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	PatientCode string `json:"patient_code"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}

// Request DTOs

type PatientRegisterRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	PatientCode string `json:"patient_code" validate:"required,max=32"`
	Age         int    `json:"age" validate:"gte=0,lte=150"`
	Gender      string `json:"gender" validate:"required,oneof=female male other"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Address     string `json:"address" validate:"omitempty,max=255"`
}
