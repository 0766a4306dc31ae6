package converter

import (
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:          patient.ID.String(),
		FullName:    patient.FullName,
		PatientCode: patient.PatientCode,
		Age:         patient.Age,
		Gender:      string(patient.Gender),
		Phone:       patient.Phone,
		Address:     patient.Address,
	}
}

// PatientsToResponses converts a slice of Patient entities to slice of PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}

// RegisterRequestToPatient converts a registration request to a Patient entity
func RegisterRequestToPatient(req *dto.PatientRegisterRequest) *entity.Patient {
	return &entity.Patient{
		FullName:    req.FullName,
		PatientCode: req.PatientCode,
		Age:         req.Age,
		Gender:      entity.Gender(req.Gender),
		Phone:       req.Phone,
		Address:     req.Address,
	}
}
