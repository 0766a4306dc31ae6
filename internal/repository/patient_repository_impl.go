package repository

import (
	"context"

	"tb-intake/internal/domain/entity"
	domainRepo "tb-intake/internal/domain/repository"

	"github.com/go-resty/resty/v2"
)

type patientRepository struct {
	client *resty.Client
}

func NewPatientRepository(client *resty.Client) domainRepo.PatientRepository {
	return &patientRepository{client: client}
}

func (r *patientRepository) FindByID(ctx context.Context, id entity.ID) (*entity.Patient, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("id", id.String()).
		Get("/patients/{id}")

	var patient entity.Patient
	if _, err := decode("fetch patient", resp, err, &patient); err != nil {
		return nil, err
	}
	if patient.ID.IsZero() {
		return nil, &domainRepo.APIError{Operation: "fetch patient", StatusCode: 404}
	}
	return &patient, nil
}

func (r *patientRepository) FindAll(ctx context.Context) ([]entity.Patient, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		Get("/patients")

	var patients []entity.Patient
	if _, err := decode("list patients", resp, err, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *entity.Patient) (*entity.Patient, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"fullName": patient.FullName,
			"age":      patient.Age,
			"gender":   patient.Gender,
			"phone":    patient.Phone,
			"address":  patient.Address,
		}).
		Post("/patients")

	var created entity.Patient
	if _, err := decode("register patient", resp, err, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
