package repository

import (
	"context"
	"fmt"

	"tb-intake/internal/domain/entity"
	domainRepo "tb-intake/internal/domain/repository"

	"github.com/go-resty/resty/v2"
)

const idempotencyHeader = "Idempotency-Key"

type diagnosisRepository struct {
	client *resty.Client
}

func NewDiagnosisRepository(client *resty.Client) domainRepo.DiagnosisRepository {
	return &diagnosisRepository{client: client}
}

func (r *diagnosisRepository) Create(ctx context.Context, diagnosis *entity.Diagnosis, idempotencyKey string) (entity.ID, error) {
	payload := map[string]interface{}{
		"patientId": diagnosis.PatientID,
	}
	for key, value := range diagnosis.Answers.Fields() {
		payload[key] = value
	}

	req := r.client.R().
		SetContext(ctx).
		SetBody(payload)
	if idempotencyKey != "" {
		req.SetHeader(idempotencyHeader, idempotencyKey)
	}

	resp, err := req.Post("/diagnoses")

	var created struct {
		ID entity.ID `json:"id"`
	}
	if _, err := decode("create diagnosis", resp, err, &created); err != nil {
		return "", err
	}
	if created.ID.IsZero() {
		return "", &domainRepo.APIError{Operation: "create diagnosis", StatusCode: resp.StatusCode(), Err: fmt.Errorf("response carries no diagnosis id")}
	}
	return created.ID, nil
}
