package repository

import (
	"context"

	"tb-intake/internal/domain/entity"
	domainRepo "tb-intake/internal/domain/repository"

	"github.com/go-resty/resty/v2"
)

type reportRepository struct {
	client *resty.Client
}

func NewReportRepository(client *resty.Client) domainRepo.ReportRepository {
	return &reportRepository{client: client}
}

func (r *reportRepository) Generate(ctx context.Context, diagnosisID entity.ID) (string, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"diagnosisId": diagnosisID}).
		Post("/reports")

	env, err := decode("generate report", resp, err, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (r *reportRepository) FindByPatientID(ctx context.Context, patientID entity.ID) ([]entity.Report, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("id", patientID.String()).
		Get("/reports/patient/{id}")

	var reports []entity.Report
	if _, err := decode("fetch reports", resp, err, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
