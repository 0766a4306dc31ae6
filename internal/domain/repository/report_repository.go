package repository

import (
	"context"

	"tb-intake/internal/domain/entity"
)

type ReportRepository interface {
	// Generate asks the backend to compose a report for the diagnosis and returns the
	// backend's message, which may be empty.
	Generate(ctx context.Context, diagnosisID entity.ID) (string, error)
	FindByPatientID(ctx context.Context, patientID entity.ID) ([]entity.Report, error)
}
