package repository

import (
	"context"

	"tb-intake/internal/domain/entity"
)

type DiagnosisRepository interface {
	// Create submits the diagnosis and returns the backend-assigned identifier.
	// idempotencyKey is sent to the backend when non-empty.
	Create(ctx context.Context, diagnosis *entity.Diagnosis, idempotencyKey string) (entity.ID, error)
}
