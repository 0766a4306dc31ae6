package repository

import (
	"context"

	"tb-intake/internal/domain/entity"
)

// PatientRepository reads and registers patients on the clinical backend.
type PatientRepository interface {
	FindByID(ctx context.Context, id entity.ID) (*entity.Patient, error)
	FindAll(ctx context.Context) ([]entity.Patient, error)
	Create(ctx context.Context, patient *entity.Patient) (*entity.Patient, error)
}
