package usecase

import (
	"context"
	"errors"
	"fmt"

	"tb-intake/internal/converter"
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/internal/domain/repository"
	"tb-intake/internal/service"

	"github.com/sirupsen/logrus"
)

type PatientUsecase interface {
	List(ctx context.Context, search string) (*dto.PatientListResponse, error)
	Get(ctx context.Context, patientID string) (*dto.PatientResponse, error)
	Register(ctx context.Context, req *dto.PatientRegisterRequest) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	auditService service.AuditService
}

func NewPatientUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		log:          log,
		patientRepo:  patientRepo,
		auditService: auditService,
	}
}

// List returns every patient whose name or code contains search.
func (u *patientUsecase) List(ctx context.Context, search string) (*dto.PatientListResponse, error) {
	patients, err := u.patientRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find patients: %+v", err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}

	matched := make([]entity.Patient, 0, len(patients))
	for i := range patients {
		if patients[i].Matches(search) {
			matched = append(matched, patients[i])
		}
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(matched),
		Total:    len(matched),
	}, nil
}

func (u *patientUsecase) Get(ctx context.Context, patientID string) (*dto.PatientResponse, error) {
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}

	patient, err := u.patientRepo.FindByID(ctx, entity.ID(patientID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) Register(ctx context.Context, req *dto.PatientRegisterRequest) (*dto.PatientResponse, error) {
	patient := converter.RegisterRequestToPatient(req)
	if !patient.Gender.Valid() {
		return nil, fmt.Errorf("%w: gender %q", ErrRegistrationFailed, req.Gender)
	}

	created, err := u.patientRepo.Create(ctx, patient)
	if err != nil {
		u.log.Warnf("Failed to register patient: %+v", err)
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	if err := u.auditService.LogEvent(ctx, "operator", created.ID, entity.AuditActionPatientRegister, entity.JSON{
		"patient_code": created.PatientCode,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return converter.PatientToResponse(created), nil
}
