package service

import (
	"context"

	"tb-intake/internal/domain/entity"
	"tb-intake/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records intake events. Callers treat failures as non-fatal.
type AuditService interface {
	LogEvent(ctx context.Context, actor string, patientID entity.ID, action string, metadata entity.JSON) error
	History(ctx context.Context, patientID entity.ID) ([]entity.AuditLog, error)
	// Find returns nil, nil when no entry has the given id.
	Find(ctx context.Context, id int64) (*entity.AuditLog, error)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogEvent stores one audit entry
func (s *auditService) LogEvent(ctx context.Context, actor string, patientID entity.ID, action string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		Actor:     actor,
		PatientID: patientID.String(),
		Action:    action,
		Metadata:  metadata,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}

// History returns the audit trail of a patient, newest first
func (s *auditService) History(ctx context.Context, patientID entity.ID) ([]entity.AuditLog, error) {
	logs, err := s.auditRepo.FindByPatientID(s.db.WithContext(ctx), patientID.String())
	if err != nil {
		s.log.Warnf("Failed to load audit trail for patient %s: %+v", patientID, err)
		return nil, err
	}
	return logs, nil
}

func (s *auditService) Find(ctx context.Context, id int64) (*entity.AuditLog, error) {
	auditLog, err := s.auditRepo.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		s.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	return auditLog, nil
}

type noopAuditService struct{}

// NewNoopAuditService is used when no database is configured.
func NewNoopAuditService() AuditService {
	return noopAuditService{}
}

func (noopAuditService) LogEvent(context.Context, string, entity.ID, string, entity.JSON) error {
	return nil
}

func (noopAuditService) History(context.Context, entity.ID) ([]entity.AuditLog, error) {
	return nil, nil
}

func (noopAuditService) Find(context.Context, int64) (*entity.AuditLog, error) {
	return nil, nil
}
