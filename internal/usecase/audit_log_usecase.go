package usecase

import (
	"context"
	"errors"

	"tb-intake/internal/converter"
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
)

type AuditLogUsecase interface {
	GetPatientHistory(ctx context.Context, patientID string) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditService service.AuditService
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditService service.AuditService,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditService: auditService,
	}
}

func (u *auditLogUsecase) GetPatientHistory(ctx context.Context, patientID string) (*dto.AuditLogListResponse, error) {
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}

	logs, err := u.auditService.History(ctx, entity.ID(patientID))
	if err != nil {
		u.log.Warnf("Failed to find audit logs for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditService.Find(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
