package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tb-intake/internal/converter"
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/internal/domain/repository"
	"tb-intake/internal/report"
	"tb-intake/internal/service"

	"github.com/sirupsen/logrus"
)

type ReportUsecase interface {
	// ListForPatient never fails on backend errors: they become notifications and the
	// affected part of the view is left empty.
	ListForPatient(ctx context.Context, patientID string) (*dto.PatientReportsResponse, error)
	Print(ctx context.Context, patientID, reportID string, surface report.PrintSurface) (*report.Document, error)
}

type reportUsecase struct {
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	reportRepo   repository.ReportRepository
	renderer     *report.Renderer
	auditService service.AuditService
}

func NewReportUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	reportRepo repository.ReportRepository,
	renderer *report.Renderer,
	auditService service.AuditService,
) ReportUsecase {
	return &reportUsecase{
		log:          log,
		patientRepo:  patientRepo,
		reportRepo:   reportRepo,
		renderer:     renderer,
		auditService: auditService,
	}
}

func (u *reportUsecase) ListForPatient(ctx context.Context, patientID string) (*dto.PatientReportsResponse, error) {
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}
	id := entity.ID(patientID)

	resp := &dto.PatientReportsResponse{Reports: []dto.ReportResponse{}}
	var notes []entity.Notification

	patient, err := u.patientRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		notes = append(notes, loadFailure(err, msgPatientLoadFailed))
	} else {
		resp.Patient = converter.PatientToResponse(patient)
	}

	reports, err := u.reportRepo.FindByPatientID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find reports for patient %s: %+v", patientID, err)
		notes = append(notes, loadFailure(err, msgReportsLoadFailed))
	} else {
		resp.Reports = converter.ReportsToResponses(reports)
	}

	resp.Notifications = converter.NotificationsToResponses(notes)
	return resp, nil
}

// Print renders one report and hands the document to surface exactly once.
func (u *reportUsecase) Print(ctx context.Context, patientID, reportID string, surface report.PrintSurface) (*report.Document, error) {
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}
	id := entity.ID(patientID)

	patient, err := u.patientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}

	reports, err := u.reportRepo.FindByPatientID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find reports for patient %s: %+v", patientID, err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}

	var selected *entity.Report
	for i := range reports {
		if reports[i].ID.String() == reportID {
			selected = &reports[i]
			break
		}
	}
	if selected == nil {
		return nil, ErrReportNotFound
	}

	doc, err := u.renderer.Print(ctx, surface, patient, report.FormatText(selected.ReportText))
	if err != nil {
		u.log.Warnf("Failed to print report %s: %+v", reportID, err)
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, "operator", id, entity.AuditActionReportPrint, entity.JSON{
		"report_id": reportID,
		"document":  doc.Name,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return &doc, nil
}

func loadFailure(err error, fallback string) entity.Notification {
	message := fallback
	if errors.Is(err, repository.ErrNotFound) && fallback == msgPatientLoadFailed {
		message = msgPatientNotFound
	} else if msg := repository.BackendMessage(err); msg != "" {
		message = msg
	}
	return entity.Notification{Severity: entity.SeverityError, Message: message, At: time.Now().UTC()}
}
