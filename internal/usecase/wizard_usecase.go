package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tb-intake/config"
	"tb-intake/internal/converter"
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/internal/domain/repository"
	"tb-intake/internal/service"
	"tb-intake/internal/wizard"
	"tb-intake/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const submitLockTTL = 2 * time.Minute

type WizardUsecase interface {
	Open(ctx context.Context, req *dto.WizardOpenRequest) (*dto.WizardOpenResponse, error)
	Get(ctx context.Context, sessionID string) (*dto.WizardResponse, error)
	Answer(ctx context.Context, sessionID string, req *dto.WizardAnswerRequest) (*dto.WizardResponse, error)
	GoBack(ctx context.Context, sessionID string) (*dto.WizardResponse, error)
	RestartFromFirst(ctx context.Context, sessionID string) (*dto.WizardResponse, error)
	// Submit and RetryReport return the updated view together with a *SubmissionError
	// when the backend rejected a phase.
	Submit(ctx context.Context, sessionID string) (*dto.WizardResponse, error)
	RetryReport(ctx context.Context, sessionID string) (*dto.WizardResponse, error)
	Discard(ctx context.Context, sessionID string) error
}

type wizardUsecase struct {
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	diagnosisRepo   repository.DiagnosisRepository
	reportRepo      repository.ReportRepository
	sessionRepo     repository.WizardSessionRepository
	auditService    service.AuditService
	jwtService      *jwt.JWTService
	cfg             config.WizardConfig
	idempotencyKeys bool
	now             func() time.Time
}

func NewWizardUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	diagnosisRepo repository.DiagnosisRepository,
	reportRepo repository.ReportRepository,
	sessionRepo repository.WizardSessionRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	cfg config.WizardConfig,
	idempotencyKeys bool,
) WizardUsecase {
	return &wizardUsecase{
		log:             log,
		patientRepo:     patientRepo,
		diagnosisRepo:   diagnosisRepo,
		reportRepo:      reportRepo,
		sessionRepo:     sessionRepo,
		auditService:    auditService,
		jwtService:      jwtService,
		cfg:             cfg,
		idempotencyKeys: idempotencyKeys,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Open starts a wizard for a patient. A patient that cannot be loaded does not block the
// wizard: the failure is queued as a notification.
func (u *wizardUsecase) Open(ctx context.Context, req *dto.WizardOpenRequest) (*dto.WizardOpenResponse, error) {
	if req.PatientID == "" {
		return nil, ErrInvalidPatientID
	}

	now := u.now()
	session := &entity.WizardSession{
		ID:             uuid.New().String(),
		PatientID:      entity.ID(req.PatientID),
		Status:         entity.SubmissionIdle,
		IdempotencyKey: uuid.New().String(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	patient, err := u.patientRepo.FindByID(ctx, session.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		note := loadFailure(err, msgPatientLoadFailed)
		session.Notify(note.Severity, note.Message)
	} else {
		session.Patient = patient
	}

	token, err := u.jwtService.GenerateSessionToken(session.ID, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to sign wizard session token: %+v", err)
		return nil, err
	}

	notes := session.DrainNotifications()
	if err := u.sessionRepo.Save(ctx, session, u.cfg.SessionTTL); err != nil {
		u.log.Warnf("Failed to save wizard session: %+v", err)
		return nil, err
	}

	u.audit(ctx, session, entity.AuditActionWizardOpen, entity.JSON{"session_id": session.ID})

	return &dto.WizardOpenResponse{
		Token:     token,
		ExpiresIn: int64(u.jwtService.GetSessionExpiry().Seconds()),
		Wizard:    converter.WizardSessionToResponse(session, notes),
	}, nil
}

func (u *wizardUsecase) Get(ctx context.Context, sessionID string) (*dto.WizardResponse, error) {
	session, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	notes := session.DrainNotifications()
	if len(notes) > 0 {
		if err := u.save(ctx, session); err != nil {
			return nil, err
		}
	}

	return converter.WizardSessionToResponse(session, notes), nil
}

func (u *wizardUsecase) Answer(ctx context.Context, sessionID string, req *dto.WizardAnswerRequest) (*dto.WizardResponse, error) {
	key, err := entity.ParseSymptomKey(req.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}
	if req.Value == nil {
		return nil, fmt.Errorf("%w: value is required", ErrInvalidAnswer)
	}

	return u.edit(ctx, sessionID, func(ctrl *wizard.Controller) error {
		if err := ctrl.Answer(key, *req.Value); err != nil {
			if errors.Is(err, wizard.ErrWizardComplete) {
				return ErrWizardInReview
			}
			return err
		}
		return nil
	})
}

func (u *wizardUsecase) GoBack(ctx context.Context, sessionID string) (*dto.WizardResponse, error) {
	return u.edit(ctx, sessionID, func(ctrl *wizard.Controller) error {
		ctrl.GoBack()
		return nil
	})
}

func (u *wizardUsecase) RestartFromFirst(ctx context.Context, sessionID string) (*dto.WizardResponse, error) {
	return u.edit(ctx, sessionID, func(ctrl *wizard.Controller) error {
		ctrl.RestartFromFirst()
		return nil
	})
}

// edit applies fn to the session's controller. Edits are refused while the submit lock is
// held and after a diagnosis was created.
func (u *wizardUsecase) edit(ctx context.Context, sessionID string, fn func(*wizard.Controller) error) (*dto.WizardResponse, error) {
	if err := u.ensureUnlocked(ctx, sessionID); err != nil {
		return nil, err
	}

	session, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	u.settleStale(session)
	if !session.DiagnosisID.IsZero() {
		return nil, ErrAnswersLocked
	}

	ctrl := wizard.Restore(session.Step, session.Answers)
	if err := fn(ctrl); err != nil {
		return nil, err
	}

	session.Step = ctrl.Step()
	session.Answers = ctrl.Answers()
	session.Status = entity.SubmissionIdle

	notes := session.DrainNotifications()
	if err := u.save(ctx, session); err != nil {
		return nil, err
	}

	return converter.WizardSessionToResponse(session, notes), nil
}

func (u *wizardUsecase) Submit(ctx context.Context, sessionID string) (*dto.WizardResponse, error) {
	return u.withSubmitLock(ctx, sessionID, func(session *entity.WizardSession) (*dto.WizardResponse, error) {
		if session.AwaitingReport() {
			return nil, ErrAnswersLocked
		}
		if !wizard.Restore(session.Step, session.Answers).InReview() {
			return nil, ErrWizardNotInReview
		}

		pipeline := u.pipeline(ctx, session)
		_, err := pipeline.Submit(ctx, session.PatientID, session.Answers)
		return u.finish(ctx, session, pipeline, err)
	})
}

func (u *wizardUsecase) RetryReport(ctx context.Context, sessionID string) (*dto.WizardResponse, error) {
	return u.withSubmitLock(ctx, sessionID, func(session *entity.WizardSession) (*dto.WizardResponse, error) {
		if !session.AwaitingReport() {
			return nil, ErrNoPendingReport
		}

		pipeline := u.pipeline(ctx, session)
		_, err := pipeline.RetryReport(ctx, session.PatientID, session.DiagnosisID)
		return u.finish(ctx, session, pipeline, err)
	})
}

func (u *wizardUsecase) Discard(ctx context.Context, sessionID string) error {
	if err := u.ensureUnlocked(ctx, sessionID); err != nil {
		return err
	}
	if err := u.sessionRepo.Delete(ctx, sessionID); err != nil {
		u.log.Warnf("Failed to delete wizard session %s: %+v", sessionID, err)
		return err
	}
	return nil
}

// withSubmitLock runs fn on a freshly loaded session while holding the session's submit
// lock. The lock spans the load, both phases and the final save or delete, so no other
// request can observe or resubmit an intermediate state.
func (u *wizardUsecase) withSubmitLock(ctx context.Context, sessionID string, fn func(*entity.WizardSession) (*dto.WizardResponse, error)) (*dto.WizardResponse, error) {
	token, ok, err := u.sessionRepo.AcquireSubmitLock(ctx, sessionID, submitLockTTL)
	if err != nil {
		u.log.Warnf("Failed to acquire submit lock for session %s: %+v", sessionID, err)
		return nil, err
	}
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	defer func() {
		if err := u.sessionRepo.ReleaseSubmitLock(context.WithoutCancel(ctx), sessionID, token); err != nil {
			u.log.Warnf("Failed to release submit lock for session %s: %+v", sessionID, err)
		}
	}()

	session, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == entity.SubmissionCompleted {
		return nil, ErrAlreadySubmitted
	}
	u.settleStale(session)

	return fn(session)
}

func (u *wizardUsecase) ensureUnlocked(ctx context.Context, sessionID string) error {
	held, err := u.sessionRepo.SubmitLockHeld(ctx, sessionID)
	if err != nil {
		u.log.Warnf("Failed to check submit lock for session %s: %+v", sessionID, err)
		return err
	}
	if held {
		return ErrSubmissionInProgress
	}
	return nil
}

// settleStale marks an in-flight state whose holder no longer has the submit lock as
// failed, so a diagnosis it created is offered for report retry instead of resubmission.
func (u *wizardUsecase) settleStale(session *entity.WizardSession) {
	if submitting(session.Status) {
		u.log.Warnf("Wizard session %s was left in state %s, marking it failed", session.ID, session.Status)
		session.Status = entity.SubmissionFailed
	}
}

// pipeline binds a SubmissionPipeline to the session: notifications and the redirect are
// recorded on it and every state change is persisted.
func (u *wizardUsecase) pipeline(ctx context.Context, session *entity.WizardSession) *SubmissionPipeline {
	opts := []PipelineOption{
		WithAudit(u.auditService, actor(session)),
		WithStateListener(func(status entity.SubmissionStatus) {
			session.Status = status
			if err := u.save(ctx, session); err != nil {
				u.log.Warnf("Failed to persist submission state %s: %+v", status, err)
			}
		}),
	}
	if u.idempotencyKeys {
		opts = append(opts, WithIdempotencyKey(session.IdempotencyKey))
	}

	return NewSubmissionPipeline(
		u.log,
		u.diagnosisRepo,
		u.reportRepo,
		service.NewSessionNotifier(session),
		service.NewSessionNavigator(session, u.cfg.NavigationDelay),
		opts...,
	)
}

func (u *wizardUsecase) finish(ctx context.Context, session *entity.WizardSession, pipeline *SubmissionPipeline, err error) (*dto.WizardResponse, error) {
	if errors.Is(err, ErrSubmissionInProgress) {
		return nil, err
	}

	var subErr *SubmissionError
	if err != nil && !errors.As(err, &subErr) {
		return nil, err
	}

	if id := pipeline.DiagnosisID(); !id.IsZero() {
		session.DiagnosisID = id
	}
	notes := session.DrainNotifications()
	resp := converter.WizardSessionToResponse(session, notes)

	if subErr != nil {
		if saveErr := u.save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		return resp, subErr
	}

	if delErr := u.sessionRepo.Delete(ctx, session.ID); delErr != nil {
		u.log.Warnf("Failed to delete completed wizard session %s: %+v", session.ID, delErr)
	}
	return resp, nil
}

func (u *wizardUsecase) load(ctx context.Context, sessionID string) (*entity.WizardSession, error) {
	session, err := u.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		u.log.Warnf("Failed to find wizard session %s: %+v", sessionID, err)
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (u *wizardUsecase) save(ctx context.Context, session *entity.WizardSession) error {
	session.UpdatedAt = u.now()
	if err := u.sessionRepo.Save(ctx, session, u.cfg.SessionTTL); err != nil {
		u.log.Warnf("Failed to save wizard session %s: %+v", session.ID, err)
		return err
	}
	return nil
}

func (u *wizardUsecase) audit(ctx context.Context, session *entity.WizardSession, action string, metadata entity.JSON) {
	if err := u.auditService.LogEvent(ctx, actor(session), session.PatientID, action, metadata); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
}

func actor(session *entity.WizardSession) string {
	return "wizard:" + session.ID
}

func submitting(status entity.SubmissionStatus) bool {
	return status == entity.SubmissionCreatingDiagnosis || status == entity.SubmissionGeneratingReport
}
