package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tb-intake/internal/domain/entity"
	"tb-intake/internal/domain/repository"
	"tb-intake/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrNoPendingReport      = errors.New("no diagnosis is waiting for a report")
)

const (
	msgDiagnosisCreated   = "Diagnosis created!"
	msgReportGenerated    = "Report generated successfully"
	msgSubmissionFailed   = "Failed to submit diagnosis / generate report"
	msgReportRetryAdvised = "Failed to generate report. The diagnosis was saved; generate the report again."
)

// Notifier surfaces messages to the operator.
type Notifier interface {
	Notify(severity entity.Severity, message string)
}

// Navigator moves the operator to another view.
type Navigator interface {
	Navigate(target string)
}

// SubmitGuard allows at most one submission at a time for a wizard instance.
type SubmitGuard interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// SubmissionPhase names the network step that failed.
type SubmissionPhase string

const (
	PhaseCreateDiagnosis SubmissionPhase = "create_diagnosis"
	PhaseGenerateReport  SubmissionPhase = "generate_report"
)

// SubmissionError is a failed submission. For PhaseGenerateReport the diagnosis exists
// and DiagnosisID identifies it.
type SubmissionError struct {
	Phase       SubmissionPhase
	DiagnosisID entity.ID
	Message     string
	Err         error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed at %s: %v", e.Phase, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// SubmissionResult describes a completed submission.
type SubmissionResult struct {
	DiagnosisID entity.ID
	Message     string
	Target      string
}

// ReportsTarget is the navigation target of a patient's report view.
func ReportsTarget(patientID entity.ID) string {
	return "/reports/" + patientID.String()
}

type localGuard struct {
	busy atomic.Bool
}

// NewLocalGuard returns an in-process SubmitGuard.
func NewLocalGuard() SubmitGuard {
	return &localGuard{}
}

func (g *localGuard) TryAcquire(context.Context) (bool, error) {
	return g.busy.CompareAndSwap(false, true), nil
}

func (g *localGuard) Release(context.Context) {
	g.busy.Store(false)
}

// PipelineOption configures a SubmissionPipeline.
type PipelineOption func(*SubmissionPipeline)

func WithNavigationDelay(d time.Duration) PipelineOption {
	return func(p *SubmissionPipeline) { p.navigationDelay = d }
}

// WithAudit records successful phases under actor.
func WithAudit(audit service.AuditService, actor string) PipelineOption {
	return func(p *SubmissionPipeline) {
		p.audit = audit
		p.actor = actor
	}
}

// WithIdempotencyKey attaches key to every create-diagnosis call of this pipeline.
func WithIdempotencyKey(key string) PipelineOption {
	return func(p *SubmissionPipeline) { p.idempotencyKey = key }
}

// WithStateListener is called on every state transition.
func WithStateListener(fn func(entity.SubmissionStatus)) PipelineOption {
	return func(p *SubmissionPipeline) { p.onState = fn }
}

// SubmissionPipeline creates a diagnosis, then generates its report, then schedules
// navigation to the patient's reports. Phase B never runs unless Phase A succeeded,
// and nothing is retried automatically.
type SubmissionPipeline struct {
	log           *logrus.Logger
	diagnosisRepo repository.DiagnosisRepository
	reportRepo    repository.ReportRepository
	notifier      Notifier
	navigator     Navigator

	guard           SubmitGuard
	navigationDelay time.Duration
	afterFunc       func(time.Duration, func())
	audit           service.AuditService
	actor           string
	idempotencyKey  string
	onState         func(entity.SubmissionStatus)

	mu          sync.Mutex
	state       entity.SubmissionStatus
	diagnosisID entity.ID
}

func NewSubmissionPipeline(
	log *logrus.Logger,
	diagnosisRepo repository.DiagnosisRepository,
	reportRepo repository.ReportRepository,
	notifier Notifier,
	navigator Navigator,
	opts ...PipelineOption,
) *SubmissionPipeline {
	p := &SubmissionPipeline{
		log:           log,
		diagnosisRepo: diagnosisRepo,
		reportRepo:    reportRepo,
		notifier:      notifier,
		navigator:     navigator,
		guard:         NewLocalGuard(),
		afterFunc:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		audit:         service.NewNoopAuditService(),
		state:         entity.SubmissionIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current pipeline state.
func (p *SubmissionPipeline) State() entity.SubmissionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// DiagnosisID returns the diagnosis created by the last Phase A success, if any.
func (p *SubmissionPipeline) DiagnosisID() entity.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.diagnosisID
}

// Submit runs both phases for the given answers.
func (p *SubmissionPipeline) Submit(ctx context.Context, patientID entity.ID, answers entity.AnswerMap) (*SubmissionResult, error) {
	if !answers.IsComplete() {
		return nil, fmt.Errorf("answers for patient %s are incomplete", patientID)
	}

	if err := p.acquire(ctx); err != nil {
		return nil, err
	}

	p.setState(entity.SubmissionCreatingDiagnosis)
	diagnosis := &entity.Diagnosis{PatientID: patientID, Answers: answers}
	diagnosisID, err := p.diagnosisRepo.Create(ctx, diagnosis, p.idempotencyKey)
	if err != nil {
		p.log.Warnf("Failed to create diagnosis for patient %s: %+v", patientID, err)
		return nil, p.fail(ctx, PhaseCreateDiagnosis, "", p.failureMessage(err, msgSubmissionFailed), err)
	}

	p.mu.Lock()
	p.diagnosisID = diagnosisID
	p.mu.Unlock()

	p.notifier.Notify(entity.SeveritySuccess, msgDiagnosisCreated)
	p.record(ctx, patientID, entity.AuditActionDiagnosisCreate, entity.JSON{
		"diagnosis_id": diagnosisID.String(),
		"positive":     answers.Positive(),
	})
	p.log.Infof("Diagnosis created: id=%s, patient=%s", diagnosisID, patientID)

	return p.generateReport(ctx, patientID, diagnosisID)
}

// RetryReport runs Phase B alone for a diagnosis whose report generation failed.
func (p *SubmissionPipeline) RetryReport(ctx context.Context, patientID, diagnosisID entity.ID) (*SubmissionResult, error) {
	if diagnosisID.IsZero() {
		return nil, ErrNoPendingReport
	}

	if err := p.acquire(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.diagnosisID = diagnosisID
	p.mu.Unlock()

	return p.generateReport(ctx, patientID, diagnosisID)
}

func (p *SubmissionPipeline) generateReport(ctx context.Context, patientID, diagnosisID entity.ID) (*SubmissionResult, error) {
	p.setState(entity.SubmissionGeneratingReport)
	message, err := p.reportRepo.Generate(ctx, diagnosisID)
	if err != nil {
		p.log.Warnf("Failed to generate report for diagnosis %s: %+v", diagnosisID, err)
		return nil, p.fail(ctx, PhaseGenerateReport, diagnosisID, p.failureMessage(err, msgReportRetryAdvised), err)
	}

	if message == "" {
		message = msgReportGenerated
	}
	p.notifier.Notify(entity.SeveritySuccess, message)
	p.record(ctx, patientID, entity.AuditActionReportGenerate, entity.JSON{
		"diagnosis_id": diagnosisID.String(),
	})
	p.setState(entity.SubmissionCompleted)

	target := ReportsTarget(patientID)
	p.schedule(target)
	p.guard.Release(ctx)

	p.log.Infof("Report generated: diagnosis=%s, patient=%s", diagnosisID, patientID)
	return &SubmissionResult{DiagnosisID: diagnosisID, Message: message, Target: target}, nil
}

func (p *SubmissionPipeline) acquire(ctx context.Context) error {
	ok, err := p.guard.TryAcquire(ctx)
	if err != nil {
		p.log.Warnf("Failed to acquire submission guard: %+v", err)
		p.notifier.Notify(entity.SeverityError, msgSubmissionFailed)
		return fmt.Errorf("acquire submission guard: %w", err)
	}
	if !ok {
		return ErrSubmissionInProgress
	}
	return nil
}

func (p *SubmissionPipeline) fail(ctx context.Context, phase SubmissionPhase, diagnosisID entity.ID, message string, err error) error {
	p.setState(entity.SubmissionFailed)
	p.notifier.Notify(entity.SeverityError, message)
	p.guard.Release(ctx)
	return &SubmissionError{Phase: phase, DiagnosisID: diagnosisID, Message: message, Err: err}
}

func (p *SubmissionPipeline) failureMessage(err error, fallback string) string {
	if msg := repository.BackendMessage(err); msg != "" {
		return msg
	}
	return fallback
}

func (p *SubmissionPipeline) schedule(target string) {
	if p.navigationDelay <= 0 {
		p.navigator.Navigate(target)
		return
	}
	p.afterFunc(p.navigationDelay, func() { p.navigator.Navigate(target) })
}

func (p *SubmissionPipeline) record(ctx context.Context, patientID entity.ID, action string, metadata entity.JSON) {
	if err := p.audit.LogEvent(ctx, p.actor, patientID, action, metadata); err != nil {
		p.log.Warnf("Failed to audit %s for patient %s: %+v", action, patientID, err)
	}
}

func (p *SubmissionPipeline) setState(state entity.SubmissionStatus) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	if p.onState != nil {
		p.onState(state)
	}
}
