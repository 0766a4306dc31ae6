package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tb-intake/internal/domain/entity"
	"tb-intake/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	diagnoses *mockDiagnosisRepository
	reports   *mockReportRepository
	notifier  *recordingNotifier
	navigator *recordingNavigator
}

func newPipelineFixture() *pipelineFixture {
	return &pipelineFixture{
		diagnoses: &mockDiagnosisRepository{},
		reports:   &mockReportRepository{},
		notifier:  &recordingNotifier{},
		navigator: &recordingNavigator{},
	}
}

func (f *pipelineFixture) pipeline(opts ...PipelineOption) *SubmissionPipeline {
	return NewSubmissionPipeline(quietLogger(), f.diagnoses, f.reports, f.notifier, f.navigator, opts...)
}

func TestSubmissionPipeline_Success(t *testing.T) {
	f := newPipelineFixture()
	answers := allYes()
	ctx := context.Background()

	f.diagnoses.On("Create", ctx, &entity.Diagnosis{PatientID: "42", Answers: answers}, "").
		Return(entity.ID("7"), nil).Once()
	f.reports.On("Generate", ctx, entity.ID("7")).Return("Report ready", nil).Once()

	var states []entity.SubmissionStatus
	p := f.pipeline(WithStateListener(func(s entity.SubmissionStatus) { states = append(states, s) }))

	result, err := p.Submit(ctx, "42", answers)
	require.NoError(t, err)

	assert.Equal(t, entity.ID("7"), result.DiagnosisID)
	assert.Equal(t, "Report ready", result.Message)
	assert.Equal(t, "/reports/42", result.Target)
	assert.Equal(t, []note{
		{entity.SeveritySuccess, "Diagnosis created!"},
		{entity.SeveritySuccess, "Report ready"},
	}, f.notifier.all())
	assert.Equal(t, []string{"/reports/42"}, f.navigator.all())
	assert.Equal(t, []entity.SubmissionStatus{
		entity.SubmissionCreatingDiagnosis,
		entity.SubmissionGeneratingReport,
		entity.SubmissionCompleted,
	}, states)
	assert.Equal(t, entity.SubmissionCompleted, p.State())
	f.diagnoses.AssertExpectations(t)
	f.reports.AssertExpectations(t)
}

func TestSubmissionPipeline_DefaultReportMessage(t *testing.T) {
	f := newPipelineFixture()
	f.diagnoses.On("Create", mock.Anything, mock.Anything, "").Return(entity.ID("7"), nil)
	f.reports.On("Generate", mock.Anything, entity.ID("7")).Return("", nil)

	result, err := f.pipeline().Submit(context.Background(), "42", entity.AnswerMap{})
	require.NoError(t, err)

	assert.Equal(t, "Report generated successfully", result.Message)
	assert.Equal(t, "Report generated successfully", f.notifier.all()[1].Message)
}

func TestSubmissionPipeline_CreateDiagnosisFails(t *testing.T) {
	f := newPipelineFixture()
	backendErr := &repository.APIError{Operation: "create diagnosis", StatusCode: 422, Message: "patient is archived"}
	f.diagnoses.On("Create", mock.Anything, mock.Anything, "").Return(entity.ID(""), backendErr).Once()

	p := f.pipeline()
	_, err := p.Submit(context.Background(), "42", allYes())

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, PhaseCreateDiagnosis, subErr.Phase)
	assert.True(t, subErr.DiagnosisID.IsZero())
	assert.Equal(t, []note{{entity.SeverityError, "patient is archived"}}, f.notifier.all())
	assert.Empty(t, f.navigator.all())
	assert.Equal(t, entity.SubmissionFailed, p.State())
	f.reports.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSubmissionPipeline_GenericFailureMessage(t *testing.T) {
	f := newPipelineFixture()
	f.diagnoses.On("Create", mock.Anything, mock.Anything, "").Return(entity.ID(""), errors.New("connection refused"))

	_, err := f.pipeline().Submit(context.Background(), "42", allYes())
	require.Error(t, err)

	assert.Equal(t, []note{{entity.SeverityError, "Failed to submit diagnosis / generate report"}}, f.notifier.all())
}

func TestSubmissionPipeline_ReportFailsThenRetry(t *testing.T) {
	f := newPipelineFixture()
	ctx := context.Background()
	f.diagnoses.On("Create", mock.Anything, mock.Anything, "").Return(entity.ID("7"), nil).Once()
	f.reports.On("Generate", mock.Anything, entity.ID("7")).Return("", errors.New("timeout")).Once()

	p := f.pipeline()
	_, err := p.Submit(ctx, "42", allYes())

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, PhaseGenerateReport, subErr.Phase)
	assert.Equal(t, entity.ID("7"), subErr.DiagnosisID)
	assert.Equal(t, entity.ID("7"), p.DiagnosisID())
	assert.Empty(t, f.navigator.all())

	f.reports.On("Generate", mock.Anything, entity.ID("7")).Return("Report ready", nil).Once()
	result, err := p.RetryReport(ctx, "42", subErr.DiagnosisID)
	require.NoError(t, err)

	assert.Equal(t, "/reports/42", result.Target)
	assert.Equal(t, []string{"/reports/42"}, f.navigator.all())
	f.diagnoses.AssertNumberOfCalls(t, "Create", 1)
	f.reports.AssertNumberOfCalls(t, "Generate", 2)
}

func TestSubmissionPipeline_RetryReportWithoutDiagnosis(t *testing.T) {
	f := newPipelineFixture()

	_, err := f.pipeline().RetryReport(context.Background(), "42", "")
	assert.ErrorIs(t, err, ErrNoPendingReport)
}

func TestSubmissionPipeline_SingleFlight(t *testing.T) {
	f := newPipelineFixture()
	release := make(chan struct{})
	started := make(chan struct{})

	f.diagnoses.On("Create", mock.Anything, mock.Anything, "").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(entity.ID("7"), nil).Once()
	f.reports.On("Generate", mock.Anything, entity.ID("7")).Return("", nil).Once()

	p := f.pipeline()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = p.Submit(ctx, "42", allYes())
	}()

	<-started
	_, err := p.Submit(ctx, "42", allYes())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	f.diagnoses.AssertNumberOfCalls(t, "Create", 1)

	// the guard is released once the pipeline finishes
	f.diagnoses.On("Create", mock.Anything, mock.Anything, "").Return(entity.ID("8"), nil).Once()
	f.reports.On("Generate", mock.Anything, entity.ID("8")).Return("", nil).Once()
	_, err = p.Submit(ctx, "42", allYes())
	assert.NoError(t, err)
}

func TestSubmissionPipeline_NavigationIsDeferred(t *testing.T) {
	f := newPipelineFixture()
	f.diagnoses.On("Create", mock.Anything, mock.Anything, "").Return(entity.ID("7"), nil)
	f.reports.On("Generate", mock.Anything, entity.ID("7")).Return("", nil)

	p := f.pipeline(WithNavigationDelay(1500 * time.Millisecond))
	var scheduled time.Duration
	var fire func()
	p.afterFunc = func(d time.Duration, fn func()) {
		scheduled = d
		fire = fn
	}

	_, err := p.Submit(context.Background(), "42", allYes())
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, scheduled)
	assert.Empty(t, f.navigator.all())

	fire()
	assert.Equal(t, []string{"/reports/42"}, f.navigator.all())
}

func TestSubmissionPipeline_IdempotencyKeyAndAudit(t *testing.T) {
	f := newPipelineFixture()
	audit := &mockAuditService{}
	f.diagnoses.On("Create", mock.Anything, mock.Anything, "key-1").Return(entity.ID("7"), nil).Once()
	f.reports.On("Generate", mock.Anything, entity.ID("7")).Return("", nil).Once()
	audit.On("LogEvent", mock.Anything, "wizard:s1", entity.ID("42"), entity.AuditActionDiagnosisCreate, mock.Anything).
		Return(errors.New("db down")).Once()
	audit.On("LogEvent", mock.Anything, "wizard:s1", entity.ID("42"), entity.AuditActionReportGenerate, mock.Anything).
		Return(nil).Once()

	p := f.pipeline(WithIdempotencyKey("key-1"), WithAudit(audit, "wizard:s1"))
	_, err := p.Submit(context.Background(), "42", allYes())

	require.NoError(t, err)
	f.diagnoses.AssertExpectations(t)
	audit.AssertExpectations(t)
}
