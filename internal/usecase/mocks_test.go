package usecase

import (
	"context"
	"io"
	"sync"

	"tb-intake/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type mockPatientRepository struct {
	mock.Mock
}

func (m *mockPatientRepository) FindByID(ctx context.Context, id entity.ID) (*entity.Patient, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*entity.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPatientRepository) FindAll(ctx context.Context) ([]entity.Patient, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]entity.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPatientRepository) Create(ctx context.Context, patient *entity.Patient) (*entity.Patient, error) {
	args := m.Called(ctx, patient)
	if p := args.Get(0); p != nil {
		return p.(*entity.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDiagnosisRepository struct {
	mock.Mock
}

func (m *mockDiagnosisRepository) Create(ctx context.Context, diagnosis *entity.Diagnosis, idempotencyKey string) (entity.ID, error) {
	args := m.Called(ctx, diagnosis, idempotencyKey)
	return args.Get(0).(entity.ID), args.Error(1)
}

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) Generate(ctx context.Context, diagnosisID entity.ID) (string, error) {
	args := m.Called(ctx, diagnosisID)
	return args.String(0), args.Error(1)
}

func (m *mockReportRepository) FindByPatientID(ctx context.Context, patientID entity.ID) ([]entity.Report, error) {
	args := m.Called(ctx, patientID)
	if r := args.Get(0); r != nil {
		return r.([]entity.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuditService struct {
	mock.Mock
}

func (m *mockAuditService) LogEvent(ctx context.Context, actor string, patientID entity.ID, action string, metadata entity.JSON) error {
	args := m.Called(ctx, actor, patientID, action, metadata)
	return args.Error(0)
}

func (m *mockAuditService) History(ctx context.Context, patientID entity.ID) ([]entity.AuditLog, error) {
	args := m.Called(ctx, patientID)
	if l := args.Get(0); l != nil {
		return l.([]entity.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditService) Find(ctx context.Context, id int64) (*entity.AuditLog, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*entity.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

type note struct {
	Severity entity.Severity
	Message  string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) Notify(severity entity.Severity, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{severity, message})
}

func (n *recordingNotifier) all() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]note(nil), n.notes...)
}

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func (n *recordingNavigator) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func allYes() entity.AnswerMap {
	var answers entity.AnswerMap
	for _, q := range entity.Questions() {
		answers, _ = answers.SetAnswer(q.Key, true)
	}
	return answers
}
