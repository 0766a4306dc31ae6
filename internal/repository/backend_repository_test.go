package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tb-intake/config"
	"tb-intake/internal/domain/entity"
	domainRepo "tb-intake/internal/domain/repository"
	"tb-intake/internal/infrastructure/backend"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClientConfig(url string) config.BackendConfig {
	return config.BackendConfig{BaseURL: url, Timeout: 2 * time.Second, RetryCount: 2}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestPatientRepository_FindByID(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/patients/17", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":17,"fullName":"Siti Rahma","patientCode":"PT-0042","age":34,"gender":"female","phone":"0812","address":"Jl. Melati"}}`)
	})

	repo := NewPatientRepository(backend.NewClient(newTestClientConfig(srv.URL+"/api/v1"), quietLogger()))
	p, err := repo.FindByID(context.Background(), "17")
	require.NoError(t, err)
	assert.Equal(t, entity.ID("17"), p.ID)
	assert.Equal(t, "Siti Rahma", p.FullName)
	assert.Equal(t, entity.GenderFemale, p.Gender)
	assert.Equal(t, 34, p.Age)
}

func TestPatientRepository_NotFound(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"success":false,"error":{"message":"Patient not found"}}`)
	})

	repo := NewPatientRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	_, err := repo.FindByID(context.Background(), "404")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainRepo.ErrNotFound)
	assert.Equal(t, "Patient not found", domainRepo.BackendMessage(err))
}

func TestPatientRepository_FindAllRetriesGet(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusBadGateway, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":[{"id":"a","fullName":"A"},{"id":"b","fullName":"B"}]}`)
	})

	repo := NewPatientRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	patients, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, patients, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPatientRepository_Create(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Budi", body["fullName"])
		assert.Equal(t, "male", body["gender"])
		writeJSON(w, http.StatusCreated, `{"success":true,"message":"Patient registered","data":{"id":5,"fullName":"Budi","patientCode":"PT-0005"}}`)
	})

	repo := NewPatientRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	p, err := repo.Create(context.Background(), &entity.Patient{FullName: "Budi", Age: 40, Gender: entity.GenderMale})
	require.NoError(t, err)
	assert.Equal(t, entity.ID("5"), p.ID)
	assert.Equal(t, "PT-0005", p.PatientCode)
}

func TestDiagnosisRepository_CreateSendsFlatPayload(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/diagnoses", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body, entity.QuestionCount+1)
		assert.Equal(t, "p-9", body["patientId"])
		assert.Equal(t, true, body["fever"])
		assert.Equal(t, false, body["cough2Weeks"])
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":"d-1"}}`)
	})

	answers, _ := entity.AnswerMap{}.SetAnswer(entity.SymptomFever, true)
	repo := NewDiagnosisRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	id, err := repo.Create(context.Background(), &entity.Diagnosis{PatientID: "p-9", Answers: answers}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ID("d-1"), id)
}

func TestDiagnosisRepository_CreateIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		writeJSON(w, http.StatusInternalServerError, `{"success":false,"error":{"message":"database unavailable"}}`)
	})

	repo := NewDiagnosisRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	_, err := repo.Create(context.Background(), &entity.Diagnosis{PatientID: "p-9"}, "")
	require.Error(t, err)
	assert.Equal(t, "database unavailable", domainRepo.BackendMessage(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDiagnosisRepository_MissingID(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{}}`)
	})

	repo := NewDiagnosisRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	_, err := repo.Create(context.Background(), &entity.Diagnosis{PatientID: "p-9"}, "")
	assert.ErrorContains(t, err, "no diagnosis id")
}

func TestReportRepository_Generate(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "d-1", body["diagnosisId"])
		writeJSON(w, http.StatusCreated, `{"success":true,"message":"Report generated"}`)
	})

	repo := NewReportRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	msg, err := repo.Generate(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Equal(t, "Report generated", msg)
}

func TestReportRepository_FindByPatientID(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/patient/p-1", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data":[{"id":1,"reportText":"Patient ID: p-1\nRisk: LOW","createdAt":"2026-03-01T09:30:00Z"}]}`)
	})

	repo := NewReportRepository(backend.NewClient(newTestClientConfig(srv.URL), quietLogger()))
	reports, err := repo.FindByPatientID(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, entity.ID("1"), reports[0].ID)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), reports[0].CreatedAt)
}

func TestReportRepository_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := newTestClientConfig(url)
	cfg.RetryCount = 0
	repo := NewReportRepository(backend.NewClient(cfg, quietLogger()))
	_, err := repo.Generate(context.Background(), "d-1")

	var apiErr *domainRepo.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "", apiErr.Message)
	assert.NotNil(t, apiErr.Err)
}
