package http

import (
	"net/http"

	"tb-intake/internal/delivery/http/handler"
	"tb-intake/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	questionHandler   *handler.QuestionHandler
	patientHandler    *handler.PatientHandler
	reportHandler     *handler.ReportHandler
	wizardHandler     *handler.WizardHandler
	auditLogHandler   *handler.AuditLogHandler
	sessionMiddleware *middleware.SessionMiddleware
	corsMiddleware    *middleware.CORSMiddleware
}

func NewRouter(
	questionHandler *handler.QuestionHandler,
	patientHandler *handler.PatientHandler,
	reportHandler *handler.ReportHandler,
	wizardHandler *handler.WizardHandler,
	auditLogHandler *handler.AuditLogHandler,
	sessionMiddleware *middleware.SessionMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		questionHandler:   questionHandler,
		patientHandler:    patientHandler,
		reportHandler:     reportHandler,
		wizardHandler:     wizardHandler,
		auditLogHandler:   auditLogHandler,
		sessionMiddleware: sessionMiddleware,
		corsMiddleware:    corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	api.HandleFunc("/questions", r.questionHandler.ListQuestions).Methods(http.MethodGet)

	// Patients and their reports
	api.HandleFunc("/patients", r.patientHandler.ListPatients).Methods(http.MethodGet)
	api.HandleFunc("/patients", r.patientHandler.RegisterPatient).Methods(http.MethodPost)
	api.HandleFunc("/patients/{id}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}/reports", r.reportHandler.ListReports).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}/reports/{reportId}/print", r.reportHandler.PrintReport).Methods(http.MethodGet)

	// Audit trail
	api.HandleFunc("/patients/{id}/history", r.auditLogHandler.GetPatientHistory).Methods(http.MethodGet)
	api.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Wizard (open is public, everything else needs the session token)
	api.HandleFunc("/wizard", r.wizardHandler.OpenWizard).Methods(http.MethodPost)

	wizard := api.PathPrefix("/wizard").Subrouter()
	wizard.Use(r.sessionMiddleware.Authenticate)
	wizard.HandleFunc("", r.wizardHandler.GetWizard).Methods(http.MethodGet)
	wizard.HandleFunc("", r.wizardHandler.Discard).Methods(http.MethodDelete)
	wizard.HandleFunc("/answers", r.wizardHandler.AnswerQuestion).Methods(http.MethodPost)
	wizard.HandleFunc("/back", r.wizardHandler.GoBack).Methods(http.MethodPost)
	wizard.HandleFunc("/restart", r.wizardHandler.Restart).Methods(http.MethodPost)
	wizard.HandleFunc("/submit", r.wizardHandler.Submit).Methods(http.MethodPost)
	wizard.HandleFunc("/report", r.wizardHandler.RetryReport).Methods(http.MethodPost)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
