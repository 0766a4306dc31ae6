package handler

import (
	"errors"
	"net/http"

	"tb-intake/internal/report"
	"tb-intake/internal/usecase"
	"tb-intake/pkg/response"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
}

func NewReportHandler(reportUsecase usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
	}
}

// ListReports always answers 200; load failures travel as notifications in the body.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportUsecase.ListForPatient(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	response.Success(w, http.StatusOK, "Reports retrieved successfully", reports)
}

// PrintReport writes the printable HTML document as the response body.
func (h *ReportHandler) PrintReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := h.reportUsecase.Print(r.Context(), vars["id"], vars["reportId"], report.WriterSurface{W: w})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidPatientID):
			response.Error(w, http.StatusBadRequest, "Invalid patient ID")
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, usecase.ErrReportNotFound):
			response.NotFound(w, "Report not found")
		case errors.Is(err, usecase.ErrLoadFailure):
			response.Error(w, http.StatusBadGateway, "Failed to load report")
		default:
			response.InternalServerError(w, "Failed to print report")
		}
		return
	}
}
