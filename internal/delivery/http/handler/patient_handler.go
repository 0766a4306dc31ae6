package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/usecase"
	"tb-intake/pkg/response"
	"tb-intake/pkg/validator"

	"github.com/gorilla/mux"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patientUsecase.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to load patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUsecase.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidPatientID):
			response.Error(w, http.StatusBadRequest, "Invalid patient ID")
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.Error(w, http.StatusBadGateway, "Failed to load patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

func (h *PatientHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.PatientRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.Register(r.Context(), &req)
	if err != nil {
		response.Error(w, http.StatusBadGateway, backendMessageOr(err, "Failed to register patient"))
		return
	}

	response.Success(w, http.StatusCreated, "Patient registered successfully", patient)
}
