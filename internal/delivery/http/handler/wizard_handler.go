package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/delivery/http/middleware"
	"tb-intake/internal/usecase"
	"tb-intake/pkg/response"
	"tb-intake/pkg/validator"
)

type WizardHandler struct {
	wizardUsecase usecase.WizardUsecase
	validator     *validator.CustomValidator
}

func NewWizardHandler(wizardUsecase usecase.WizardUsecase, validator *validator.CustomValidator) *WizardHandler {
	return &WizardHandler{
		wizardUsecase: wizardUsecase,
		validator:     validator,
	}
}

func (h *WizardHandler) OpenWizard(w http.ResponseWriter, r *http.Request) {
	var req dto.WizardOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	opened, err := h.wizardUsecase.Open(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to open wizard")
		return
	}

	response.Success(w, http.StatusCreated, "Wizard opened successfully", opened)
}

func (h *WizardHandler) GetWizard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	wizard, err := h.wizardUsecase.Get(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err, "Failed to get wizard")
		return
	}

	response.Success(w, http.StatusOK, "Wizard retrieved successfully", wizard)
}

func (h *WizardHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.WizardAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	wizard, err := h.wizardUsecase.Answer(r.Context(), sessionID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to record answer")
		return
	}

	response.Success(w, http.StatusOK, "Answer recorded", wizard)
}

func (h *WizardHandler) GoBack(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.wizardUsecase.GoBack, "Moved back")
}

func (h *WizardHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.wizardUsecase.RestartFromFirst, "Restarted from the first question")
}

func (h *WizardHandler) step(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*dto.WizardResponse, error), message string) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	wizard, err := fn(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err, "Failed to move wizard")
		return
	}

	response.Success(w, http.StatusOK, message, wizard)
}

func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.wizardUsecase.Submit)
}

func (h *WizardHandler) RetryReport(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.wizardUsecase.RetryReport)
}

// submit answers 502 with the wizard view when the backend rejected a phase, so the
// client can show the notifications and offer the matching retry.
func (h *WizardHandler) submit(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*dto.WizardResponse, error)) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	wizard, err := fn(r.Context(), sessionID)
	var subErr *usecase.SubmissionError
	if errors.As(err, &subErr) {
		response.PhaseError(w, http.StatusBadGateway, subErr.Message, string(subErr.Phase), wizard)
		return
	}
	if err != nil {
		h.writeError(w, err, "Failed to submit diagnosis")
		return
	}

	response.Success(w, http.StatusOK, "Diagnosis submitted successfully", wizard)
}

func (h *WizardHandler) Discard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	if err := h.wizardUsecase.Discard(r.Context(), sessionID); err != nil {
		h.writeError(w, err, "Failed to discard wizard")
		return
	}

	response.Success(w, http.StatusOK, "Wizard discarded", nil)
}

func (h *WizardHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		response.NotFound(w, "Wizard session not found or expired")
	case errors.Is(err, usecase.ErrInvalidPatientID):
		response.Error(w, http.StatusBadRequest, "Invalid patient ID")
	case errors.Is(err, usecase.ErrInvalidAnswer):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrWizardInReview),
		errors.Is(err, usecase.ErrWizardNotInReview),
		errors.Is(err, usecase.ErrAnswersLocked),
		errors.Is(err, usecase.ErrAlreadySubmitted),
		errors.Is(err, usecase.ErrNoPendingReport),
		errors.Is(err, usecase.ErrSubmissionInProgress):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
