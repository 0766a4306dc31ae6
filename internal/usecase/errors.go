package usecase

import "errors"

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrSessionNotFound    = errors.New("wizard session not found or expired")
	ErrWizardInReview     = errors.New("all questions have been answered")
	ErrWizardNotInReview  = errors.New("wizard has unanswered questions")
	ErrAnswersLocked      = errors.New("answers cannot change once a diagnosis has been created")
	ErrAlreadySubmitted   = errors.New("diagnosis has already been submitted")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrInvalidPatientID   = errors.New("invalid patient id")
	ErrLoadFailure        = errors.New("failed to load data from the clinical backend")
	ErrRegistrationFailed = errors.New("failed to register patient")
)

const (
	msgPatientLoadFailed = "Failed to load patient"
	msgPatientNotFound   = "Patient not found"
	msgReportsLoadFailed = "Failed to load reports"
)
