package converter

import (
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/internal/wizard"
)

func QuestionsToResponses(questions []entity.SymptomQuestion) []dto.QuestionResponse {
	responses := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = dto.QuestionResponse{Index: i, Key: string(q.Key), Prompt: q.Prompt}
	}
	return responses
}

func NotificationsToResponses(notifications []entity.Notification) []dto.NotificationResponse {
	if len(notifications) == 0 {
		return nil
	}
	responses := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = dto.NotificationResponse{
			Severity: string(n.Severity),
			Message:  n.Message,
			At:       n.At,
		}
	}
	return responses
}

// WizardSessionToResponse builds the client view of a session. Notifications are passed
// separately because reading a session drains them.
func WizardSessionToResponse(session *entity.WizardSession, notifications []entity.Notification) *dto.WizardResponse {
	if session == nil {
		return nil
	}

	ctrl := wizard.Restore(session.Step, session.Answers)
	progress := ctrl.Progress()

	resp := &dto.WizardResponse{
		SessionID: session.ID,
		Patient:   PatientToResponse(session.Patient),
		Step:      ctrl.Step(),
		InReview:  ctrl.InReview(),
		Progress: dto.ProgressResponse{
			Percent:  progress.Percent,
			Answered: progress.Answered,
			Total:    progress.Total,
		},
		Answers:        session.Answers.Fields(),
		Status:         string(session.Status),
		DiagnosisID:    session.DiagnosisID.String(),
		CanSubmit:      ctrl.InReview() && !session.AwaitingReport() && !submitting(session.Status),
		AwaitingReport: session.AwaitingReport(),
		Notifications:  NotificationsToResponses(notifications),
	}

	if q, ok := ctrl.Current(); ok {
		resp.Question = &dto.QuestionResponse{Index: ctrl.Step(), Key: string(q.Key), Prompt: q.Prompt}
	}

	if session.Redirect != nil {
		resp.Redirect = &dto.RedirectResponse{
			Target:  session.Redirect.Target,
			DelayMs: session.Redirect.Delay.Milliseconds(),
		}
	}

	return resp
}

func submitting(status entity.SubmissionStatus) bool {
	return status == entity.SubmissionCreatingDiagnosis || status == entity.SubmissionGeneratingReport
}
