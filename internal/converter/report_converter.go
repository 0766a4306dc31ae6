package converter

import (
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/internal/report"
)

// ReportToResponse formats the report text for display
func ReportToResponse(r *entity.Report) *dto.ReportResponse {
	if r == nil {
		return nil
	}

	text := report.FormatText(r.ReportText)
	return &dto.ReportResponse{
		ID:          r.ID.String(),
		DiagnosisID: r.DiagnosisID.String(),
		PatientID:   r.PatientID.String(),
		Text:        text,
		Lines:       report.Lines(text),
		CreatedAt:   r.CreatedAt,
	}
}

func ReportsToResponses(reports []entity.Report) []dto.ReportResponse {
	responses := make([]dto.ReportResponse, len(reports))
	for i := range reports {
		responses[i] = *ReportToResponse(&reports[i])
	}
	return responses
}
