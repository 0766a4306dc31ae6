package handler

import (
	"net/http"

	"tb-intake/internal/converter"
	"tb-intake/internal/delivery/dto"
	"tb-intake/internal/domain/entity"
	"tb-intake/pkg/response"
)

type QuestionHandler struct{}

func NewQuestionHandler() *QuestionHandler {
	return &QuestionHandler{}
}

func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions := converter.QuestionsToResponses(entity.Questions())
	response.Success(w, http.StatusOK, "Questions retrieved successfully", dto.QuestionListResponse{
		Questions: questions,
		Total:     len(questions),
	})
}
