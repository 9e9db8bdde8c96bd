package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type QuestionHandler struct {
	questions services.QuestionService
}

func NewQuestionHandler(questions services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

func (h *QuestionHandler) Add(c *gin.Context) {
	var req services.QuestionInput
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.questions.Add(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "add_question_failed")
		return
	}
	response.RespondCreated(c, q)
}

func (h *QuestionHandler) List(c *gin.Context) {
	subID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.questions.List(c.Request.Context(), subID)
	if err != nil {
		response.RespondAPIError(c, err, "list_questions_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": rows, "count": len(rows)})
}

// ListForStudent runs behind RequireCourseAccess on the :id lesson.
func (h *QuestionHandler) ListForStudent(c *gin.Context) {
	subID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.questions.ListForStudent(c.Request.Context(), subID)
	if err != nil {
		response.RespondAPIError(c, err, "list_questions_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": rows, "count": len(rows)})
}

func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	q, err := h.questions.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "get_question_failed")
		return
	}
	response.RespondOK(c, q)
}

func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.QuestionUpdate
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.questions.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err, "update_question_failed")
		return
	}
	response.RespondOK(c, q)
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.questions.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_question_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Question deleted"})
}
