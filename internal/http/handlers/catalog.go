package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type ProgramHandler struct {
	programs services.ProgramService
}

func NewProgramHandler(programs services.ProgramService) *ProgramHandler {
	return &ProgramHandler{programs: programs}
}

func (h *ProgramHandler) Create(c *gin.Context) {
	var req services.ProgramInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.programs.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_program_failed")
		return
	}
	response.RespondCreated(c, p)
}

func (h *ProgramHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.programs.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "get_program_failed")
		return
	}
	response.RespondOK(c, p)
}

func (h *ProgramHandler) List(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	published, ok := queryBool(c, "isPublished")
	if !ok {
		return
	}
	page, err := h.programs.List(c.Request.Context(), repos.ProgramFilter{Title: c.Query("title"), IsPublished: published}, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_programs_failed")
		return
	}
	response.RespondOK(c, page)
}

// ListPublished serves both the signed-in fetch route and the public route.
func (h *ProgramHandler) ListPublished(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.programs.ListPublished(c.Request.Context(), c.Query("title"), p)
	if err != nil {
		response.RespondAPIError(c, err, "list_programs_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *ProgramHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ProgramUpdate
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.programs.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err, "update_program_failed")
		return
	}
	response.RespondOK(c, p)
}

func (h *ProgramHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.programs.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_program_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Program deleted"})
}

type CategoryHandler struct {
	categories services.CategoryService
}

func NewCategoryHandler(categories services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req services.CategoryInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_category_failed")
		return
	}
	response.RespondCreated(c, cat)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cat, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "get_category_failed")
		return
	}
	response.RespondOK(c, cat)
}

func (h *CategoryHandler) List(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	programID, ok := queryID(c, "programId")
	if !ok {
		return
	}
	published, ok := queryBool(c, "isPublished")
	if !ok {
		return
	}
	filter := repos.CategoryFilter{ProgramID: programID, Title: c.Query("title"), IsPublished: published}
	page, err := h.categories.List(c.Request.Context(), filter, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_categories_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *CategoryHandler) ListPublished(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	programID, ok := queryID(c, "programId")
	if !ok {
		return
	}
	page, err := h.categories.ListPublished(c.Request.Context(), programID, c.Query("title"), p)
	if err != nil {
		response.RespondAPIError(c, err, "list_categories_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.CategoryUpdate
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err, "update_category_failed")
		return
	}
	response.RespondOK(c, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_category_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Category deleted"})
}
