package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type ContentHandler struct {
	contents services.ContentService
	subs     services.ContentSubService
}

func NewContentHandler(contents services.ContentService, subs services.ContentSubService) *ContentHandler {
	return &ContentHandler{contents: contents, subs: subs}
}

func (h *ContentHandler) Create(c *gin.Context) {
	var req services.ContentInput
	if !bindJSON(c, &req) {
		return
	}
	content, err := h.contents.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_content_failed")
		return
	}
	response.RespondCreated(c, content)
}

func (h *ContentHandler) ListByCourse(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.contents.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.RespondAPIError(c, err, "list_contents_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": rows, "count": len(rows)})
}

func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	content, err := h.contents.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "get_content_failed")
		return
	}
	response.RespondOK(c, content)
}

type contentUpdateRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req contentUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	content, err := h.contents.Update(c.Request.Context(), id, req.Title)
	if err != nil {
		response.RespondAPIError(c, err, "update_content_failed")
		return
	}
	response.RespondOK(c, content)
}

func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.contents.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_content_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Course content deleted"})
}

func (h *ContentHandler) CreateSub(c *gin.Context) {
	var req services.SubInput
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subs.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_sub_failed")
		return
	}
	response.RespondCreated(c, sub)
}

func (h *ContentHandler) ListSubs(c *gin.Context) {
	contentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.subs.ListByContent(c.Request.Context(), contentID)
	if err != nil {
		response.RespondAPIError(c, err, "list_subs_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": rows, "count": len(rows)})
}

func (h *ContentHandler) GetSub(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sub, err := h.subs.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "get_sub_failed")
		return
	}
	response.RespondOK(c, sub)
}

func (h *ContentHandler) updateSub(c *gin.Context, instructor bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.SubUpdate
	if !bindJSON(c, &req) {
		return
	}
	var (
		sub *types.CourseContentSub
		err error
	)
	if instructor {
		sub, err = h.subs.UpdateForInstructor(c.Request.Context(), id, req)
	} else {
		sub, err = h.subs.Update(c.Request.Context(), id, req)
	}
	if err != nil {
		response.RespondAPIError(c, err, "update_sub_failed")
		return
	}
	response.RespondOK(c, sub)
}

func (h *ContentHandler) UpdateSub(c *gin.Context)              { h.updateSub(c, false) }
func (h *ContentHandler) UpdateSubForInstructor(c *gin.Context) { h.updateSub(c, true) }

func (h *ContentHandler) DeleteSub(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.subs.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_sub_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Course content sub deleted"})
}

type reorderRequest struct {
	Orders []services.SubOrder `json:"orders" validate:"required,min=1,dive"`
}

func (h *ContentHandler) ReorderSubs(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.subs.Reorder(c.Request.Context(), courseID, req.Orders); err != nil {
		response.RespondAPIError(c, err, "reorder_subs_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Course content subs reordered"})
}

func (h *ContentHandler) CountSubs(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.subs.Count(c.Request.Context(), repos.SubCountFilter{
		CourseID:  courseID,
		MediaType: types.MediaType(c.Query("mediaType")),
		Exclude:   types.MediaType(c.Query("exclude")),
	})
	if err != nil {
		response.RespondAPIError(c, err, "count_subs_failed")
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}
