package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type OrderHandler struct {
	orders services.OrderService
}

func NewOrderHandler(orders services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req services.OrderInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_order_failed")
		return
	}
	response.RespondCreated(c, out)
}

func thirdPartyRef(c *gin.Context) (string, bool) {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		response.RespondAPIError(c, apierr.BadRequest("invalid_reference", "reference is required"), "invalid_reference")
		return "", false
	}
	return ref, true
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	ref, ok := thirdPartyRef(c)
	if !ok {
		return
	}
	out, err := h.orders.Confirm(c.Request.Context(), ref)
	if err != nil {
		response.RespondAPIError(c, err, "confirm_order_failed")
		return
	}
	response.RespondOK(c, out)
}

func (h *OrderHandler) CancelForStudent(c *gin.Context) {
	ref, ok := thirdPartyRef(c)
	if !ok {
		return
	}
	trx, err := h.orders.CancelForStudent(c.Request.Context(), ref)
	if err != nil {
		response.RespondAPIError(c, err, "cancel_order_failed")
		return
	}
	response.RespondOK(c, trx)
}

func (h *OrderHandler) CancelForAdmin(c *gin.Context) {
	ref, ok := thirdPartyRef(c)
	if !ok {
		return
	}
	trx, err := h.orders.CancelForAdmin(c.Request.Context(), ref)
	if err != nil {
		response.RespondAPIError(c, err, "cancel_order_failed")
		return
	}
	response.RespondOK(c, trx)
}

func (h *OrderHandler) ListTransactions(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	filter := repos.TransactionFilter{
		Status:        strings.ToLower(c.Query("status")),
		Reference:     c.Query("reference"),
		ThirdPartyRef: c.Query("thirdPartyRef"),
	}
	page, err := h.orders.ListTransactions(c.Request.Context(), filter, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_transactions_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *OrderHandler) TransactionDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trx, err := h.orders.GetTransactionDetail(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "get_transaction_failed")
		return
	}
	response.RespondOK(c, trx)
}

// ListOrderedItems scopes to the caller's courses unless the caller is staff.
func (h *OrderHandler) ListOrderedItems(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	filter := repos.OrderedItemFilter{CourseTitle: c.Query("courseTitle"), Status: c.Query("status")}
	page, err := h.orders.ListOrderedItems(c.Request.Context(), filter, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_ordered_items_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *OrderHandler) OrderedItemDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.orders.OrderedItemDetail(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "get_ordered_item_failed")
		return
	}
	response.RespondOK(c, out)
}
