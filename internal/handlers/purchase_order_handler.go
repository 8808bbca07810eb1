package handlers

import (
	"net/http"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	orderService services.PurchaseOrderService
}

func NewPurchaseOrderHandler(orderService services.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

func (h *PurchaseOrderHandler) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	if input.CreatedBy == 0 {
		input.CreatedBy = actingUser(c)
	}

	order, err := h.orderService.CreateOrder(&input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, order, "purchase order created")
}

func (h *PurchaseOrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order, "")
}

func (h *PurchaseOrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input services.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}

	order, err := h.orderService.UpdateOrder(id, &input, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order, "purchase order updated")
}

func (h *PurchaseOrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(id, actingUser(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "purchase order deleted")
}

func (h *PurchaseOrderHandler) transition(c *gin.Context, fn func(id, userID uint) (*models.PurchaseOrder, error), message string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := fn(id, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order, message)
}

func (h *PurchaseOrderHandler) Accept(c *gin.Context) {
	h.transition(c, h.orderService.Accept, "purchase order accepted, capital committed")
}

func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	h.transition(c, h.orderService.Reject, "purchase order rejected")
}

func (h *PurchaseOrderHandler) Modify(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input services.ModifyOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}

	order, err := h.orderService.Modify(id, &input, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order, "modification recorded, awaiting approval")
}

func (h *PurchaseOrderHandler) ApproveModification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body struct {
		AutoCommit bool `json:"auto_commit"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}

	order, err := h.orderService.ApproveModification(id, actingUser(c), body.AutoCommit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order, "modification approved")
}

func (h *PurchaseOrderHandler) RejectModification(c *gin.Context) {
	h.transition(c, h.orderService.RejectModification, "modification rejected")
}

func (h *PurchaseOrderHandler) RetrySupplier(c *gin.Context) {
	h.transition(c, h.orderService.RetrySupplier, "purchase order resent to supplier")
}

func (h *PurchaseOrderHandler) MarkReadyForDelivery(c *gin.Context) {
	h.transition(c, h.orderService.MarkReadyForDelivery, "purchase order ready for delivery")
}

func (h *PurchaseOrderHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, h.orderService.MarkDelivered, "purchase order delivered")
}

func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orderService.Cancel, "purchase order cancelled")
}
