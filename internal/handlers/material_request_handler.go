package handlers

import (
	"net/http"

	"construction_manager/internal/ledger"
	"construction_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type MaterialRequestHandler struct {
	requestService services.MaterialRequestService
}

func NewMaterialRequestHandler(requestService services.MaterialRequestService) *MaterialRequestHandler {
	return &MaterialRequestHandler{requestService: requestService}
}

func (h *MaterialRequestHandler) CreateRequest(c *gin.Context) {
	var input services.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	if input.RequestedBy == 0 {
		input.RequestedBy = actingUser(c)
	}

	request, err := h.requestService.CreateRequest(&input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, request, "material request submitted")
}

func (h *MaterialRequestHandler) GetRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.GetRequest(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, request, "")
}

func (h *MaterialRequestHandler) ApproveRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.ApproveRequest(id, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, request, "material request approved, purchase order created")
}

func (h *MaterialRequestHandler) RejectRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}

	request, err := h.requestService.RejectRequest(id, actingUser(c), body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, request, "material request rejected")
}

func (h *MaterialRequestHandler) DeleteRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.requestService.DeleteRequest(id, actingUser(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "material request deleted")
}
