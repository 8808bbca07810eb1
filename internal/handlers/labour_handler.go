package handlers

import (
	"net/http"

	"construction_manager/internal/ledger"
	"construction_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type LabourHandler struct {
	labourService services.LabourService
}

func NewLabourHandler(labourService services.LabourService) *LabourHandler {
	return &LabourHandler{labourService: labourService}
}

func (h *LabourHandler) CreateBatch(c *gin.Context) {
	var input services.CreateBatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	if input.CreatedBy == 0 {
		input.CreatedBy = actingUser(c)
	}

	batch, err := h.labourService.CreateBatch(&input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, batch, "labour batch created")
}

func (h *LabourHandler) SubmitBatch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	batch, err := h.labourService.SubmitBatch(id, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, batch, "labour batch submitted")
}

func (h *LabourHandler) ApproveBatch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	batch, err := h.labourService.ApproveBatch(id, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, batch, "labour batch approved")
}

func (h *LabourHandler) DeleteBatch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.labourService.DeleteBatch(id, actingUser(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "labour batch deleted")
}

func (h *LabourHandler) GetBatch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	batch, err := h.labourService.GetBatch(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, batch, "")
}

func (h *LabourHandler) GetBatchEntries(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	entries, err := h.labourService.GetEntriesByBatch(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, entries, "")
}

func (h *LabourHandler) UpdateEntry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input services.UpdateEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}

	entry, err := h.labourService.UpdateEntry(id, &input, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, entry, "labour entry updated")
}

func (h *LabourHandler) DeleteEntry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.labourService.DeleteEntry(id, actingUser(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "labour entry deleted")
}
