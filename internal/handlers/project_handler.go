package handlers

import (
	"net/http"
	"strconv"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var project models.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	if project.CreatedBy == 0 {
		project.CreatedBy = actingUser(c)
	}

	if err := h.projectService.CreateProject(&project); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, project, "project created")
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, project, "")
}

func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projectService.GetProjects()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, projects, "")
}

func (h *ProjectHandler) RetireProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.RetireProject(id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "project retired")
}

func (h *ProjectHandler) CreatePhase(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var phase models.Phase
	if err := c.ShouldBindJSON(&phase); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	phase.ProjectID = projectID

	if err := h.projectService.CreatePhase(&phase); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, phase, "phase created")
}

func (h *ProjectHandler) GetPhases(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	phases, err := h.projectService.GetPhasesByProject(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, phases, "")
}

func (h *ProjectHandler) AddPhaseDependency(c *gin.Context) {
	phaseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body struct {
		DependsOnID uint `json:"depends_on_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.DependsOnID == 0 {
		respondError(c, &ledger.ValidationError{Msg: "depends_on_id is required"})
		return
	}

	if err := h.projectService.AddPhaseDependency(phaseID, body.DependsOnID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, nil, "phase dependency added")
}

func (h *ProjectHandler) ActivatePhase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	phase, err := h.projectService.ActivatePhase(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, phase, "phase activated")
}

func (h *ProjectHandler) CompletePhase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	phase, err := h.projectService.CompletePhase(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, phase, "phase completed")
}

func (h *ProjectHandler) CreateWorkItem(c *gin.Context) {
	phaseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var item models.WorkItem
	if err := c.ShouldBindJSON(&item); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	item.PhaseID = phaseID

	if err := h.projectService.CreateWorkItem(&item); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, item, "work item created")
}

func (h *ProjectHandler) GetWorkItems(c *gin.Context) {
	phaseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	items, err := h.projectService.GetWorkItemsByPhase(phaseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items, "")
}

func (h *ProjectHandler) CreateIndirectCategory(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var category models.IndirectCostCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	category.ProjectID = projectID

	if err := h.projectService.CreateIndirectCategory(&category); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, category, "indirect cost category created")
}

func (h *ProjectHandler) GetIndirectCategories(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	categories, err := h.projectService.GetIndirectCategories(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, categories, "")
}

func (h *ProjectHandler) CreateEquipment(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var equipment models.Equipment
	if err := c.ShouldBindJSON(&equipment); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	equipment.ProjectID = projectID

	if err := h.projectService.CreateEquipment(&equipment); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, equipment, "equipment registered")
}

func (h *ProjectHandler) GetCapitalSummary(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	summary, err := h.projectService.GetCostSummary(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summary, "")
}

func (h *ProjectHandler) RecalculateProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.RecalculateProject(id); err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.projectService.GetCostSummary(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summary, "project aggregates recalculated")
}

func (h *ProjectHandler) RecalculatePhase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.RecalculatePhase(id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "phase aggregates recalculated")
}

func (h *ProjectHandler) GetAuditTrail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.projectService.GetAuditTrail(id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, entries, "")
}
