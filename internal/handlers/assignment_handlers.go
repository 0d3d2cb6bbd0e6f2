package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"medishift_backend/internal/models"
	"medishift_backend/internal/services"
	"medishift_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AssignmentHandler holds the assignment service.
type AssignmentHandler struct {
	assignmentService services.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(as services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: as}
}

func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.assignmentService.CreateAssignment(req)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentConflict) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrAssignmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrStaffNotFound) || errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateAssignment: Error from assignmentService.CreateAssignment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create shift assignment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (h *AssignmentHandler) GetAssignments(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filters := models.AssignmentFilters{Page: page, PageSize: pageSize}
	if staffID := c.Query("staff_id"); staffID != "" {
		filters.StaffID = &staffID
	}
	if roleIDStr := c.Query("role_id"); roleIDStr != "" {
		id, err := strconv.ParseInt(roleIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid role_id format.", err.Error()))
			return
		}
		filters.RoleID = &id
	}
	if startDate := c.Query("start_date"); startDate != "" {
		filters.StartDate = &startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		filters.EndDate = &endDate
	}
	if isActiveStr := c.Query("is_active"); isActiveStr != "" {
		isActive, err := strconv.ParseBool(isActiveStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid is_active value.", err.Error()))
			return
		}
		filters.IsActive = &isActive
	}

	assignments, totalCount, err := h.assignmentService.GetAssignments(filters)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.LogError(err, "GetAssignments: Error from assignmentService.GetAssignments")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shift assignments.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      assignments,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSchedule returns the day-by-day roster starting at start_date for the
// requested number of days (default 7).
func (h *AssignmentHandler) GetSchedule(c *gin.Context) {
	startDate := c.Query("start_date")
	if startDate == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "start_date query parameter is required.", ""))
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	schedule, err := h.assignmentService.GetSchedule(startDate, days)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.LogError(err, "GetSchedule: Error from assignmentService.GetSchedule")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build schedule.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule})
}

func (h *AssignmentHandler) GetAssignmentByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetAssignmentByID(id)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift assignment not found.", err.Error()))
		} else {
			utils.LogError(err, "GetAssignmentByID: Error from assignmentService.GetAssignmentByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shift assignment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.assignmentService.UpdateAssignment(id, req)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift assignment not found.", err.Error()))
		} else if errors.Is(err, services.ErrAssignmentConflict) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrAssignmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "UpdateAssignment: Error from assignmentService.UpdateAssignment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update shift assignment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteAssignment(id); err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift assignment not found.", err.Error()))
		} else {
			utils.LogError(err, "DeleteAssignment: Error from assignmentService.DeleteAssignment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete shift assignment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shift assignment deleted successfully"})
}
