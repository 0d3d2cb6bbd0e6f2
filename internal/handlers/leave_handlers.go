package handlers

import (
	"errors"
	"net/http"

	"medishift_backend/internal/middleware"
	"medishift_backend/internal/models"
	"medishift_backend/internal/services"
	"medishift_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LeaveHandler holds the leave service.
type LeaveHandler struct {
	leaveService services.LeaveService
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(ls services.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveService: ls}
}

func (h *LeaveHandler) CreateLeaveRequest(c *gin.Context) {
	var req services.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	leave, err := h.leaveService.CreateLeaveRequest(req)
	if err != nil {
		if errors.Is(err, services.ErrLeaveValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrStaffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateLeaveRequest: Error from leaveService.CreateLeaveRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, leave)
}

func (h *LeaveHandler) GetLeaveRequests(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filters := models.LeaveFilters{Page: page, PageSize: pageSize}
	if staffID := c.Query("staff_id"); staffID != "" {
		filters.StaffID = &staffID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if startDate := c.Query("start_date"); startDate != "" {
		filters.StartDate = &startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		filters.EndDate = &endDate
	}

	leaves, totalCount, err := h.leaveService.GetLeaveRequests(filters)
	if err != nil {
		if errors.Is(err, services.ErrLeaveValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.LogError(err, "GetLeaveRequests: Error from leaveService.GetLeaveRequests")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch leave requests.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      leaves,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *LeaveHandler) GetLeaveRequestByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	leave, err := h.leaveService.GetLeaveRequestByID(id)
	if err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else {
			utils.LogError(err, "GetLeaveRequestByID: Error from leaveService.GetLeaveRequestByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, leave)
}

func (h *LeaveHandler) UpdateLeaveRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	leave, err := h.leaveService.UpdateLeaveRequest(id, req)
	if err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else if errors.Is(err, services.ErrLeaveAlreadyProcessed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrLeaveValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "UpdateLeaveRequest: Error from leaveService.UpdateLeaveRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, leave)
}

// ApproveLeaveRequest approves a pending leave and reports how many shift
// assignments were deactivated by the cascade.
func (h *LeaveHandler) ApproveLeaveRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	approverID, authed := middleware.CurrentUserID(c)
	if !authed {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	result, err := h.leaveService.ApproveLeaveRequest(id, approverID)
	if err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else if errors.Is(err, services.ErrLeaveAlreadyProcessed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrLeaveOverlap) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "ApproveLeaveRequest: Error from leaveService.ApproveLeaveRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to approve leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *LeaveHandler) RejectLeaveRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	approverID, authed := middleware.CurrentUserID(c)
	if !authed {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	leave, err := h.leaveService.RejectLeaveRequest(id, approverID)
	if err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else if errors.Is(err, services.ErrLeaveAlreadyProcessed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "RejectLeaveRequest: Error from leaveService.RejectLeaveRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reject leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, leave)
}

func (h *LeaveHandler) CancelLeaveRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	leave, err := h.leaveService.CancelLeaveRequest(id)
	if err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else if errors.Is(err, services.ErrLeaveNotCancellable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "CancelLeaveRequest: Error from leaveService.CancelLeaveRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to cancel leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, leave)
}

func (h *LeaveHandler) DeleteLeaveRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.leaveService.DeleteLeaveRequest(id); err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else {
			utils.LogError(err, "DeleteLeaveRequest: Error from leaveService.DeleteLeaveRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Leave request deleted successfully"})
}
