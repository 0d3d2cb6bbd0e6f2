package handlers

import (
	"errors"
	"net/http"

	"medishift_backend/internal/models"
	"medishift_backend/internal/services"
	"medishift_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler holds the attendance service.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

// checkInOutRequest is the payload for the check-in and check-out actions.
type checkInOutRequest struct {
	ShiftAssignmentID int64   `json:"shift_assignment_id" binding:"required"`
	Notes             *string `json:"notes"`
}

func (h *AttendanceHandler) CreateAttendance(c *gin.Context) {
	var req services.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	att, err := h.attendanceService.CreateAttendance(req)
	if err != nil {
		if errors.Is(err, services.ErrAttendanceDuplicate) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrAttendanceValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateAttendance: Error from attendanceService.CreateAttendance")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create attendance record.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, att)
}

func (h *AttendanceHandler) GetAttendanceRecords(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filters := models.AttendanceFilters{Page: page, PageSize: pageSize}
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

	records, totalCount, err := h.attendanceService.GetAttendanceRecords(filters)
	if err != nil {
		if errors.Is(err, services.ErrAttendanceValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.LogError(err, "GetAttendanceRecords: Error from attendanceService.GetAttendanceRecords")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attendance records.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      records,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *AttendanceHandler) GetAttendanceByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	att, err := h.attendanceService.GetAttendanceByID(id)
	if err != nil {
		if errors.Is(err, services.ErrAttendanceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Attendance record not found.", err.Error()))
		} else {
			utils.LogError(err, "GetAttendanceByID: Error from attendanceService.GetAttendanceByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attendance record.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, att)
}

func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	att, err := h.attendanceService.UpdateAttendance(id, req)
	if err != nil {
		if errors.Is(err, services.ErrAttendanceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Attendance record not found.", err.Error()))
		} else if errors.Is(err, services.ErrAttendanceValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "UpdateAttendance: Error from attendanceService.UpdateAttendance")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update attendance record.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, att)
}

// CheckIn stamps the current time as the check-in for an assignment,
// deriving the present/late status from the shift start.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req checkInOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	att, err := h.attendanceService.CheckIn(req.ShiftAssignmentID, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyCheckedIn) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrAttendanceValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "CheckIn: Error from attendanceService.CheckIn")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check in.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, att)
}

// CheckOut stamps the current time as the check-out for an assignment.
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req checkInOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	att, err := h.attendanceService.CheckOut(req.ShiftAssignmentID)
	if err != nil {
		if errors.Is(err, services.ErrNotCheckedIn) || errors.Is(err, services.ErrAlreadyCheckedOut) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrAttendanceValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "CheckOut: Error from attendanceService.CheckOut")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check out.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, att)
}

func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.attendanceService.DeleteAttendance(id); err != nil {
		if errors.Is(err, services.ErrAttendanceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Attendance record not found.", err.Error()))
		} else {
			utils.LogError(err, "DeleteAttendance: Error from attendanceService.DeleteAttendance")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete attendance record.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance record deleted successfully"})
}
