package handlers

import (
	"errors"
	"net/http"

	"medishift_backend/internal/services"
	"medishift_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ShiftHandler holds the shift service.
type ShiftHandler struct {
	shiftService services.ShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(ss services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: ss}
}

func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req services.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.shiftService.CreateShift(req)
	if err != nil {
		if errors.Is(err, services.ErrShiftValidation) || errors.Is(err, services.ErrTimeFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateShift: Error from shiftService.CreateShift")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, shift)
}

func (h *ShiftHandler) GetShifts(c *gin.Context) {
	page, pageSize := parsePagination(c)
	shifts, totalCount, err := h.shiftService.GetShifts(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetShifts: Error from shiftService.GetShifts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shifts.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      shifts,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *ShiftHandler) GetShiftByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	shift, err := h.shiftService.GetShiftByID(id)
	if err != nil {
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", err.Error()))
		} else {
			utils.LogError(err, "GetShiftByID: Error from shiftService.GetShiftByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.shiftService.UpdateShift(id, req)
	if err != nil {
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", err.Error()))
		} else if errors.Is(err, services.ErrShiftValidation) || errors.Is(err, services.ErrTimeFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "UpdateShift: Error from shiftService.UpdateShift")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.shiftService.DeleteShift(id); err != nil {
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", err.Error()))
		} else if errors.Is(err, services.ErrShiftInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "DeleteShift: Error from shiftService.DeleteShift")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shift deleted successfully"})
}
