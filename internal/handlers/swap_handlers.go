package handlers

import (
	"errors"
	"net/http"

	"medishift_backend/internal/models"
	"medishift_backend/internal/services"
	"medishift_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SwapHandler holds the swap service.
type SwapHandler struct {
	swapService services.SwapService
}

// NewSwapHandler creates a new SwapHandler.
func NewSwapHandler(ss services.SwapService) *SwapHandler {
	return &SwapHandler{swapService: ss}
}

func (h *SwapHandler) CreateSwapRequest(c *gin.Context) {
	var req services.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	swap, err := h.swapService.CreateSwapRequest(req)
	if err != nil {
		if errors.Is(err, services.ErrSwapSelfRequest) || errors.Is(err, services.ErrSwapValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrSwapAssignmentInactive) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrAssignmentNotFound) || errors.Is(err, services.ErrStaffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateSwapRequest: Error from swapService.CreateSwapRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create swap request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, swap)
}

func (h *SwapHandler) GetSwapRequests(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filters := models.SwapFilters{Page: page, PageSize: pageSize}
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

	swaps, totalCount, err := h.swapService.GetSwapRequests(filters)
	if err != nil {
		if errors.Is(err, services.ErrSwapValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.LogError(err, "GetSwapRequests: Error from swapService.GetSwapRequests")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch swap requests.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      swaps,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *SwapHandler) GetSwapRequestByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	swap, err := h.swapService.GetSwapRequestByID(id)
	if err != nil {
		if errors.Is(err, services.ErrSwapNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Swap request not found.", err.Error()))
		} else {
			utils.LogError(err, "GetSwapRequestByID: Error from swapService.GetSwapRequestByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch swap request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, swap)
}

// ApproveSwapRequest executes the shift exchange between the two assignments.
func (h *SwapHandler) ApproveSwapRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	swap, err := h.swapService.ApproveSwapRequest(id)
	if err != nil {
		if errors.Is(err, services.ErrSwapNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Swap request not found.", err.Error()))
		} else if errors.Is(err, services.ErrSwapAlreadyProcessed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrSwapAssignmentInactive) || errors.Is(err, services.ErrSwapRecipientUnavailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "ApproveSwapRequest: Error from swapService.ApproveSwapRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to approve swap request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, swap)
}

func (h *SwapHandler) RejectSwapRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	swap, err := h.swapService.RejectSwapRequest(id)
	if err != nil {
		if errors.Is(err, services.ErrSwapNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Swap request not found.", err.Error()))
		} else if errors.Is(err, services.ErrSwapAlreadyProcessed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "RejectSwapRequest: Error from swapService.RejectSwapRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reject swap request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, swap)
}

func (h *SwapHandler) DeleteSwapRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.swapService.DeleteSwapRequest(id); err != nil {
		if errors.Is(err, services.ErrSwapNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Swap request not found.", err.Error()))
		} else {
			utils.LogError(err, "DeleteSwapRequest: Error from swapService.DeleteSwapRequest")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete swap request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Swap request deleted successfully"})
}
