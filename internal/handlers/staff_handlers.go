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

// StaffHandler holds the staff service.
type StaffHandler struct {
	staffService services.StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(ss services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: ss}
}

// CreateStaffMember handles staff onboarding: a user account plus the staff
// profile in one call.
func (h *StaffHandler) CreateStaffMember(c *gin.Context) {
	var req services.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	staff, err := h.staffService.CreateStaffMember(req)
	if err != nil {
		if errors.Is(err, services.ErrStaffIDTaken) || errors.Is(err, services.ErrUsernameTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrStaffValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else if errors.Is(err, services.ErrStaffRoleInvalid) || errors.Is(err, services.ErrStaffDeptInvalid) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateStaffMember: Error from staffService.CreateStaffMember")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create staff member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, staff)
}

// GetStaffMembers handles listing staff with search and filters.
func (h *StaffHandler) GetStaffMembers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filters := models.StaffFilters{Page: page, PageSize: pageSize}
	if search := c.Query("search"); search != "" {
		filters.SearchTerm = &search
	}
	if deptIDStr := c.Query("department_id"); deptIDStr != "" {
		id, err := strconv.ParseInt(deptIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid department_id format.", err.Error()))
			return
		}
		filters.DepartmentID = &id
	}
	if roleIDStr := c.Query("role_id"); roleIDStr != "" {
		id, err := strconv.ParseInt(roleIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid role_id format.", err.Error()))
			return
		}
		filters.RoleID = &id
	}

	staffMembers, totalCount, err := h.staffService.GetStaffMembers(filters)
	if err != nil {
		utils.LogError(err, "GetStaffMembers: Error from staffService.GetStaffMembers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch staff members.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      staffMembers,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetStaffMemberByID handles fetching a single staff member.
func (h *StaffHandler) GetStaffMemberByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	staff, err := h.staffService.GetStaffMemberByID(id)
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
		} else {
			utils.LogError(err, "GetStaffMemberByID: Error from staffService.GetStaffMemberByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch staff member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, staff)
}

// UpdateStaffMember handles partial staff profile updates.
func (h *StaffHandler) UpdateStaffMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	staff, err := h.staffService.UpdateStaffMember(id, req)
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
		} else if errors.Is(err, services.ErrStaffIDTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrStaffValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "UpdateStaffMember: Error from staffService.UpdateStaffMember")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update staff member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, staff)
}

// DeleteStaffMember handles removing a staff profile.
func (h *StaffHandler) DeleteStaffMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.staffService.DeleteStaffMember(id); err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
		} else {
			utils.LogError(err, "DeleteStaffMember: Error from staffService.DeleteStaffMember")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete staff member.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}
