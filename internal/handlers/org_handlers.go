package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"medishift_backend/internal/services"
	"medishift_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parsePagination reads the shared page/page_size query parameters.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return page, pageSize
}

// parseIDParam parses the :id path parameter.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ID format.", err.Error()))
		return 0, false
	}
	return id, true
}

// DepartmentHandler holds the department service.
type DepartmentHandler struct {
	deptService services.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(ds services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptService: ds}
}

func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req services.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	dept, err := h.deptService.CreateDepartment(req)
	if err != nil {
		if errors.Is(err, services.ErrDepartmentNameTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrDepartmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateDepartment: Error from deptService.CreateDepartment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create department.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, dept)
}

func (h *DepartmentHandler) GetDepartments(c *gin.Context) {
	page, pageSize := parsePagination(c)
	departments, totalCount, err := h.deptService.GetDepartments(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetDepartments: Error from deptService.GetDepartments")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch departments.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      departments,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *DepartmentHandler) GetDepartmentByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	dept, err := h.deptService.GetDepartmentByID(id)
	if err != nil {
		if errors.Is(err, services.ErrDepartmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Department not found.", err.Error()))
		} else {
			utils.LogError(err, "GetDepartmentByID: Error from deptService.GetDepartmentByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch department.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	dept, err := h.deptService.UpdateDepartment(id, req)
	if err != nil {
		if errors.Is(err, services.ErrDepartmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Department not found.", err.Error()))
		} else if errors.Is(err, services.ErrDepartmentNameTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrDepartmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "UpdateDepartment: Error from deptService.UpdateDepartment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update department.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deptService.DeleteDepartment(id); err != nil {
		if errors.Is(err, services.ErrDepartmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Department not found.", err.Error()))
		} else {
			utils.LogError(err, "DeleteDepartment: Error from deptService.DeleteDepartment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete department.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Department deleted successfully"})
}

// RoleHandler holds the role service.
type RoleHandler struct {
	roleService services.RoleService
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(rs services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: rs}
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req services.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	role, err := h.roleService.CreateRole(req)
	if err != nil {
		if errors.Is(err, services.ErrRoleNameTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrRoleValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "CreateRole: Error from roleService.CreateRole")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create role.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) GetRoles(c *gin.Context) {
	page, pageSize := parsePagination(c)
	roles, totalCount, err := h.roleService.GetRoles(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetRoles: Error from roleService.GetRoles")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch roles.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      roles,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *RoleHandler) GetRoleByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	role, err := h.roleService.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Role not found.", err.Error()))
		} else {
			utils.LogError(err, "GetRoleByID: Error from roleService.GetRoleByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch role.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	role, err := h.roleService.UpdateRole(id, req)
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Role not found.", err.Error()))
		} else if errors.Is(err, services.ErrRoleNameTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else if errors.Is(err, services.ErrRoleValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "UpdateRole: Error from roleService.UpdateRole")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update role.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(id); err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Role not found.", err.Error()))
		} else if errors.Is(err, services.ErrRoleInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		} else {
			utils.LogError(err, "DeleteRole: Error from roleService.DeleteRole")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete role.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
}
