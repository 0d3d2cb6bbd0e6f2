package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

// --- Custom Service Errors for Departments and Roles ---
var (
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentNameTaken  = errors.New("department name already exists")
	ErrDepartmentValidation = errors.New("department data validation error")
	ErrRoleNotFound         = errors.New("role not found")
	ErrRoleNameTaken        = errors.New("role name already exists")
	ErrRoleValidation       = errors.New("role data validation error")
	ErrRoleInUse            = errors.New("role cannot be deleted as it is assigned to staff members")
)

// --- Department DTOs ---
type DepartmentRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// --- DepartmentService Interface ---
type DepartmentService interface {
	CreateDepartment(req DepartmentRequest) (*models.Department, error)
	GetDepartmentByID(id int64) (*models.Department, error)
	GetDepartments(page, pageSize int) ([]models.Department, int, error)
	UpdateDepartment(id int64, req DepartmentRequest) (*models.Department, error)
	DeleteDepartment(id int64) error
}

type departmentService struct {
	deptRepo repositories.DepartmentRepository
	db       *sql.DB
}

// NewDepartmentService creates a new instance of DepartmentService.
func NewDepartmentService(dr repositories.DepartmentRepository, db *sql.DB) DepartmentService {
	return &departmentService{deptRepo: dr, db: db}
}

func (s *departmentService) CreateDepartment(req DepartmentRequest) (*models.Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrDepartmentValidation)
	}

	dept := &models.Department{Name: name, Description: req.Description}
	createdDept, err := s.deptRepo.CreateDepartment(s.db, dept)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %q", ErrDepartmentNameTaken, name)
		}
		return nil, fmt.Errorf("failed to create department in repository: %w", err)
	}
	return createdDept, nil
}

func (s *departmentService) GetDepartmentByID(id int64) (*models.Department, error) {
	dept, err := s.deptRepo.GetDepartmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department by ID: %w", err)
	}
	return dept, nil
}

func (s *departmentService) GetDepartments(page, pageSize int) ([]models.Department, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	departments, totalCount, err := s.deptRepo.GetDepartments(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get departments: %w", err)
	}
	return departments, totalCount, nil
}

func (s *departmentService) UpdateDepartment(id int64, req DepartmentRequest) (*models.Department, error) {
	dept, err := s.deptRepo.GetDepartmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to find department for update: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrDepartmentValidation)
	}
	dept.Name = name
	dept.Description = req.Description

	updatedDept, err := s.deptRepo.UpdateDepartment(s.db, dept)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDepartmentNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %q", ErrDepartmentNameTaken, name)
		}
		return nil, fmt.Errorf("failed to update department in repository: %w", err)
	}
	return updatedDept, nil
}

// DeleteDepartment removes a department; staff references are nulled out by
// the schema, so staff members simply end up without a department.
func (s *departmentService) DeleteDepartment(id int64) error {
	err := s.deptRepo.DeleteDepartment(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDepartmentNotFound
		}
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return nil
}

// --- RoleService Interface ---
type RoleService interface {
	CreateRole(req DepartmentRequest) (*models.Role, error)
	GetRoleByID(id int64) (*models.Role, error)
	GetRoles(page, pageSize int) ([]models.Role, int, error)
	UpdateRole(id int64, req DepartmentRequest) (*models.Role, error)
	DeleteRole(id int64) error
}

type roleService struct {
	roleRepo repositories.RoleRepository
	db       *sql.DB
}

// NewRoleService creates a new instance of RoleService.
func NewRoleService(rr repositories.RoleRepository, db *sql.DB) RoleService {
	return &roleService{roleRepo: rr, db: db}
}

func (s *roleService) CreateRole(req DepartmentRequest) (*models.Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrRoleValidation)
	}

	role := &models.Role{Name: name, Description: req.Description}
	createdRole, err := s.roleRepo.CreateRole(s.db, role)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %q", ErrRoleNameTaken, name)
		}
		return nil, fmt.Errorf("failed to create role in repository: %w", err)
	}
	return createdRole, nil
}

func (s *roleService) GetRoleByID(id int64) (*models.Role, error) {
	role, err := s.roleRepo.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role by ID: %w", err)
	}
	return role, nil
}

func (s *roleService) GetRoles(page, pageSize int) ([]models.Role, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	roles, totalCount, err := s.roleRepo.GetRoles(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get roles: %w", err)
	}
	return roles, totalCount, nil
}

func (s *roleService) UpdateRole(id int64, req DepartmentRequest) (*models.Role, error) {
	role, err := s.roleRepo.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role for update: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrRoleValidation)
	}
	role.Name = name
	role.Description = req.Description

	updatedRole, err := s.roleRepo.UpdateRole(s.db, role)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %q", ErrRoleNameTaken, name)
		}
		return nil, fmt.Errorf("failed to update role in repository: %w", err)
	}
	return updatedRole, nil
}

func (s *roleService) DeleteRole(id int64) error {
	err := s.roleRepo.DeleteRole(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRoleNotFound
		}
		if strings.Contains(err.Error(), "referenced by staff members") {
			return ErrRoleInUse
		}
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}
