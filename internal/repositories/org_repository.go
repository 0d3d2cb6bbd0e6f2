package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medishift_backend/internal/models"
)

// DepartmentRepository defines the interface for department database operations.
type DepartmentRepository interface {
	CreateDepartment(executor SQLExecutor, dept *models.Department) (*models.Department, error)
	GetDepartmentByID(id int64) (*models.Department, error)
	GetDepartmentByName(name string) (*models.Department, error)
	GetDepartments(page, pageSize int) ([]models.Department, int, error)
	UpdateDepartment(executor SQLExecutor, dept *models.Department) (*models.Department, error)
	DeleteDepartment(executor SQLExecutor, id int64) error
}

type departmentRepository struct {
	db *sql.DB
}

// NewDepartmentRepository creates a new instance of DepartmentRepository.
func NewDepartmentRepository(db *sql.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) CreateDepartment(executor SQLExecutor, dept *models.Department) (*models.Department, error) {
	query := `INSERT INTO departments (name, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query, dept.Name, dept.Description, currentTime, currentTime).
		Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err, "departments_name_key") {
			return nil, fmt.Errorf("%w: department name %q already exists", ErrDuplicateKey, dept.Name)
		}
		return nil, fmt.Errorf("%w: creating department: %v", ErrDatabaseError, err)
	}
	return dept, nil
}

func (r *departmentRepository) GetDepartmentByID(id int64) (*models.Department, error) {
	dept := &models.Department{}
	query := `SELECT id, name, description, created_at, updated_at FROM departments WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&dept.ID, &dept.Name, &dept.Description, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting department by ID %d: %v", ErrDatabaseError, id, err)
	}
	return dept, nil
}

func (r *departmentRepository) GetDepartmentByName(name string) (*models.Department, error) {
	dept := &models.Department{}
	query := `SELECT id, name, description, created_at, updated_at FROM departments WHERE name = $1`
	err := r.db.QueryRow(query, name).Scan(&dept.ID, &dept.Name, &dept.Description, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting department by name %s: %v", ErrDatabaseError, name, err)
	}
	return dept, nil
}

func (r *departmentRepository) GetDepartments(page, pageSize int) ([]models.Department, int, error) {
	departments := []models.Department{}
	totalCount := 0

	query := `SELECT id, name, description, created_at, updated_at, COUNT(*) OVER() as total_count
	          FROM departments ORDER BY name ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying departments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var dept models.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.CreatedAt, &dept.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning department: %v", ErrDatabaseError, err)
		}
		departments = append(departments, dept)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating department rows: %v", ErrDatabaseError, err)
	}
	return departments, totalCount, nil
}

func (r *departmentRepository) UpdateDepartment(executor SQLExecutor, dept *models.Department) (*models.Department, error) {
	query := `UPDATE departments SET name = $1, description = $2, updated_at = $3
	          WHERE id = $4
	          RETURNING updated_at`

	err := executor.QueryRow(query, dept.Name, dept.Description, time.Now(), dept.ID).Scan(&dept.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if IsUniqueViolation(err, "departments_name_key") {
			return nil, fmt.Errorf("%w: department name %q already exists", ErrDuplicateKey, dept.Name)
		}
		return nil, fmt.Errorf("%w: updating department ID %d: %v", ErrDatabaseError, dept.ID, err)
	}
	return dept, nil
}

// DeleteDepartment removes a department. Staff references are nulled out by
// the ON DELETE SET NULL constraint on staff_members.department_id.
func (r *departmentRepository) DeleteDepartment(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting department ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RoleRepository defines the interface for role database operations.
type RoleRepository interface {
	CreateRole(executor SQLExecutor, role *models.Role) (*models.Role, error)
	GetRoleByID(id int64) (*models.Role, error)
	GetRoleByName(name string) (*models.Role, error)
	GetRoles(page, pageSize int) ([]models.Role, int, error)
	UpdateRole(executor SQLExecutor, role *models.Role) (*models.Role, error)
	DeleteRole(executor SQLExecutor, id int64) error
}

type roleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sql.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) CreateRole(executor SQLExecutor, role *models.Role) (*models.Role, error) {
	query := `INSERT INTO roles (name, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query, role.Name, role.Description, currentTime, currentTime).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err, "roles_name_key") {
			return nil, fmt.Errorf("%w: role name %q already exists", ErrDuplicateKey, role.Name)
		}
		return nil, fmt.Errorf("%w: creating role: %v", ErrDatabaseError, err)
	}
	return role, nil
}

func (r *roleRepository) GetRoleByID(id int64) (*models.Role, error) {
	role := &models.Role{}
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting role by ID %d: %v", ErrDatabaseError, id, err)
	}
	return role, nil
}

func (r *roleRepository) GetRoleByName(name string) (*models.Role, error) {
	role := &models.Role{}
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE name = $1`
	err := r.db.QueryRow(query, name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting role by name %s: %v", ErrDatabaseError, name, err)
	}
	return role, nil
}

func (r *roleRepository) GetRoles(page, pageSize int) ([]models.Role, int, error) {
	roles := []models.Role{}
	totalCount := 0

	query := `SELECT id, name, description, created_at, updated_at, COUNT(*) OVER() as total_count
	          FROM roles ORDER BY name ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying roles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning role: %v", ErrDatabaseError, err)
		}
		roles = append(roles, role)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating role rows: %v", ErrDatabaseError, err)
	}
	return roles, totalCount, nil
}

func (r *roleRepository) UpdateRole(executor SQLExecutor, role *models.Role) (*models.Role, error) {
	query := `UPDATE roles SET name = $1, description = $2, updated_at = $3
	          WHERE id = $4
	          RETURNING updated_at`

	err := executor.QueryRow(query, role.Name, role.Description, time.Now(), role.ID).Scan(&role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if IsUniqueViolation(err, "roles_name_key") {
			return nil, fmt.Errorf("%w: role name %q already exists", ErrDuplicateKey, role.Name)
		}
		return nil, fmt.Errorf("%w: updating role ID %d: %v", ErrDatabaseError, role.ID, err)
	}
	return role, nil
}

// DeleteRole removes a role. Staff members keep a required reference to their
// role, so the RESTRICT constraint turns deletion of an in-use role into a
// foreign key violation surfaced to the service layer.
func (r *roleRepository) DeleteRole(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: role ID %d is referenced by staff members", ErrDatabaseError, id)
		}
		return fmt.Errorf("%w: deleting role ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
