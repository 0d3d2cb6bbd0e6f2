package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medishift_backend/internal/models"
)

// StaffRepository defines the interface for staff member database operations.
type StaffRepository interface {
	CreateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error)
	GetStaffMemberByID(id int64) (*models.StaffMember, error)
	GetStaffMemberByStaffID(staffID string) (*models.StaffMember, error)
	GetStaffMemberByUserID(userID int64) (*models.StaffMember, error)
	GetStaffMembers(filters models.StaffFilters) ([]models.StaffMember, int, error)
	UpdateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error)
	DeleteStaffMember(executor SQLExecutor, id int64) error
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

const staffSelectColumns = `
	    sm.id, sm.user_id, sm.staff_id, sm.department_id, sm.role_id,
	    sm.phone_number, sm.address, sm.created_at, sm.updated_at,
	    u.username, u.email, u.first_name, u.last_name, u.is_active,
	    COALESCE(d.name, '') as department_name,
	    r.name as role_name`

const staffSelectJoins = `
	  FROM staff_members sm
	  JOIN users u ON sm.user_id = u.id
	  LEFT JOIN departments d ON sm.department_id = d.id
	  JOIN roles r ON sm.role_id = r.id`

// scanStaffMemberRow scans a row produced by the staff select with its
// user/department/role joins.
func scanStaffMemberRow(row scanner, extra ...interface{}) (*models.StaffMember, error) {
	var staff models.StaffMember
	var user models.User
	var departmentName, roleName string

	dest := []interface{}{
		&staff.ID, &staff.UserID, &staff.StaffID, &staff.DepartmentID, &staff.RoleID,
		&staff.PhoneNumber, &staff.Address, &staff.CreatedAt, &staff.UpdatedAt,
		&user.Username, &user.Email, &user.FirstName, &user.LastName, &user.IsActive,
		&departmentName, &roleName,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning staff member: %v", ErrDatabaseError, err)
	}

	user.ID = staff.UserID
	staff.User = &user
	if staff.DepartmentID != nil {
		staff.Department = &models.Department{ID: *staff.DepartmentID, Name: departmentName}
	}
	staff.Role = &models.Role{ID: staff.RoleID, Name: roleName}
	return &staff, nil
}

func (r *staffRepository) CreateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error) {
	query := `INSERT INTO staff_members (user_id, staff_id, department_id, role_id, phone_number, address, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		staff.UserID, staff.StaffID, staff.DepartmentID, staff.RoleID,
		staff.PhoneNumber, staff.Address, currentTime, currentTime,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err, "staff_members_staff_id_key") {
			return nil, fmt.Errorf("%w: staff_id %q already exists", ErrDuplicateKey, staff.StaffID)
		}
		if IsUniqueViolation(err, "staff_members_user_id_key") {
			return nil, fmt.Errorf("%w: user ID %d is already associated with another staff member", ErrDuplicateKey, staff.UserID)
		}
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: referenced user, department or role does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: creating staff member: %v", ErrDatabaseError, err)
	}
	return staff, nil
}

func (r *staffRepository) GetStaffMemberByID(id int64) (*models.StaffMember, error) {
	query := `SELECT` + staffSelectColumns + staffSelectJoins + ` WHERE sm.id = $1`
	return scanStaffMemberRow(r.db.QueryRow(query, id))
}

func (r *staffRepository) GetStaffMemberByStaffID(staffID string) (*models.StaffMember, error) {
	query := `SELECT` + staffSelectColumns + staffSelectJoins + ` WHERE sm.staff_id = $1`
	return scanStaffMemberRow(r.db.QueryRow(query, staffID))
}

func (r *staffRepository) GetStaffMemberByUserID(userID int64) (*models.StaffMember, error) {
	query := `SELECT` + staffSelectColumns + staffSelectJoins + ` WHERE sm.user_id = $1`
	return scanStaffMemberRow(r.db.QueryRow(query, userID))
}

func (r *staffRepository) GetStaffMembers(filters models.StaffFilters) ([]models.StaffMember, int, error) {
	staffMembers := []models.StaffMember{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + staffSelectColumns + `,
	    COUNT(*) OVER() as total_count` + staffSelectJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.SearchTerm != nil && *filters.SearchTerm != "" {
		searchPattern := "%" + strings.ToLower(*filters.SearchTerm) + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(u.first_name) LIKE $%d OR LOWER(u.last_name) LIKE $%d OR LOWER(sm.staff_id) LIKE $%d)",
			argCount, argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	if filters.DepartmentID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.department_id = $%d", argCount))
		args = append(args, *filters.DepartmentID)
		argCount++
	}
	if filters.RoleID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.role_id = $%d", argCount))
		args = append(args, *filters.RoleID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY u.first_name ASC, u.last_name ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying staff members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		staff, err := scanStaffMemberRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		staffMembers = append(staffMembers, *staff)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating staff member rows: %v", ErrDatabaseError, err)
	}
	return staffMembers, totalCount, nil
}

func (r *staffRepository) UpdateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error) {
	query := `UPDATE staff_members SET
	            staff_id = $1, department_id = $2, role_id = $3,
	            phone_number = $4, address = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING updated_at`

	err := executor.QueryRow(query,
		staff.StaffID, staff.DepartmentID, staff.RoleID,
		staff.PhoneNumber, staff.Address, time.Now(), staff.ID,
	).Scan(&staff.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if IsUniqueViolation(err, "staff_members_staff_id_key") {
			return nil, fmt.Errorf("%w: staff_id %q already exists", ErrDuplicateKey, staff.StaffID)
		}
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: referenced department or role does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: updating staff member ID %d: %v", ErrDatabaseError, staff.ID, err)
	}
	return staff, nil
}

func (r *staffRepository) DeleteStaffMember(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM staff_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting staff member ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
