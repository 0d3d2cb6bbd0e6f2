package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medishift_backend/internal/models"
)

// AssignmentRepository defines the interface for shift assignment database
// operations. Methods that participate in the conflict check, the leave
// cascade or the swap exchange take an SQLExecutor so the caller can run
// them inside a transaction.
type AssignmentRepository interface {
	CreateAssignment(executor SQLExecutor, assignment *models.ShiftAssignment) (*models.ShiftAssignment, error)
	GetAssignmentByID(id int64) (*models.ShiftAssignment, error)
	GetAssignments(filters models.AssignmentFilters) ([]models.ShiftAssignment, int, error)
	GetActiveAssignmentsInRange(startDate, endDate string) ([]models.ShiftAssignment, error)
	CountActiveForStaffDate(executor SQLExecutor, staffMemberID int64, date string, excludeID int64) (int, error)
	GetActiveByStaffAndDate(executor SQLExecutor, staffMemberID int64, date string) (*models.ShiftAssignment, error)
	UpdateAssignment(executor SQLExecutor, assignment *models.ShiftAssignment) (*models.ShiftAssignment, error)
	UpdateAssignmentShift(executor SQLExecutor, assignmentID, shiftID int64) error
	DeactivateForStaffDateRange(executor SQLExecutor, staffMemberID int64, startDate, endDate string) (int64, error)
	DeleteAssignment(executor SQLExecutor, id int64) error
}

type assignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

const assignmentSelectColumns = `
	    a.id, a.staff_member_id, a.shift_id, a.date::text, a.is_active, a.created_at, a.updated_at,
	    sm.staff_id, u.first_name, u.last_name,
	    s.name, s.start_time::text, s.end_time::text, s.is_night_shift`

const assignmentSelectJoins = `
	  FROM shift_assignments a
	  JOIN staff_members sm ON a.staff_member_id = sm.id
	  JOIN users u ON sm.user_id = u.id
	  JOIN shifts s ON a.shift_id = s.id`

// scanAssignmentRow scans a row produced by the assignment select with its
// staff and shift joins.
func scanAssignmentRow(row scanner, extra ...interface{}) (*models.ShiftAssignment, error) {
	var assignment models.ShiftAssignment
	var staff models.StaffMember
	var user models.User
	var shift models.Shift

	dest := []interface{}{
		&assignment.ID, &assignment.StaffMemberID, &assignment.ShiftID, &assignment.Date,
		&assignment.IsActive, &assignment.CreatedAt, &assignment.UpdatedAt,
		&staff.StaffID, &user.FirstName, &user.LastName,
		&shift.Name, &shift.StartTime, &shift.EndTime, &shift.IsNightShift,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning shift assignment: %v", ErrDatabaseError, err)
	}

	staff.ID = assignment.StaffMemberID
	staff.User = &user
	shift.ID = assignment.ShiftID
	assignment.StaffMember = &staff
	assignment.Shift = &shift
	return &assignment, nil
}

func (r *assignmentRepository) CreateAssignment(executor SQLExecutor, assignment *models.ShiftAssignment) (*models.ShiftAssignment, error) {
	query := `INSERT INTO shift_assignments (staff_member_id, shift_id, date, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, date::text, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		assignment.StaffMemberID, assignment.ShiftID, assignment.Date,
		assignment.IsActive, currentTime, currentTime,
	).Scan(&assignment.ID, &assignment.Date, &assignment.CreatedAt, &assignment.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err, "shift_assignments_staff_member_id_date_key") {
			return nil, fmt.Errorf("%w: staff member %d already has an assignment on %s",
				ErrDuplicateKey, assignment.StaffMemberID, assignment.Date)
		}
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: referenced staff member or shift does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: creating shift assignment: %v", ErrDatabaseError, err)
	}
	return assignment, nil
}

func (r *assignmentRepository) GetAssignmentByID(id int64) (*models.ShiftAssignment, error) {
	query := `SELECT` + assignmentSelectColumns + assignmentSelectJoins + ` WHERE a.id = $1`
	return scanAssignmentRow(r.db.QueryRow(query, id))
}

func (r *assignmentRepository) GetAssignments(filters models.AssignmentFilters) ([]models.ShiftAssignment, int, error) {
	assignments := []models.ShiftAssignment{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + assignmentSelectColumns + `,
	    COUNT(*) OVER() as total_count` + assignmentSelectJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.staff_id = $%d", argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.RoleID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.role_id = $%d", argCount))
		args = append(args, *filters.RoleID)
		argCount++
	}
	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argCount))
		args = append(args, *filters.EndDate)
		argCount++
	}
	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("a.is_active = $%d", argCount))
		args = append(args, *filters.IsActive)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY a.date ASC, s.start_time ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying shift assignments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		assignment, err := scanAssignmentRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		assignments = append(assignments, *assignment)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating shift assignment rows: %v", ErrDatabaseError, err)
	}
	return assignments, totalCount, nil
}

// GetActiveAssignmentsInRange returns all active assignments whose date lies
// in [startDate, endDate], ordered for schedule grouping.
func (r *assignmentRepository) GetActiveAssignmentsInRange(startDate, endDate string) ([]models.ShiftAssignment, error) {
	assignments := []models.ShiftAssignment{}
	query := `SELECT` + assignmentSelectColumns + assignmentSelectJoins + `
	  WHERE a.date >= $1 AND a.date <= $2 AND a.is_active = TRUE
	  ORDER BY a.date ASC, s.start_time ASC`

	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: querying schedule assignments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		assignment, err := scanAssignmentRow(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating schedule rows: %v", ErrDatabaseError, err)
	}
	return assignments, nil
}

// CountActiveForStaffDate counts active assignments for a staff member on a
// date, excluding the given assignment ID (0 for none). Used as the conflict
// pre-check before every persist; the unique constraint remains the backstop.
func (r *assignmentRepository) CountActiveForStaffDate(executor SQLExecutor, staffMemberID int64, date string, excludeID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM shift_assignments
	          WHERE staff_member_id = $1 AND date = $2 AND is_active = TRUE AND id <> $3`

	err := executor.QueryRow(query, staffMemberID, date, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting active assignments: %v", ErrDatabaseError, err)
	}
	return count, nil
}

// GetActiveByStaffAndDate returns the active assignment of a staff member on
// a date. The exclusivity invariant allows at most one; ordering by id keeps
// the lookup deterministic regardless.
func (r *assignmentRepository) GetActiveByStaffAndDate(executor SQLExecutor, staffMemberID int64, date string) (*models.ShiftAssignment, error) {
	assignment := &models.ShiftAssignment{}
	query := `SELECT id, staff_member_id, shift_id, date::text, is_active, created_at, updated_at
	          FROM shift_assignments
	          WHERE staff_member_id = $1 AND date = $2 AND is_active = TRUE
	          ORDER BY id ASC LIMIT 1`

	err := executor.QueryRow(query, staffMemberID, date).Scan(
		&assignment.ID, &assignment.StaffMemberID, &assignment.ShiftID, &assignment.Date,
		&assignment.IsActive, &assignment.CreatedAt, &assignment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting active assignment for staff %d on %s: %v",
			ErrDatabaseError, staffMemberID, date, err)
	}
	return assignment, nil
}

func (r *assignmentRepository) UpdateAssignment(executor SQLExecutor, assignment *models.ShiftAssignment) (*models.ShiftAssignment, error) {
	query := `UPDATE shift_assignments SET
	            staff_member_id = $1, shift_id = $2, date = $3, is_active = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING date::text, updated_at`

	err := executor.QueryRow(query,
		assignment.StaffMemberID, assignment.ShiftID, assignment.Date,
		assignment.IsActive, time.Now(), assignment.ID,
	).Scan(&assignment.Date, &assignment.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if IsUniqueViolation(err, "shift_assignments_staff_member_id_date_key") {
			return nil, fmt.Errorf("%w: staff member %d already has an assignment on %s",
				ErrDuplicateKey, assignment.StaffMemberID, assignment.Date)
		}
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: referenced staff member or shift does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: updating shift assignment ID %d: %v", ErrDatabaseError, assignment.ID, err)
	}
	return assignment, nil
}

// UpdateAssignmentShift repoints a single assignment at a different shift.
// The swap transaction calls this once per side inside one *sql.Tx.
func (r *assignmentRepository) UpdateAssignmentShift(executor SQLExecutor, assignmentID, shiftID int64) error {
	result, err := executor.Exec(
		`UPDATE shift_assignments SET shift_id = $1, updated_at = $2 WHERE id = $3`,
		shiftID, time.Now(), assignmentID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating shift of assignment ID %d: %v", ErrDatabaseError, assignmentID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateForStaffDateRange flips is_active to FALSE on every active
// assignment of the staff member dated inside [startDate, endDate]. The leave
// approval cascade runs this in the same transaction as the status write.
func (r *assignmentRepository) DeactivateForStaffDateRange(executor SQLExecutor, staffMemberID int64, startDate, endDate string) (int64, error) {
	result, err := executor.Exec(
		`UPDATE shift_assignments SET is_active = FALSE, updated_at = $1
		 WHERE staff_member_id = $2 AND date >= $3 AND date <= $4 AND is_active = TRUE`,
		time.Now(), staffMemberID, startDate, endDate,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: deactivating assignments for staff %d: %v", ErrDatabaseError, staffMemberID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

func (r *assignmentRepository) DeleteAssignment(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM shift_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting shift assignment ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
