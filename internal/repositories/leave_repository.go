package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medishift_backend/internal/models"
)

// LeaveRepository defines the interface for leave request database operations.
type LeaveRepository interface {
	CreateLeaveRequest(executor SQLExecutor, leave *models.LeaveRequest) (*models.LeaveRequest, error)
	GetLeaveRequestByID(id int64) (*models.LeaveRequest, error)
	GetLeaveRequests(filters models.LeaveFilters) ([]models.LeaveRequest, int, error)
	HasOverlappingApproved(executor SQLExecutor, staffMemberID int64, startDate, endDate string, excludeID int64) (bool, error)
	UpdateLeaveRequest(executor SQLExecutor, leave *models.LeaveRequest) (*models.LeaveRequest, error)
	UpdateLeaveStatus(executor SQLExecutor, id int64, status string, approvedBy *int64) error
	DeleteLeaveRequest(executor SQLExecutor, id int64) error
}

type leaveRepository struct {
	db *sql.DB
}

// NewLeaveRepository creates a new instance of LeaveRepository.
func NewLeaveRepository(db *sql.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

const leaveSelectColumns = `
	    lr.id, lr.staff_member_id, lr.leave_type, lr.start_date::text, lr.end_date::text,
	    lr.reason, lr.status, lr.approved_by, lr.created_at, lr.updated_at,
	    sm.staff_id, u.first_name, u.last_name`

const leaveSelectJoins = `
	  FROM leave_requests lr
	  JOIN staff_members sm ON lr.staff_member_id = sm.id
	  JOIN users u ON sm.user_id = u.id`

func scanLeaveRow(row scanner, extra ...interface{}) (*models.LeaveRequest, error) {
	var leave models.LeaveRequest
	var staff models.StaffMember
	var user models.User

	dest := []interface{}{
		&leave.ID, &leave.StaffMemberID, &leave.LeaveType, &leave.StartDate, &leave.EndDate,
		&leave.Reason, &leave.Status, &leave.ApprovedBy, &leave.CreatedAt, &leave.UpdatedAt,
		&staff.StaffID, &user.FirstName, &user.LastName,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning leave request: %v", ErrDatabaseError, err)
	}

	staff.ID = leave.StaffMemberID
	staff.User = &user
	leave.StaffMember = &staff
	return &leave, nil
}

func (r *leaveRepository) CreateLeaveRequest(executor SQLExecutor, leave *models.LeaveRequest) (*models.LeaveRequest, error) {
	query := `INSERT INTO leave_requests (staff_member_id, leave_type, start_date, end_date, reason, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, start_date::text, end_date::text, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		leave.StaffMemberID, leave.LeaveType, leave.StartDate, leave.EndDate,
		leave.Reason, leave.Status, currentTime, currentTime,
	).Scan(&leave.ID, &leave.StartDate, &leave.EndDate, &leave.CreatedAt, &leave.UpdatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: referenced staff member does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: creating leave request: %v", ErrDatabaseError, err)
	}
	return leave, nil
}

func (r *leaveRepository) GetLeaveRequestByID(id int64) (*models.LeaveRequest, error) {
	query := `SELECT` + leaveSelectColumns + leaveSelectJoins + ` WHERE lr.id = $1`
	return scanLeaveRow(r.db.QueryRow(query, id))
}

func (r *leaveRepository) GetLeaveRequests(filters models.LeaveFilters) ([]models.LeaveRequest, int, error) {
	leaves := []models.LeaveRequest{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + leaveSelectColumns + `,
	    COUNT(*) OVER() as total_count` + leaveSelectJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.staff_id = $%d", argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("(lr.start_date >= $%d OR lr.end_date >= $%d)", argCount, argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("(lr.start_date <= $%d OR lr.end_date <= $%d)", argCount, argCount))
		args = append(args, *filters.EndDate)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY lr.start_date DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying leave requests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		leave, err := scanLeaveRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		leaves = append(leaves, *leave)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating leave request rows: %v", ErrDatabaseError, err)
	}
	return leaves, totalCount, nil
}

// HasOverlappingApproved reports whether the staff member has an approved
// leave whose inclusive range intersects [startDate, endDate], excluding the
// given request ID (0 for none). Runs against the caller's executor so the
// approval path checks and writes in one transaction.
func (r *leaveRepository) HasOverlappingApproved(executor SQLExecutor, staffMemberID int64, startDate, endDate string, excludeID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM leave_requests
	          WHERE staff_member_id = $1 AND status = 'approved'
	            AND start_date <= $2 AND end_date >= $3 AND id <> $4`

	err := executor.QueryRow(query, staffMemberID, endDate, startDate, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: checking overlapping approved leave: %v", ErrDatabaseError, err)
	}
	return count > 0, nil
}

func (r *leaveRepository) UpdateLeaveRequest(executor SQLExecutor, leave *models.LeaveRequest) (*models.LeaveRequest, error) {
	query := `UPDATE leave_requests SET
	            leave_type = $1, start_date = $2, end_date = $3, reason = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING start_date::text, end_date::text, updated_at`

	err := executor.QueryRow(query,
		leave.LeaveType, leave.StartDate, leave.EndDate, leave.Reason, time.Now(), leave.ID,
	).Scan(&leave.StartDate, &leave.EndDate, &leave.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating leave request ID %d: %v", ErrDatabaseError, leave.ID, err)
	}
	return leave, nil
}

// UpdateLeaveStatus writes a status transition, recording the approver for
// approve/reject actions.
func (r *leaveRepository) UpdateLeaveStatus(executor SQLExecutor, id int64, status string, approvedBy *int64) error {
	var result sql.Result
	var err error
	if approvedBy != nil {
		result, err = executor.Exec(
			`UPDATE leave_requests SET status = $1, approved_by = $2, updated_at = $3 WHERE id = $4`,
			status, *approvedBy, time.Now(), id,
		)
	} else {
		result, err = executor.Exec(
			`UPDATE leave_requests SET status = $1, updated_at = $2 WHERE id = $3`,
			status, time.Now(), id,
		)
	}
	if err != nil {
		return fmt.Errorf("%w: updating leave request %d status to %s: %v", ErrDatabaseError, id, status, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *leaveRepository) DeleteLeaveRequest(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting leave request ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
