package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medishift_backend/internal/models"
)

// AttendanceRepository defines the interface for attendance database operations.
type AttendanceRepository interface {
	CreateAttendance(executor SQLExecutor, att *models.Attendance) (*models.Attendance, error)
	GetAttendanceByID(id int64) (*models.Attendance, error)
	GetAttendanceByKey(executor SQLExecutor, staffMemberID, shiftAssignmentID int64, date string) (*models.Attendance, error)
	GetAttendanceRecords(filters models.AttendanceFilters) ([]models.Attendance, int, error)
	UpdateAttendance(executor SQLExecutor, att *models.Attendance) (*models.Attendance, error)
	DeleteAttendance(executor SQLExecutor, id int64) error
}

type attendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceSelectColumns = `
	    at.id, at.staff_member_id, at.shift_assignment_id, at.date::text, at.status,
	    at.check_in_time, at.check_out_time, at.notes, at.created_at, at.updated_at,
	    sm.staff_id, u.first_name, u.last_name`

const attendanceSelectJoins = `
	  FROM attendance at
	  JOIN staff_members sm ON at.staff_member_id = sm.id
	  JOIN users u ON sm.user_id = u.id`

func scanAttendanceRow(row scanner, extra ...interface{}) (*models.Attendance, error) {
	var att models.Attendance
	var staff models.StaffMember
	var user models.User

	dest := []interface{}{
		&att.ID, &att.StaffMemberID, &att.ShiftAssignmentID, &att.Date, &att.Status,
		&att.CheckInTime, &att.CheckOutTime, &att.Notes, &att.CreatedAt, &att.UpdatedAt,
		&staff.StaffID, &user.FirstName, &user.LastName,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning attendance record: %v", ErrDatabaseError, err)
	}

	staff.ID = att.StaffMemberID
	staff.User = &user
	att.StaffMember = &staff
	return &att, nil
}

func (r *attendanceRepository) CreateAttendance(executor SQLExecutor, att *models.Attendance) (*models.Attendance, error) {
	query := `INSERT INTO attendance (staff_member_id, shift_assignment_id, date, status, check_in_time, check_out_time, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, date::text, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		att.StaffMemberID, att.ShiftAssignmentID, att.Date, att.Status,
		att.CheckInTime, att.CheckOutTime, att.Notes, currentTime, currentTime,
	).Scan(&att.ID, &att.Date, &att.CreatedAt, &att.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err, "attendance_staff_date_assignment_key") {
			return nil, fmt.Errorf("%w: attendance already recorded for staff %d on %s",
				ErrDuplicateKey, att.StaffMemberID, att.Date)
		}
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: referenced staff member or shift assignment does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: creating attendance record: %v", ErrDatabaseError, err)
	}
	return att, nil
}

func (r *attendanceRepository) GetAttendanceByID(id int64) (*models.Attendance, error) {
	query := `SELECT` + attendanceSelectColumns + attendanceSelectJoins + ` WHERE at.id = $1`
	return scanAttendanceRow(r.db.QueryRow(query, id))
}

// GetAttendanceByKey looks up the single attendance row for a
// (staff member, shift assignment, date) key. The check-in/check-out
// workflows run it on their transaction executor.
func (r *attendanceRepository) GetAttendanceByKey(executor SQLExecutor, staffMemberID, shiftAssignmentID int64, date string) (*models.Attendance, error) {
	att := &models.Attendance{}
	query := `SELECT id, staff_member_id, shift_assignment_id, date::text, status,
	                 check_in_time, check_out_time, notes, created_at, updated_at
	          FROM attendance
	          WHERE staff_member_id = $1 AND shift_assignment_id = $2 AND date = $3`

	err := executor.QueryRow(query, staffMemberID, shiftAssignmentID, date).Scan(
		&att.ID, &att.StaffMemberID, &att.ShiftAssignmentID, &att.Date, &att.Status,
		&att.CheckInTime, &att.CheckOutTime, &att.Notes, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting attendance by key: %v", ErrDatabaseError, err)
	}
	return att, nil
}

func (r *attendanceRepository) GetAttendanceRecords(filters models.AttendanceFilters) ([]models.Attendance, int, error) {
	records := []models.Attendance{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + attendanceSelectColumns + `,
	    COUNT(*) OVER() as total_count` + attendanceSelectJoins)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.staff_id = $%d", argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("at.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("at.date >= $%d", argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("at.date <= $%d", argCount))
		args = append(args, *filters.EndDate)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY at.date DESC, sm.staff_id ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying attendance records: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		att, err := scanAttendanceRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *att)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating attendance rows: %v", ErrDatabaseError, err)
	}
	return records, totalCount, nil
}

func (r *attendanceRepository) UpdateAttendance(executor SQLExecutor, att *models.Attendance) (*models.Attendance, error) {
	query := `UPDATE attendance SET
	            status = $1, check_in_time = $2, check_out_time = $3, notes = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING updated_at`

	err := executor.QueryRow(query,
		att.Status, att.CheckInTime, att.CheckOutTime, att.Notes, time.Now(), att.ID,
	).Scan(&att.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating attendance ID %d: %v", ErrDatabaseError, att.ID, err)
	}
	return att, nil
}

func (r *attendanceRepository) DeleteAttendance(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting attendance ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
