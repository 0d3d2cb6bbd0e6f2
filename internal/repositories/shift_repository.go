package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medishift_backend/internal/models"
)

// ShiftRepository defines the interface for shift definition database operations.
type ShiftRepository interface {
	CreateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error)
	GetShiftByID(id int64) (*models.Shift, error)
	GetShifts(page, pageSize int) ([]models.Shift, int, error)
	UpdateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error)
	DeleteShift(executor SQLExecutor, id int64) error
}

type shiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) CreateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	query := `INSERT INTO shifts (name, start_time, end_time, break_duration, is_night_shift, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, start_time::text, end_time::text, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		shift.Name, shift.StartTime, shift.EndTime, shift.BreakDuration,
		shift.IsNightShift, currentTime, currentTime,
	).Scan(&shift.ID, &shift.StartTime, &shift.EndTime, &shift.CreatedAt, &shift.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("%w: creating shift: %v", ErrDatabaseError, err)
	}
	return shift, nil
}

func (r *shiftRepository) GetShiftByID(id int64) (*models.Shift, error) {
	shift := &models.Shift{}
	query := `SELECT id, name, start_time::text, end_time::text, break_duration, is_night_shift, created_at, updated_at
	          FROM shifts WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(
		&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime,
		&shift.BreakDuration, &shift.IsNightShift, &shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting shift by ID %d: %v", ErrDatabaseError, id, err)
	}
	return shift, nil
}

func (r *shiftRepository) GetShifts(page, pageSize int) ([]models.Shift, int, error) {
	shifts := []models.Shift{}
	totalCount := 0

	query := `SELECT id, name, start_time::text, end_time::text, break_duration, is_night_shift, created_at, updated_at,
	                 COUNT(*) OVER() as total_count
	          FROM shifts ORDER BY start_time ASC, end_time ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var shift models.Shift
		if err := rows.Scan(
			&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime,
			&shift.BreakDuration, &shift.IsNightShift, &shift.CreatedAt, &shift.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning shift: %v", ErrDatabaseError, err)
		}
		shifts = append(shifts, shift)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating shift rows: %v", ErrDatabaseError, err)
	}
	return shifts, totalCount, nil
}

func (r *shiftRepository) UpdateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	query := `UPDATE shifts SET
	            name = $1, start_time = $2, end_time = $3, break_duration = $4, is_night_shift = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING start_time::text, end_time::text, updated_at`

	err := executor.QueryRow(query,
		shift.Name, shift.StartTime, shift.EndTime, shift.BreakDuration,
		shift.IsNightShift, time.Now(), shift.ID,
	).Scan(&shift.StartTime, &shift.EndTime, &shift.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating shift ID %d: %v", ErrDatabaseError, shift.ID, err)
	}
	return shift, nil
}

func (r *shiftRepository) DeleteShift(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting shift ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
