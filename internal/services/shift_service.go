package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

// --- Custom Service Errors for Shifts ---
var (
	ErrShiftNotFound   = errors.New("shift not found")
	ErrShiftValidation = errors.New("shift validation error")
	ErrShiftInUse      = errors.New("shift cannot be deleted as it is referenced by assignments")
)

// --- Shift DTOs ---
type CreateShiftRequest struct {
	Name          string `json:"name" binding:"required"`
	StartTime     string `json:"start_time" binding:"required"` // "HH:MM" or "HH:MM:SS"
	EndTime       string `json:"end_time" binding:"required"`
	BreakDuration *int   `json:"break_duration"`
	IsNightShift  bool   `json:"is_night_shift"`
}

type UpdateShiftRequest struct {
	Name          *string `json:"name"`
	StartTime     *string `json:"start_time"`
	EndTime       *string `json:"end_time"`
	BreakDuration *int    `json:"break_duration"`
	IsNightShift  *bool   `json:"is_night_shift"`
}

// --- ShiftService Interface ---
type ShiftService interface {
	CreateShift(req CreateShiftRequest) (*models.Shift, error)
	GetShiftByID(shiftID int64) (*models.Shift, error)
	GetShifts(page, pageSize int) ([]models.Shift, int, error)
	UpdateShift(shiftID int64, req UpdateShiftRequest) (*models.Shift, error)
	DeleteShift(shiftID int64) error
}

type shiftService struct {
	shiftRepo repositories.ShiftRepository
	db        *sql.DB
}

// NewShiftService creates a new instance of ShiftService.
func NewShiftService(sr repositories.ShiftRepository, db *sql.DB) ShiftService {
	return &shiftService{shiftRepo: sr, db: db}
}

// ComputeShiftDuration measures a shift span in minutes. A night shift whose
// end clock time falls before its start spans midnight, so 24 hours are added
// to the end before subtracting. Returns an error when a non-night shift does
// not start strictly before it ends.
func ComputeShiftDuration(startTime, endTime string, isNightShift bool) (int, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return 0, fmt.Errorf("start_time: %w", err)
	}
	end, err := parseClock(endTime)
	if err != nil {
		return 0, fmt.Errorf("end_time: %w", err)
	}

	startMin := clockMinutes(start)
	endMin := clockMinutes(end)

	if startMin == endMin {
		return 0, fmt.Errorf("%w: shift cannot have zero length", ErrShiftValidation)
	}
	if startMin > endMin && !isNightShift {
		return 0, fmt.Errorf("%w: start time must be before end time, unless it is a night shift spanning midnight", ErrShiftValidation)
	}
	if isNightShift && endMin < startMin {
		return (endMin + 24*60) - startMin, nil
	}
	return endMin - startMin, nil
}

// ValidateShiftTimes runs the full shift invariant check: time ordering (with
// the night-shift exemption) and break duration strictly below the computed
// shift span.
func ValidateShiftTimes(startTime, endTime string, breakDuration int, isNightShift bool) error {
	duration, err := ComputeShiftDuration(startTime, endTime, isNightShift)
	if err != nil {
		return err
	}
	if breakDuration < 0 {
		return fmt.Errorf("%w: break duration cannot be negative", ErrShiftValidation)
	}
	if breakDuration >= duration {
		return fmt.Errorf("%w: break duration (%d min) must be less than the total shift duration (%d min)",
			ErrShiftValidation, breakDuration, duration)
	}
	return nil
}

func (s *shiftService) CreateShift(req CreateShiftRequest) (*models.Shift, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: shift name cannot be empty", ErrShiftValidation)
	}

	breakDuration := 30 // default break, minutes
	if req.BreakDuration != nil {
		breakDuration = *req.BreakDuration
	}

	if err := ValidateShiftTimes(req.StartTime, req.EndTime, breakDuration, req.IsNightShift); err != nil {
		return nil, err
	}

	shift := &models.Shift{
		Name:          req.Name,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		BreakDuration: breakDuration,
		IsNightShift:  req.IsNightShift,
	}

	createdShift, err := s.shiftRepo.CreateShift(s.db, shift)
	if err != nil {
		return nil, fmt.Errorf("failed to create shift in repository: %w", err)
	}
	return createdShift, nil
}

func (s *shiftService) GetShiftByID(shiftID int64) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift by ID: %w", err)
	}
	return shift, nil
}

func (s *shiftService) GetShifts(page, pageSize int) ([]models.Shift, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	shifts, totalCount, err := s.shiftRepo.GetShifts(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get shifts: %w", err)
	}
	return shifts, totalCount, nil
}

func (s *shiftService) UpdateShift(shiftID int64, req UpdateShiftRequest) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to find shift for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: shift name cannot be empty if provided", ErrShiftValidation)
		}
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.BreakDuration != nil {
		shift.BreakDuration = *req.BreakDuration
	}
	if req.IsNightShift != nil {
		shift.IsNightShift = *req.IsNightShift
	}

	// The full invariant re-runs on every update, not only when times change.
	if err := ValidateShiftTimes(shift.StartTime, shift.EndTime, shift.BreakDuration, shift.IsNightShift); err != nil {
		return nil, err
	}

	updatedShift, err := s.shiftRepo.UpdateShift(s.db, shift)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to update shift in repository: %w", err)
	}
	return updatedShift, nil
}

func (s *shiftService) DeleteShift(shiftID int64) error {
	_, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to find shift for deletion: %w", err)
	}
	err = s.shiftRepo.DeleteShift(s.db, shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrShiftNotFound
		}
		if strings.Contains(err.Error(), "violates foreign key constraint") {
			return ErrShiftInUse
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}
