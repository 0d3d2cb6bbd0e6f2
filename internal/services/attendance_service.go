package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

// --- Custom Service Errors for Attendance ---
var (
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrAttendanceValidation = errors.New("attendance data validation error")
	ErrAttendanceDuplicate  = errors.New("attendance already recorded for this assignment and date")
	ErrAlreadyCheckedIn     = errors.New("staff member has already checked in for this assignment")
	ErrAlreadyCheckedOut    = errors.New("staff member has already checked out for this assignment")
	ErrNotCheckedIn         = errors.New("staff member must check in before checking out")
)

// lateGracePeriod is how far past the shift start a check-in still counts
// as present.
const lateGracePeriod = 10 * time.Minute

// --- Attendance DTOs ---
type CreateAttendanceRequest struct {
	StaffMemberID     int64      `json:"staff_member_id" binding:"required"`
	ShiftAssignmentID int64      `json:"shift_assignment_id" binding:"required"`
	Date              string     `json:"date" binding:"required"` // "YYYY-MM-DD"
	Status            *string    `json:"status"`
	CheckInTime       *time.Time `json:"check_in_time"`
	CheckOutTime      *time.Time `json:"check_out_time"`
	Notes             *string    `json:"notes"`
}

type UpdateAttendanceRequest struct {
	Status       *string    `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Notes        *string    `json:"notes"`
}

// --- AttendanceService Interface ---
type AttendanceService interface {
	CreateAttendance(req CreateAttendanceRequest) (*models.Attendance, error)
	GetAttendanceByID(id int64) (*models.Attendance, error)
	GetAttendanceRecords(filters models.AttendanceFilters) ([]models.Attendance, int, error)
	UpdateAttendance(id int64, req UpdateAttendanceRequest) (*models.Attendance, error)
	CheckIn(shiftAssignmentID int64, notes *string) (*models.Attendance, error)
	CheckOut(shiftAssignmentID int64) (*models.Attendance, error)
	DeleteAttendance(id int64) error
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	assignmentRepo repositories.AssignmentRepository
	db             *sql.DB
	now            func() time.Time
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(
	ar repositories.AttendanceRepository,
	asr repositories.AssignmentRepository,
	db *sql.DB,
) AttendanceService {
	return &attendanceService{attendanceRepo: ar, assignmentRepo: asr, db: db, now: time.Now}
}

// DeriveCheckInStatus classifies a check-in against the assignment's shift
// start on the assignment's date. A check-in strictly more than the grace
// period past the start is late; anything up to and including the boundary
// is present. The shift start is anchored in the check-in's location.
func DeriveCheckInStatus(checkIn time.Time, date, shiftStartTime string) (string, error) {
	startClock, err := parseClock(shiftStartTime)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAttendanceValidation, err)
	}
	shiftStart, err := combineDateAndClock(date, startClock, checkIn.Location())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAttendanceValidation, err)
	}
	if checkIn.After(shiftStart.Add(lateGracePeriod)) {
		return models.AttendanceStatusLate, nil
	}
	return models.AttendanceStatusPresent, nil
}

// loadAssignmentForAttendance fetches the assignment backing an attendance
// action and rejects inactive ones.
func (s *attendanceService) loadAssignmentForAttendance(shiftAssignmentID int64) (*models.ShiftAssignment, error) {
	assignment, err := s.assignmentRepo.GetAssignmentByID(shiftAssignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to load shift assignment: %w", err)
	}
	if !assignment.IsActive {
		return nil, fmt.Errorf("%w: shift assignment %d is not active", ErrAttendanceValidation, shiftAssignmentID)
	}
	return assignment, nil
}

// CreateAttendance records attendance manually. The date must match the
// assignment's date and the staff member must own the assignment. When no
// explicit status is given, one is derived from the check-in time, or
// defaults to absent when there is none.
func (s *attendanceService) CreateAttendance(req CreateAttendanceRequest) (*models.Attendance, error) {
	assignment, err := s.loadAssignmentForAttendance(req.ShiftAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.StaffMemberID != req.StaffMemberID {
		return nil, fmt.Errorf("%w: shift assignment %d does not belong to staff member %d",
			ErrAttendanceValidation, req.ShiftAssignmentID, req.StaffMemberID)
	}
	if req.Date != assignment.Date {
		return nil, fmt.Errorf("%w: attendance date %s does not match assignment date %s",
			ErrAttendanceValidation, req.Date, assignment.Date)
	}
	if req.CheckInTime != nil && req.CheckOutTime != nil && req.CheckOutTime.Before(*req.CheckInTime) {
		return nil, fmt.Errorf("%w: check-out time cannot be before check-in time", ErrAttendanceValidation)
	}

	var status string
	switch {
	case req.Status != nil:
		if !models.IsValidAttendanceStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown attendance status %q", ErrAttendanceValidation, *req.Status)
		}
		status = *req.Status
	case req.CheckInTime != nil:
		status, err = DeriveCheckInStatus(*req.CheckInTime, assignment.Date, assignment.Shift.StartTime)
		if err != nil {
			return nil, err
		}
	default:
		status = models.AttendanceStatusAbsent
	}

	att := &models.Attendance{
		StaffMemberID:     req.StaffMemberID,
		ShiftAssignmentID: req.ShiftAssignmentID,
		Date:              req.Date,
		Status:            status,
		CheckInTime:       req.CheckInTime,
		CheckOutTime:      req.CheckOutTime,
		Notes:             req.Notes,
	}
	created, err := s.attendanceRepo.CreateAttendance(s.db, att)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAttendanceDuplicate
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return created, nil
}

func (s *attendanceService) GetAttendanceByID(id int64) (*models.Attendance, error) {
	att, err := s.attendanceRepo.GetAttendanceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}
	return att, nil
}

func (s *attendanceService) GetAttendanceRecords(filters models.AttendanceFilters) ([]models.Attendance, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	if filters.Status != nil && !models.IsValidAttendanceStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown attendance status %q", ErrAttendanceValidation, *filters.Status)
	}
	records, totalCount, err := s.attendanceRepo.GetAttendanceRecords(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get attendance records: %w", err)
	}
	return records, totalCount, nil
}

// UpdateAttendance applies partial changes. A record already marked as leave
// keeps that status even when timing fields change; for every other record
// with a check-in time the status is re-derived from the shift start, so a
// caller cannot hand-pick present/late on a timed record.
func (s *attendanceService) UpdateAttendance(id int64, req UpdateAttendanceRequest) (*models.Attendance, error) {
	att, err := s.attendanceRepo.GetAttendanceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to find attendance record for update: %w", err)
	}

	if req.Status != nil {
		if !models.IsValidAttendanceStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown attendance status %q", ErrAttendanceValidation, *req.Status)
		}
		if att.Status != models.AttendanceStatusLeave {
			att.Status = *req.Status
		}
	}
	if req.CheckInTime != nil {
		att.CheckInTime = req.CheckInTime
	}
	if req.CheckOutTime != nil {
		att.CheckOutTime = req.CheckOutTime
	}
	if req.Notes != nil {
		att.Notes = req.Notes
	}
	if att.CheckInTime != nil && att.CheckOutTime != nil && att.CheckOutTime.Before(*att.CheckInTime) {
		return nil, fmt.Errorf("%w: check-out time cannot be before check-in time", ErrAttendanceValidation)
	}

	if att.CheckInTime != nil && att.Status != models.AttendanceStatusLeave {
		assignment, err := s.assignmentRepo.GetAssignmentByID(att.ShiftAssignmentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrAssignmentNotFound
			}
			return nil, fmt.Errorf("failed to load shift assignment for status derivation: %w", err)
		}
		att.Status, err = DeriveCheckInStatus(*att.CheckInTime, att.Date, assignment.Shift.StartTime)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.attendanceRepo.UpdateAttendance(s.db, att)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return updated, nil
}

// CheckIn stamps the current time on the assignment's attendance record,
// creating the record if this is the first attendance action of the day.
// The status is derived from the check-in timing unless the record already
// carries a leave status, which sticks.
func (s *attendanceService) CheckIn(shiftAssignmentID int64, notes *string) (*models.Attendance, error) {
	assignment, err := s.loadAssignmentForAttendance(shiftAssignmentID)
	if err != nil {
		return nil, err
	}

	checkIn := s.now()
	status, err := DeriveCheckInStatus(checkIn, assignment.Date, assignment.Shift.StartTime)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for check-in: %w", err)
	}
	defer tx.Rollback()

	att, err := s.attendanceRepo.GetAttendanceByKey(tx, assignment.StaffMemberID, assignment.ID, assignment.Date)
	switch {
	case err == nil:
		if att.CheckInTime != nil {
			return nil, ErrAlreadyCheckedIn
		}
		att.CheckInTime = &checkIn
		if att.Status != models.AttendanceStatusLeave {
			att.Status = status
		}
		if notes != nil {
			att.Notes = notes
		}
		if att, err = s.attendanceRepo.UpdateAttendance(tx, att); err != nil {
			return nil, fmt.Errorf("failed to record check-in: %w", err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		att = &models.Attendance{
			StaffMemberID:     assignment.StaffMemberID,
			ShiftAssignmentID: assignment.ID,
			Date:              assignment.Date,
			Status:            status,
			CheckInTime:       &checkIn,
			Notes:             notes,
		}
		if att, err = s.attendanceRepo.CreateAttendance(tx, att); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil, ErrAlreadyCheckedIn
			}
			return nil, fmt.Errorf("failed to create attendance record on check-in: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up attendance record for check-in: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit check-in transaction: %w", err)
	}
	return att, nil
}

// CheckOut stamps the current time as the check-out. It requires a prior
// check-in and never re-derives the status.
func (s *attendanceService) CheckOut(shiftAssignmentID int64) (*models.Attendance, error) {
	assignment, err := s.loadAssignmentForAttendance(shiftAssignmentID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for check-out: %w", err)
	}
	defer tx.Rollback()

	att, err := s.attendanceRepo.GetAttendanceByKey(tx, assignment.StaffMemberID, assignment.ID, assignment.Date)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, fmt.Errorf("failed to look up attendance record for check-out: %w", err)
	}
	if att.CheckInTime == nil {
		return nil, ErrNotCheckedIn
	}
	if att.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	checkOut := s.now()
	if checkOut.Before(*att.CheckInTime) {
		return nil, fmt.Errorf("%w: check-out time cannot be before check-in time", ErrAttendanceValidation)
	}
	att.CheckOutTime = &checkOut

	if att, err = s.attendanceRepo.UpdateAttendance(tx, att); err != nil {
		return nil, fmt.Errorf("failed to record check-out: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit check-out transaction: %w", err)
	}
	return att, nil
}

func (s *attendanceService) DeleteAttendance(id int64) error {
	err := s.attendanceRepo.DeleteAttendance(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	return nil
}
