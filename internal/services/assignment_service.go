package services

import (
	"database/sql"
	"errors"
	"fmt"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

// --- Custom Service Errors for Shift Assignments ---
var (
	ErrAssignmentNotFound   = errors.New("shift assignment not found")
	ErrAssignmentValidation = errors.New("shift assignment validation error")
	ErrAssignmentConflict   = errors.New("staff member already has an active shift assignment on this date")
)

// --- Assignment DTOs ---
type CreateAssignmentRequest struct {
	StaffMemberID int64  `json:"staff_member_id" binding:"required"`
	ShiftID       int64  `json:"shift_id" binding:"required"`
	Date          string `json:"date" binding:"required"` // "YYYY-MM-DD"
	IsActive      *bool  `json:"is_active"`
}

type UpdateAssignmentRequest struct {
	ShiftID  *int64  `json:"shift_id"`
	Date     *string `json:"date"`
	IsActive *bool   `json:"is_active"`
}

// --- AssignmentService Interface ---
type AssignmentService interface {
	CreateAssignment(req CreateAssignmentRequest) (*models.ShiftAssignment, error)
	GetAssignmentByID(id int64) (*models.ShiftAssignment, error)
	GetAssignments(filters models.AssignmentFilters) ([]models.ShiftAssignment, int, error)
	GetSchedule(startDate string, days int) ([]models.DaySchedule, error)
	UpdateAssignment(id int64, req UpdateAssignmentRequest) (*models.ShiftAssignment, error)
	DeleteAssignment(id int64) error
}

type assignmentService struct {
	assignmentRepo repositories.AssignmentRepository
	staffRepo      repositories.StaffRepository
	shiftRepo      repositories.ShiftRepository
	db             *sql.DB
}

// NewAssignmentService creates a new instance of AssignmentService.
func NewAssignmentService(
	ar repositories.AssignmentRepository,
	str repositories.StaffRepository,
	shr repositories.ShiftRepository,
	db *sql.DB,
) AssignmentService {
	return &assignmentService{assignmentRepo: ar, staffRepo: str, shiftRepo: shr, db: db}
}

// CreateAssignment persists a new assignment after verifying the exclusivity
// rule: no other active assignment may exist for the same staff member and
// date. Check and insert run in one transaction; the unique constraint on
// (staff_member_id, date) backstops concurrent writers.
func (s *assignmentService) CreateAssignment(req CreateAssignmentRequest) (*models.ShiftAssignment, error) {
	if _, err := parseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssignmentValidation, err)
	}

	if _, err := s.staffRepo.GetStaffMemberByID(req.StaffMemberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to verify staff member: %w", err)
	}
	if _, err := s.shiftRepo.GetShiftByID(req.ShiftID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to verify shift: %w", err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for assignment creation: %w", err)
	}
	defer tx.Rollback()

	if isActive {
		count, err := s.assignmentRepo.CountActiveForStaffDate(tx, req.StaffMemberID, req.Date, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to run assignment conflict check: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: staff member %d on %s", ErrAssignmentConflict, req.StaffMemberID, req.Date)
		}
	}

	assignment := &models.ShiftAssignment{
		StaffMemberID: req.StaffMemberID,
		ShiftID:       req.ShiftID,
		Date:          req.Date,
		IsActive:      isActive,
	}
	created, err := s.assignmentRepo.CreateAssignment(tx, assignment)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: staff member %d on %s", ErrAssignmentConflict, req.StaffMemberID, req.Date)
		}
		return nil, fmt.Errorf("failed to create shift assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment creation transaction: %w", err)
	}
	return s.GetAssignmentByID(created.ID)
}

func (s *assignmentService) GetAssignmentByID(id int64) (*models.ShiftAssignment, error) {
	assignment, err := s.assignmentRepo.GetAssignmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get shift assignment by ID: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) GetAssignments(filters models.AssignmentFilters) ([]models.ShiftAssignment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	if filters.StartDate != nil {
		if _, err := parseDate(*filters.StartDate); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrAssignmentValidation, err)
		}
	}
	if filters.EndDate != nil {
		if _, err := parseDate(*filters.EndDate); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrAssignmentValidation, err)
		}
	}
	assignments, totalCount, err := s.assignmentRepo.GetAssignments(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get shift assignments: %w", err)
	}
	return assignments, totalCount, nil
}

// GetSchedule builds the day-by-day roster view: every date from startDate
// for the given number of days appears once, holding its active assignments
// (possibly none).
func (s *assignmentService) GetSchedule(startDate string, days int) ([]models.DaySchedule, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssignmentValidation, err)
	}
	if days <= 0 {
		days = 7
	}
	if days > 31 {
		return nil, fmt.Errorf("%w: schedule window cannot exceed 31 days", ErrAssignmentValidation)
	}

	endDate := start.AddDate(0, 0, days-1).Format(dateLayout)
	assignments, err := s.assignmentRepo.GetActiveAssignmentsInRange(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule assignments: %w", err)
	}

	byDate := make(map[string][]models.ShiftAssignment, days)
	for _, a := range assignments {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	schedule := make([]models.DaySchedule, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		dayAssignments := byDate[date]
		if dayAssignments == nil {
			dayAssignments = []models.ShiftAssignment{}
		}
		schedule = append(schedule, models.DaySchedule{Date: date, Assignments: dayAssignments})
	}
	return schedule, nil
}

// UpdateAssignment applies partial changes and re-runs the exclusivity check
// against the resulting (staff member, date, active) state, excluding the
// assignment itself.
func (s *assignmentService) UpdateAssignment(id int64, req UpdateAssignmentRequest) (*models.ShiftAssignment, error) {
	assignment, err := s.assignmentRepo.GetAssignmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find shift assignment for update: %w", err)
	}

	if req.ShiftID != nil {
		if _, err := s.shiftRepo.GetShiftByID(*req.ShiftID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrShiftNotFound
			}
			return nil, fmt.Errorf("failed to verify shift: %w", err)
		}
		assignment.ShiftID = *req.ShiftID
	}
	if req.Date != nil {
		if _, err := parseDate(*req.Date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssignmentValidation, err)
		}
		assignment.Date = *req.Date
	}
	if req.IsActive != nil {
		assignment.IsActive = *req.IsActive
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for assignment update: %w", err)
	}
	defer tx.Rollback()

	if assignment.IsActive {
		count, err := s.assignmentRepo.CountActiveForStaffDate(tx, assignment.StaffMemberID, assignment.Date, assignment.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to run assignment conflict check: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: staff member %d on %s", ErrAssignmentConflict, assignment.StaffMemberID, assignment.Date)
		}
	}

	if _, err := s.assignmentRepo.UpdateAssignment(tx, assignment); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: staff member %d on %s", ErrAssignmentConflict, assignment.StaffMemberID, assignment.Date)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to update shift assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment update transaction: %w", err)
	}
	return s.GetAssignmentByID(assignment.ID)
}

func (s *assignmentService) DeleteAssignment(id int64) error {
	err := s.assignmentRepo.DeleteAssignment(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to delete shift assignment: %w", err)
	}
	return nil
}
