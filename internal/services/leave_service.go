package services

import (
	"database/sql"
	"errors"
	"fmt"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

// --- Custom Service Errors for Leave Requests ---
var (
	ErrLeaveNotFound         = errors.New("leave request not found")
	ErrLeaveValidation       = errors.New("leave request validation error")
	ErrLeaveAlreadyProcessed = errors.New("leave request has already been processed")
	ErrLeaveNotCancellable   = errors.New("only pending or approved leave requests can be cancelled")
	ErrLeaveOverlap          = errors.New("staff member already has approved leave overlapping this period")
)

// --- Leave DTOs ---
type CreateLeaveRequest struct {
	StaffMemberID int64   `json:"staff_member_id" binding:"required"`
	LeaveType     string  `json:"leave_type" binding:"required"`
	StartDate     string  `json:"start_date" binding:"required"` // "YYYY-MM-DD"
	EndDate       string  `json:"end_date" binding:"required"`
	Reason        *string `json:"reason"`
}

type UpdateLeaveRequest struct {
	LeaveType *string `json:"leave_type"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Reason    *string `json:"reason"`
}

// LeaveApprovalResult reports the outcome of an approval, including how many
// shift assignments the cascade deactivated.
type LeaveApprovalResult struct {
	LeaveRequest           *models.LeaveRequest `json:"leave_request"`
	DeactivatedAssignments int64                `json:"deactivated_assignments"`
}

// --- LeaveService Interface ---
type LeaveService interface {
	CreateLeaveRequest(req CreateLeaveRequest) (*models.LeaveRequest, error)
	GetLeaveRequestByID(id int64) (*models.LeaveRequest, error)
	GetLeaveRequests(filters models.LeaveFilters) ([]models.LeaveRequest, int, error)
	UpdateLeaveRequest(id int64, req UpdateLeaveRequest) (*models.LeaveRequest, error)
	ApproveLeaveRequest(id, approverUserID int64) (*LeaveApprovalResult, error)
	RejectLeaveRequest(id, approverUserID int64) (*models.LeaveRequest, error)
	CancelLeaveRequest(id int64) (*models.LeaveRequest, error)
	DeleteLeaveRequest(id int64) error
}

type leaveService struct {
	leaveRepo      repositories.LeaveRepository
	assignmentRepo repositories.AssignmentRepository
	staffRepo      repositories.StaffRepository
	db             *sql.DB
}

// NewLeaveService creates a new instance of LeaveService.
func NewLeaveService(
	lr repositories.LeaveRepository,
	ar repositories.AssignmentRepository,
	str repositories.StaffRepository,
	db *sql.DB,
) LeaveService {
	return &leaveService{leaveRepo: lr, assignmentRepo: ar, staffRepo: str, db: db}
}

// validateLeavePeriod checks the leave type and the inclusive date range.
func validateLeavePeriod(leaveType, startDate, endDate string) error {
	if !models.IsValidLeaveType(leaveType) {
		return fmt.Errorf("%w: unknown leave type %q", ErrLeaveValidation, leaveType)
	}
	start, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLeaveValidation, err)
	}
	end, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLeaveValidation, err)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date cannot be before start date", ErrLeaveValidation)
	}
	return nil
}

func (s *leaveService) CreateLeaveRequest(req CreateLeaveRequest) (*models.LeaveRequest, error) {
	if err := validateLeavePeriod(req.LeaveType, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if _, err := s.staffRepo.GetStaffMemberByID(req.StaffMemberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to verify staff member: %w", err)
	}

	leave := &models.LeaveRequest{
		StaffMemberID: req.StaffMemberID,
		LeaveType:     req.LeaveType,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Reason:        req.Reason,
		Status:        models.LeaveStatusPending,
	}
	created, err := s.leaveRepo.CreateLeaveRequest(s.db, leave)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

func (s *leaveService) GetLeaveRequestByID(id int64) (*models.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetLeaveRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to get leave request by ID: %w", err)
	}
	return leave, nil
}

func (s *leaveService) GetLeaveRequests(filters models.LeaveFilters) ([]models.LeaveRequest, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	if filters.Status != nil && !models.IsValidLeaveStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown leave status %q", ErrLeaveValidation, *filters.Status)
	}
	leaves, totalCount, err := s.leaveRepo.GetLeaveRequests(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get leave requests: %w", err)
	}
	return leaves, totalCount, nil
}

// UpdateLeaveRequest edits the period, type or reason of a request that is
// still pending. Processed requests are immutable apart from cancellation.
func (s *leaveService) UpdateLeaveRequest(id int64, req UpdateLeaveRequest) (*models.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetLeaveRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to find leave request for update: %w", err)
	}
	if leave.Status != models.LeaveStatusPending {
		return nil, fmt.Errorf("%w: current status is %q", ErrLeaveAlreadyProcessed, leave.Status)
	}

	if req.LeaveType != nil {
		leave.LeaveType = *req.LeaveType
	}
	if req.StartDate != nil {
		leave.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		leave.EndDate = *req.EndDate
	}
	if req.Reason != nil {
		leave.Reason = req.Reason
	}
	if err := validateLeavePeriod(leave.LeaveType, leave.StartDate, leave.EndDate); err != nil {
		return nil, err
	}

	updated, err := s.leaveRepo.UpdateLeaveRequest(s.db, leave)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to update leave request: %w", err)
	}
	return updated, nil
}

// ApproveLeaveRequest transitions a pending request to approved and cascades:
// every active shift assignment of the staff member dated inside the leave
// period is deactivated. The overlap check, status write and deactivation run
// in a single transaction, so a failure at any step leaves nothing changed.
func (s *leaveService) ApproveLeaveRequest(id, approverUserID int64) (*LeaveApprovalResult, error) {
	leave, err := s.leaveRepo.GetLeaveRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to find leave request for approval: %w", err)
	}
	if leave.Status != models.LeaveStatusPending {
		return nil, fmt.Errorf("%w: current status is %q", ErrLeaveAlreadyProcessed, leave.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for leave approval: %w", err)
	}
	defer tx.Rollback()

	overlaps, err := s.leaveRepo.HasOverlappingApproved(tx, leave.StaffMemberID, leave.StartDate, leave.EndDate, leave.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check approved leave overlap: %w", err)
	}
	if overlaps {
		return nil, fmt.Errorf("%w: %s to %s", ErrLeaveOverlap, leave.StartDate, leave.EndDate)
	}

	if err := s.leaveRepo.UpdateLeaveStatus(tx, leave.ID, models.LeaveStatusApproved, &approverUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to approve leave request: %w", err)
	}

	deactivated, err := s.assignmentRepo.DeactivateForStaffDateRange(tx, leave.StaffMemberID, leave.StartDate, leave.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate assignments for approved leave: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit leave approval transaction: %w", err)
	}

	leave.Status = models.LeaveStatusApproved
	leave.ApprovedBy = &approverUserID
	return &LeaveApprovalResult{LeaveRequest: leave, DeactivatedAssignments: deactivated}, nil
}

// RejectLeaveRequest transitions a pending request to rejected. No cascade
// runs; the staff member keeps their assignments.
func (s *leaveService) RejectLeaveRequest(id, approverUserID int64) (*models.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetLeaveRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to find leave request for rejection: %w", err)
	}
	if leave.Status != models.LeaveStatusPending {
		return nil, fmt.Errorf("%w: current status is %q", ErrLeaveAlreadyProcessed, leave.Status)
	}

	if err := s.leaveRepo.UpdateLeaveStatus(s.db, leave.ID, models.LeaveStatusRejected, &approverUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to reject leave request: %w", err)
	}
	leave.Status = models.LeaveStatusRejected
	leave.ApprovedBy = &approverUserID
	return leave, nil
}

// CancelLeaveRequest withdraws a pending or approved request. Cancelling an
// approved leave does not reactivate previously deactivated assignments;
// those are rescheduled explicitly.
func (s *leaveService) CancelLeaveRequest(id int64) (*models.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetLeaveRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to find leave request for cancellation: %w", err)
	}
	if leave.Status != models.LeaveStatusPending && leave.Status != models.LeaveStatusApproved {
		return nil, fmt.Errorf("%w: current status is %q", ErrLeaveNotCancellable, leave.Status)
	}

	if err := s.leaveRepo.UpdateLeaveStatus(s.db, leave.ID, models.LeaveStatusCancelled, nil); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to cancel leave request: %w", err)
	}
	leave.Status = models.LeaveStatusCancelled
	return leave, nil
}

func (s *leaveService) DeleteLeaveRequest(id int64) error {
	err := s.leaveRepo.DeleteLeaveRequest(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrLeaveNotFound
		}
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	return nil
}
