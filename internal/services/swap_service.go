package services

import (
	"database/sql"
	"errors"
	"fmt"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

// --- Custom Service Errors for Shift Swap Requests ---
var (
	ErrSwapNotFound             = errors.New("shift swap request not found")
	ErrSwapValidation           = errors.New("shift swap request validation error")
	ErrSwapAlreadyProcessed     = errors.New("shift swap request has already been processed")
	ErrSwapSelfRequest          = errors.New("cannot request a swap with yourself")
	ErrSwapAssignmentInactive   = errors.New("requester assignment is no longer active")
	ErrSwapRecipientUnavailable = errors.New("recipient has no active assignment on the requested date")
)

// --- Swap DTOs ---
type CreateSwapRequest struct {
	RequesterAssignmentID int64   `json:"requester_assignment_id" binding:"required"`
	RecipientID           int64   `json:"recipient_id" binding:"required"`
	Reason                *string `json:"reason"`
}

// --- SwapService Interface ---
type SwapService interface {
	CreateSwapRequest(req CreateSwapRequest) (*models.ShiftSwapRequest, error)
	GetSwapRequestByID(id int64) (*models.ShiftSwapRequest, error)
	GetSwapRequests(filters models.SwapFilters) ([]models.ShiftSwapRequest, int, error)
	ApproveSwapRequest(id int64) (*models.ShiftSwapRequest, error)
	RejectSwapRequest(id int64) (*models.ShiftSwapRequest, error)
	DeleteSwapRequest(id int64) error
}

type swapService struct {
	swapRepo       repositories.SwapRepository
	assignmentRepo repositories.AssignmentRepository
	staffRepo      repositories.StaffRepository
	db             *sql.DB
}

// NewSwapService creates a new instance of SwapService.
func NewSwapService(
	sr repositories.SwapRepository,
	ar repositories.AssignmentRepository,
	str repositories.StaffRepository,
	db *sql.DB,
) SwapService {
	return &swapService{swapRepo: sr, assignmentRepo: ar, staffRepo: str, db: db}
}

// CreateSwapRequest opens a pending request to exchange the requester's
// assignment with whatever the recipient is working on the same date. The
// recipient's assignment is not pinned here; it is located at approval time.
func (s *swapService) CreateSwapRequest(req CreateSwapRequest) (*models.ShiftSwapRequest, error) {
	assignment, err := s.assignmentRepo.GetAssignmentByID(req.RequesterAssignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to load requester assignment: %w", err)
	}
	if !assignment.IsActive {
		return nil, ErrSwapAssignmentInactive
	}
	if assignment.StaffMemberID == req.RecipientID {
		return nil, ErrSwapSelfRequest
	}
	if _, err := s.staffRepo.GetStaffMemberByID(req.RecipientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to verify recipient: %w", err)
	}

	swap := &models.ShiftSwapRequest{
		RequesterAssignmentID: req.RequesterAssignmentID,
		RecipientID:           req.RecipientID,
		Status:                models.SwapStatusPending,
		Reason:                req.Reason,
	}
	created, err := s.swapRepo.CreateSwapRequest(s.db, swap)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to create swap request: %w", err)
	}
	return s.GetSwapRequestByID(created.ID)
}

func (s *swapService) GetSwapRequestByID(id int64) (*models.ShiftSwapRequest, error) {
	swap, err := s.swapRepo.GetSwapRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to get swap request by ID: %w", err)
	}
	return swap, nil
}

func (s *swapService) GetSwapRequests(filters models.SwapFilters) ([]models.ShiftSwapRequest, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	if filters.Status != nil && !models.IsValidSwapStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown swap status %q", ErrSwapValidation, *filters.Status)
	}
	swaps, totalCount, err := s.swapRepo.GetSwapRequests(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get swap requests: %w", err)
	}
	return swaps, totalCount, nil
}

// ApproveSwapRequest executes the exchange. Inside one transaction it
// re-validates that the requester assignment is still active, locates the
// recipient's active assignment on the same date, swaps the shift references
// of the two assignments and marks the request approved. Staff members and
// dates never move, only the shift_id fields trade places. Any failure rolls
// the whole exchange back.
func (s *swapService) ApproveSwapRequest(id int64) (*models.ShiftSwapRequest, error) {
	swap, err := s.swapRepo.GetSwapRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to find swap request for approval: %w", err)
	}
	if swap.Status != models.SwapStatusPending {
		return nil, fmt.Errorf("%w: current status is %q", ErrSwapAlreadyProcessed, swap.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for swap approval: %w", err)
	}
	defer tx.Rollback()

	requesterAssignment, err := s.assignmentRepo.GetActiveByStaffAndDate(
		tx, swap.RequesterAssignment.StaffMemberID, swap.RequesterAssignment.Date)
	if err != nil || requesterAssignment.ID != swap.RequesterAssignmentID {
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to re-validate requester assignment: %w", err)
		}
		return nil, ErrSwapAssignmentInactive
	}

	recipientAssignment, err := s.assignmentRepo.GetActiveByStaffAndDate(
		tx, swap.RecipientID, requesterAssignment.Date)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: staff member %d on %s", ErrSwapRecipientUnavailable,
				swap.RecipientID, requesterAssignment.Date)
		}
		return nil, fmt.Errorf("failed to locate recipient assignment: %w", err)
	}

	if err := s.assignmentRepo.UpdateAssignmentShift(tx, requesterAssignment.ID, recipientAssignment.ShiftID); err != nil {
		return nil, fmt.Errorf("failed to reassign requester shift: %w", err)
	}
	if err := s.assignmentRepo.UpdateAssignmentShift(tx, recipientAssignment.ID, requesterAssignment.ShiftID); err != nil {
		return nil, fmt.Errorf("failed to reassign recipient shift: %w", err)
	}
	if err := s.swapRepo.MarkApproved(tx, swap.ID, recipientAssignment.ID); err != nil {
		return nil, fmt.Errorf("failed to mark swap request approved: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swap approval transaction: %w", err)
	}
	return s.GetSwapRequestByID(swap.ID)
}

// RejectSwapRequest declines a pending request, leaving both assignments
// untouched.
func (s *swapService) RejectSwapRequest(id int64) (*models.ShiftSwapRequest, error) {
	swap, err := s.swapRepo.GetSwapRequestByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to find swap request for rejection: %w", err)
	}
	if swap.Status != models.SwapStatusPending {
		return nil, fmt.Errorf("%w: current status is %q", ErrSwapAlreadyProcessed, swap.Status)
	}

	if err := s.swapRepo.UpdateSwapStatus(s.db, swap.ID, models.SwapStatusRejected); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("failed to reject swap request: %w", err)
	}
	swap.Status = models.SwapStatusRejected
	return swap, nil
}

func (s *swapService) DeleteSwapRequest(id int64) error {
	err := s.swapRepo.DeleteSwapRequest(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSwapNotFound
		}
		return fmt.Errorf("failed to delete swap request: %w", err)
	}
	return nil
}
