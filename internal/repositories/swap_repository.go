package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medishift_backend/internal/models"
)

// SwapRepository defines the interface for shift swap request database operations.
type SwapRepository interface {
	CreateSwapRequest(executor SQLExecutor, swap *models.ShiftSwapRequest) (*models.ShiftSwapRequest, error)
	GetSwapRequestByID(id int64) (*models.ShiftSwapRequest, error)
	GetSwapRequests(filters models.SwapFilters) ([]models.ShiftSwapRequest, int, error)
	MarkApproved(executor SQLExecutor, id, recipientAssignmentID int64) error
	UpdateSwapStatus(executor SQLExecutor, id int64, status string) error
	DeleteSwapRequest(executor SQLExecutor, id int64) error
}

type swapRepository struct {
	db *sql.DB
}

// NewSwapRepository creates a new instance of SwapRepository.
func NewSwapRepository(db *sql.DB) SwapRepository {
	return &swapRepository{db: db}
}

const swapSelectColumns = `
	    sw.id, sw.requester_assignment_id, sw.recipient_assignment_id, sw.recipient_id,
	    sw.status, sw.reason, sw.created_at, sw.updated_at,
	    ra.staff_member_id, ra.shift_id, ra.date::text, ra.is_active,
	    rsm.staff_id as recipient_staff_id`

const swapSelectJoins = `
	  FROM shift_swap_requests sw
	  JOIN shift_assignments ra ON sw.requester_assignment_id = ra.id
	  JOIN staff_members rsm ON sw.recipient_id = rsm.id`

func scanSwapRow(row scanner, extra ...interface{}) (*models.ShiftSwapRequest, error) {
	var swap models.ShiftSwapRequest
	var requester models.ShiftAssignment
	var recipient models.StaffMember

	dest := []interface{}{
		&swap.ID, &swap.RequesterAssignmentID, &swap.RecipientAssignmentID, &swap.RecipientID,
		&swap.Status, &swap.Reason, &swap.CreatedAt, &swap.UpdatedAt,
		&requester.StaffMemberID, &requester.ShiftID, &requester.Date, &requester.IsActive,
		&recipient.StaffID,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning swap request: %v", ErrDatabaseError, err)
	}

	requester.ID = swap.RequesterAssignmentID
	recipient.ID = swap.RecipientID
	swap.RequesterAssignment = &requester
	swap.Recipient = &recipient
	return &swap, nil
}

func (r *swapRepository) CreateSwapRequest(executor SQLExecutor, swap *models.ShiftSwapRequest) (*models.ShiftSwapRequest, error) {
	query := `INSERT INTO shift_swap_requests (requester_assignment_id, recipient_id, status, reason, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		swap.RequesterAssignmentID, swap.RecipientID, swap.Status, swap.Reason,
		currentTime, currentTime,
	).Scan(&swap.ID, &swap.CreatedAt, &swap.UpdatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: referenced assignment or staff member does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: creating swap request: %v", ErrDatabaseError, err)
	}
	return swap, nil
}

func (r *swapRepository) GetSwapRequestByID(id int64) (*models.ShiftSwapRequest, error) {
	query := `SELECT` + swapSelectColumns + swapSelectJoins + ` WHERE sw.id = $1`
	return scanSwapRow(r.db.QueryRow(query, id))
}

func (r *swapRepository) GetSwapRequests(filters models.SwapFilters) ([]models.ShiftSwapRequest, int, error) {
	swaps := []models.ShiftSwapRequest{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + swapSelectColumns + `,
	    COUNT(*) OVER() as total_count` + swapSelectJoins + `
	  JOIN staff_members qsm ON ra.staff_member_id = qsm.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StaffID != nil {
		// Matches either side of the request.
		conditions = append(conditions, fmt.Sprintf("(qsm.staff_id = $%d OR rsm.staff_id = $%d)", argCount, argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("sw.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("ra.date >= $%d", argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("ra.date <= $%d", argCount))
		args = append(args, *filters.EndDate)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY sw.created_at DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying swap requests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		swap, err := scanSwapRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		swaps = append(swaps, *swap)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating swap request rows: %v", ErrDatabaseError, err)
	}
	return swaps, totalCount, nil
}

// MarkApproved records the located recipient assignment and flips the request
// to approved. Runs inside the swap transaction together with the two
// assignment updates.
func (r *swapRepository) MarkApproved(executor SQLExecutor, id, recipientAssignmentID int64) error {
	result, err := executor.Exec(
		`UPDATE shift_swap_requests SET status = $1, recipient_assignment_id = $2, updated_at = $3 WHERE id = $4`,
		models.SwapStatusApproved, recipientAssignmentID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: approving swap request ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *swapRepository) UpdateSwapStatus(executor SQLExecutor, id int64, status string) error {
	result, err := executor.Exec(
		`UPDATE shift_swap_requests SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating swap request %d status to %s: %v", ErrDatabaseError, id, status, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *swapRepository) DeleteSwapRequest(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM shift_swap_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting swap request ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
