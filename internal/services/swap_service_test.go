package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

func newSwapServiceForTest(t *testing.T, db *sql.DB) SwapService {
	t.Helper()
	return NewSwapService(
		repositories.NewSwapRepository(db),
		repositories.NewAssignmentRepository(db),
		repositories.NewStaffRepository(db),
		db,
	)
}

// expectSwapLookup queues the joined swap request select. The requester
// assignment is ID 10 (staff member 7, shift 3) on 2025-03-10, the recipient
// staff member 8.
func expectSwapLookup(t *testing.T, mock sqlmock.Sqlmock, swapID int64, status string) {
	t.Helper()
	mock.ExpectQuery(`SELECT (.+) FROM shift_swap_requests sw`).
		WithArgs(swapID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "requester_assignment_id", "recipient_assignment_id", "recipient_id",
			"status", "reason", "created_at", "updated_at",
			"staff_member_id", "shift_id", "date", "is_active",
			"recipient_staff_id",
		}).AddRow(
			swapID, 10, nil, 8,
			status, nil, testTime(t), testTime(t),
			7, 3, "2025-03-10", true,
			"EMP05678",
		))
}

// expectActiveAssignment queues the single-row active assignment lookup used
// inside the swap transaction.
func expectActiveAssignment(t *testing.T, mock sqlmock.Sqlmock, staffMemberID int64, date string, assignmentID, shiftID int64) {
	t.Helper()
	mock.ExpectQuery(`SELECT (.+) FROM shift_assignments`).
		WithArgs(staffMemberID, date).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "staff_member_id", "shift_id", "date", "is_active", "created_at", "updated_at",
		}).AddRow(assignmentID, staffMemberID, shiftID, date, true, testTime(t), testTime(t)))
}

func TestApproveSwapRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newSwapServiceForTest(t, db)

	t.Run("Success Exchanges Shift References", func(t *testing.T) {
		expectSwapLookup(t, mock, 9, models.SwapStatusPending)
		mock.ExpectBegin()
		expectActiveAssignment(t, mock, 7, "2025-03-10", 10, 3)
		expectActiveAssignment(t, mock, 8, "2025-03-10", 55, 4)
		mock.ExpectExec(`UPDATE shift_assignments SET shift_id`).
			WithArgs(int64(4), sqlmock.AnyArg(), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE shift_assignments SET shift_id`).
			WithArgs(int64(3), sqlmock.AnyArg(), int64(55)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE shift_swap_requests SET status`).
			WithArgs(models.SwapStatusApproved, int64(55), sqlmock.AnyArg(), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT (.+) FROM shift_swap_requests sw`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "requester_assignment_id", "recipient_assignment_id", "recipient_id",
				"status", "reason", "created_at", "updated_at",
				"staff_member_id", "shift_id", "date", "is_active",
				"recipient_staff_id",
			}).AddRow(
				9, 10, 55, 8,
				models.SwapStatusApproved, nil, testTime(t), testTime(t),
				7, 4, "2025-03-10", true,
				"EMP05678",
			))

		swap, err := service.ApproveSwapRequest(9)
		require.NoError(t, err)
		assert.Equal(t, models.SwapStatusApproved, swap.Status)
		require.NotNil(t, swap.RecipientAssignmentID)
		assert.Equal(t, int64(55), *swap.RecipientAssignmentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second Side Failure Rolls Back Both Updates", func(t *testing.T) {
		expectSwapLookup(t, mock, 9, models.SwapStatusPending)
		mock.ExpectBegin()
		expectActiveAssignment(t, mock, 7, "2025-03-10", 10, 3)
		expectActiveAssignment(t, mock, 8, "2025-03-10", 55, 4)
		mock.ExpectExec(`UPDATE shift_assignments SET shift_id`).
			WithArgs(int64(4), sqlmock.AnyArg(), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE shift_assignments SET shift_id`).
			WithArgs(int64(3), sqlmock.AnyArg(), int64(55)).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		_, err := service.ApproveSwapRequest(9)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Requester Assignment Deactivated Since Creation", func(t *testing.T) {
		expectSwapLookup(t, mock, 9, models.SwapStatusPending)
		mock.ExpectBegin()
		// Another assignment became the active one for that staff member and date.
		expectActiveAssignment(t, mock, 7, "2025-03-10", 11, 6)
		mock.ExpectRollback()

		_, err := service.ApproveSwapRequest(9)
		assert.ErrorIs(t, err, ErrSwapAssignmentInactive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Recipient Without Active Assignment Rejected", func(t *testing.T) {
		expectSwapLookup(t, mock, 9, models.SwapStatusPending)
		mock.ExpectBegin()
		expectActiveAssignment(t, mock, 7, "2025-03-10", 10, 3)
		mock.ExpectQuery(`SELECT (.+) FROM shift_assignments`).
			WithArgs(int64(8), "2025-03-10").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := service.ApproveSwapRequest(9)
		assert.ErrorIs(t, err, ErrSwapRecipientUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Rejected Cannot Be Approved", func(t *testing.T) {
		expectSwapLookup(t, mock, 9, models.SwapStatusRejected)

		_, err := service.ApproveSwapRequest(9)
		assert.ErrorIs(t, err, ErrSwapAlreadyProcessed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRejectSwapRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newSwapServiceForTest(t, db)

	t.Run("Pending Rejected Without Touching Assignments", func(t *testing.T) {
		expectSwapLookup(t, mock, 9, models.SwapStatusPending)
		mock.ExpectExec(`UPDATE shift_swap_requests SET status`).
			WithArgs(models.SwapStatusRejected, sqlmock.AnyArg(), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		swap, err := service.RejectSwapRequest(9)
		require.NoError(t, err)
		assert.Equal(t, models.SwapStatusRejected, swap.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Approved Cannot Be Rejected", func(t *testing.T) {
		expectSwapLookup(t, mock, 9, models.SwapStatusApproved)

		_, err := service.RejectSwapRequest(9)
		assert.ErrorIs(t, err, ErrSwapAlreadyProcessed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateSwapRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newSwapServiceForTest(t, db)

	t.Run("Swap With Yourself Rejected", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
			WithArgs(int64(10)).
			WillReturnRows(assignmentJoinedRow(t, 10, 7, 3, "2025-03-10"))

		_, err := service.CreateSwapRequest(CreateSwapRequest{
			RequesterAssignmentID: 10,
			RecipientID:           7,
		})
		assert.ErrorIs(t, err, ErrSwapSelfRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inactive Requester Assignment Rejected", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "staff_member_id", "shift_id", "date", "is_active", "created_at", "updated_at",
				"staff_id", "first_name", "last_name",
				"name", "start_time", "end_time", "is_night_shift",
			}).AddRow(
				10, 7, 3, "2025-03-10", false, testTime(t), testTime(t),
				"EMP01234", "Aruzhan", "Bekova",
				"Morning", "08:00:00", "16:00:00", false,
			))

		_, err := service.CreateSwapRequest(CreateSwapRequest{
			RequesterAssignmentID: 10,
			RecipientID:           8,
		})
		assert.ErrorIs(t, err, ErrSwapAssignmentInactive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
