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

func newLeaveServiceForTest(t *testing.T, db *sql.DB) LeaveService {
	t.Helper()
	return NewLeaveService(
		repositories.NewLeaveRepository(db),
		repositories.NewAssignmentRepository(db),
		repositories.NewStaffRepository(db),
		db,
	)
}

// expectLeaveLookup queues the joined leave request select.
func expectLeaveLookup(t *testing.T, mock sqlmock.Sqlmock, leaveID int64, status string) {
	t.Helper()
	mock.ExpectQuery(`SELECT (.+) FROM leave_requests lr`).
		WithArgs(leaveID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "staff_member_id", "leave_type", "start_date", "end_date",
			"reason", "status", "approved_by", "created_at", "updated_at",
			"staff_id", "first_name", "last_name",
		}).AddRow(
			leaveID, 7, models.LeaveTypeVacation, "2025-03-10", "2025-03-14",
			nil, status, nil, testTime(t), testTime(t),
			"EMP01234", "Aruzhan", "Bekova",
		))
}

func TestCreateLeaveRequestValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newLeaveServiceForTest(t, db)

	t.Run("End Before Start Rejected", func(t *testing.T) {
		_, err := service.CreateLeaveRequest(CreateLeaveRequest{
			StaffMemberID: 7,
			LeaveType:     models.LeaveTypeVacation,
			StartDate:     "2025-03-14",
			EndDate:       "2025-03-10",
		})
		assert.ErrorIs(t, err, ErrLeaveValidation)
	})

	t.Run("Unknown Leave Type Rejected", func(t *testing.T) {
		_, err := service.CreateLeaveRequest(CreateLeaveRequest{
			StaffMemberID: 7,
			LeaveType:     "sabbatical",
			StartDate:     "2025-03-10",
			EndDate:       "2025-03-14",
		})
		assert.ErrorIs(t, err, ErrLeaveValidation)
	})

	t.Run("Single Day Leave Accepted By Validation", func(t *testing.T) {
		err := validateLeavePeriod(models.LeaveTypeSick, "2025-03-10", "2025-03-10")
		assert.NoError(t, err)
	})
}

func TestApproveLeaveRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newLeaveServiceForTest(t, db)

	t.Run("Success Cascades Assignment Deactivation", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusPending)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT(.+) FROM leave_requests`).
			WithArgs(int64(7), "2025-03-14", "2025-03-10", int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`UPDATE leave_requests SET status`).
			WithArgs(models.LeaveStatusApproved, int64(99), sqlmock.AnyArg(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE shift_assignments SET is_active`).
			WithArgs(sqlmock.AnyArg(), int64(7), "2025-03-10", "2025-03-14").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		result, err := service.ApproveLeaveRequest(5, 99)
		require.NoError(t, err)
		assert.Equal(t, models.LeaveStatusApproved, result.LeaveRequest.Status)
		require.NotNil(t, result.LeaveRequest.ApprovedBy)
		assert.Equal(t, int64(99), *result.LeaveRequest.ApprovedBy)
		assert.Equal(t, int64(3), result.DeactivatedAssignments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Overlapping Approved Leave Rolls Back", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusPending)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT(.+) FROM leave_requests`).
			WithArgs(int64(7), "2025-03-14", "2025-03-10", int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		_, err := service.ApproveLeaveRequest(5, 99)
		assert.ErrorIs(t, err, ErrLeaveOverlap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Approved Rejected Without Transaction", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusApproved)

		_, err := service.ApproveLeaveRequest(5, 99)
		assert.ErrorIs(t, err, ErrLeaveAlreadyProcessed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cascade Failure Rolls Back Status Write", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusPending)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT(.+) FROM leave_requests`).
			WithArgs(int64(7), "2025-03-14", "2025-03-10", int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`UPDATE leave_requests SET status`).
			WithArgs(models.LeaveStatusApproved, int64(99), sqlmock.AnyArg(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE shift_assignments SET is_active`).
			WithArgs(sqlmock.AnyArg(), int64(7), "2025-03-10", "2025-03-14").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		_, err := service.ApproveLeaveRequest(5, 99)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrLeaveOverlap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRejectLeaveRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newLeaveServiceForTest(t, db)

	t.Run("Pending Rejected", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusPending)
		mock.ExpectExec(`UPDATE leave_requests SET status`).
			WithArgs(models.LeaveStatusRejected, int64(99), sqlmock.AnyArg(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		leave, err := service.RejectLeaveRequest(5, 99)
		require.NoError(t, err)
		assert.Equal(t, models.LeaveStatusRejected, leave.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cancelled Cannot Be Rejected", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusCancelled)

		_, err := service.RejectLeaveRequest(5, 99)
		assert.ErrorIs(t, err, ErrLeaveAlreadyProcessed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelLeaveRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newLeaveServiceForTest(t, db)

	t.Run("Approved Leave Can Be Cancelled", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusApproved)
		mock.ExpectExec(`UPDATE leave_requests SET status`).
			WithArgs(models.LeaveStatusCancelled, sqlmock.AnyArg(), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		leave, err := service.CancelLeaveRequest(5)
		require.NoError(t, err)
		assert.Equal(t, models.LeaveStatusCancelled, leave.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejected Leave Cannot Be Cancelled", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusRejected)

		_, err := service.CancelLeaveRequest(5)
		assert.ErrorIs(t, err, ErrLeaveNotCancellable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateLeaveRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newLeaveServiceForTest(t, db)

	t.Run("Processed Request Is Immutable", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusApproved)

		_, err := service.UpdateLeaveRequest(5, UpdateLeaveRequest{Reason: strPtr("changed my mind")})
		assert.ErrorIs(t, err, ErrLeaveAlreadyProcessed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pending Request Updates", func(t *testing.T) {
		expectLeaveLookup(t, mock, 5, models.LeaveStatusPending)
		mock.ExpectQuery(`UPDATE leave_requests`).
			WithArgs(models.LeaveTypeSick, "2025-03-10", "2025-03-14", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"start_date", "end_date", "updated_at"}).
				AddRow("2025-03-10", "2025-03-14", testTime(t)))

		leave, err := service.UpdateLeaveRequest(5, UpdateLeaveRequest{LeaveType: strPtr(models.LeaveTypeSick)})
		require.NoError(t, err)
		assert.Equal(t, models.LeaveTypeSick, leave.LeaveType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
