package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medishift_backend/internal/repositories"
)

func newAssignmentServiceForTest(t *testing.T, db *sql.DB) AssignmentService {
	t.Helper()
	return NewAssignmentService(
		repositories.NewAssignmentRepository(db),
		repositories.NewStaffRepository(db),
		repositories.NewShiftRepository(db),
		db,
	)
}

func expectStaffLookup(t *testing.T, mock sqlmock.Sqlmock, staffMemberID int64) {
	t.Helper()
	mock.ExpectQuery(`SELECT (.+) FROM staff_members sm`).
		WithArgs(staffMemberID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "staff_id", "department_id", "role_id",
			"phone_number", "address", "created_at", "updated_at",
			"username", "email", "first_name", "last_name", "is_active",
			"department_name", "role_name",
		}).AddRow(
			staffMemberID, 20, "EMP01234", 1, 2,
			nil, nil, testTime(t), testTime(t),
			"abekova", "abekova@clinic.example", "Aruzhan", "Bekova", true,
			"Cardiology", "Nurse",
		))
}

func expectShiftLookup(t *testing.T, mock sqlmock.Sqlmock, shiftID int64) {
	t.Helper()
	mock.ExpectQuery(`SELECT (.+) FROM shifts WHERE id`).
		WithArgs(shiftID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "start_time", "end_time", "break_duration",
			"is_night_shift", "created_at", "updated_at",
		}).AddRow(shiftID, "Morning", "08:00:00", "16:00:00", 30, false, testTime(t), testTime(t)))
}

// assignmentJoinedRow builds a row for the assignment select with its staff
// and shift joins.
func assignmentJoinedRow(t *testing.T, id, staffMemberID, shiftID int64, date string) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{
		"id", "staff_member_id", "shift_id", "date", "is_active", "created_at", "updated_at",
		"staff_id", "first_name", "last_name",
		"name", "start_time", "end_time", "is_night_shift",
	}).AddRow(
		id, staffMemberID, shiftID, date, true, testTime(t), testTime(t),
		"EMP01234", "Aruzhan", "Bekova",
		"Morning", "08:00:00", "16:00:00", false,
	)
}

func TestCreateAssignment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAssignmentServiceForTest(t, db)

	t.Run("Success", func(t *testing.T) {
		expectStaffLookup(t, mock, 7)
		expectShiftLookup(t, mock, 3)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT(.+) FROM shift_assignments`).
			WithArgs(int64(7), "2025-03-10", int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO shift_assignments`).
			WithArgs(int64(7), int64(3), "2025-03-10", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date", "created_at", "updated_at"}).
				AddRow(42, "2025-03-10", testTime(t), testTime(t)))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
			WithArgs(int64(42)).
			WillReturnRows(assignmentJoinedRow(t, 42, 7, 3, "2025-03-10"))

		assignment, err := service.CreateAssignment(CreateAssignmentRequest{
			StaffMemberID: 7,
			ShiftID:       3,
			Date:          "2025-03-10",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(42), assignment.ID)
		assert.True(t, assignment.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second Active Assignment Same Date Rejected", func(t *testing.T) {
		expectStaffLookup(t, mock, 7)
		expectShiftLookup(t, mock, 3)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT(.+) FROM shift_assignments`).
			WithArgs(int64(7), "2025-03-10", int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		_, err := service.CreateAssignment(CreateAssignmentRequest{
			StaffMemberID: 7,
			ShiftID:       3,
			Date:          "2025-03-10",
		})
		assert.ErrorIs(t, err, ErrAssignmentConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inactive Assignment Skips Conflict Check", func(t *testing.T) {
		inactive := false
		expectStaffLookup(t, mock, 7)
		expectShiftLookup(t, mock, 3)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO shift_assignments`).
			WithArgs(int64(7), int64(3), "2025-03-10", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date", "created_at", "updated_at"}).
				AddRow(43, "2025-03-10", testTime(t), testTime(t)))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
			WithArgs(int64(43)).
			WillReturnRows(assignmentJoinedRow(t, 43, 7, 3, "2025-03-10"))

		_, err := service.CreateAssignment(CreateAssignmentRequest{
			StaffMemberID: 7,
			ShiftID:       3,
			Date:          "2025-03-10",
			IsActive:      &inactive,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Malformed Date Rejected Before Any Query", func(t *testing.T) {
		_, err := service.CreateAssignment(CreateAssignmentRequest{
			StaffMemberID: 7,
			ShiftID:       3,
			Date:          "10.03.2025",
		})
		assert.ErrorIs(t, err, ErrAssignmentValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateAssignmentConflictCheckExcludesSelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAssignmentServiceForTest(t, db)

	mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
		WithArgs(int64(42)).
		WillReturnRows(assignmentJoinedRow(t, 42, 7, 3, "2025-03-10"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT(.+) FROM shift_assignments`).
		WithArgs(int64(7), "2025-03-10", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`UPDATE shift_assignments SET`).
		WithArgs(int64(7), int64(3), "2025-03-10", true, sqlmock.AnyArg(), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"date", "updated_at"}).
			AddRow("2025-03-10", testTime(t)))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
		WithArgs(int64(42)).
		WillReturnRows(assignmentJoinedRow(t, 42, 7, 3, "2025-03-10"))

	active := true
	_, err = service.UpdateAssignment(42, UpdateAssignmentRequest{IsActive: &active})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAssignmentServiceForTest(t, db)

	t.Run("Groups Assignments By Date With Empty Days", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "staff_member_id", "shift_id", "date", "is_active", "created_at", "updated_at",
			"staff_id", "first_name", "last_name",
			"name", "start_time", "end_time", "is_night_shift",
		}).
			AddRow(1, 7, 3, "2025-03-10", true, testTime(t), testTime(t),
				"EMP01234", "Aruzhan", "Bekova", "Morning", "08:00:00", "16:00:00", false).
			AddRow(2, 8, 4, "2025-03-10", true, testTime(t), testTime(t),
				"EMP05678", "Daniyar", "Serikov", "Evening", "16:00:00", "00:00:00", true).
			AddRow(3, 7, 3, "2025-03-12", true, testTime(t), testTime(t),
				"EMP01234", "Aruzhan", "Bekova", "Morning", "08:00:00", "16:00:00", false)

		mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
			WithArgs("2025-03-10", "2025-03-12").
			WillReturnRows(rows)

		schedule, err := service.GetSchedule("2025-03-10", 3)
		require.NoError(t, err)
		require.Len(t, schedule, 3)

		assert.Equal(t, "2025-03-10", schedule[0].Date)
		assert.Len(t, schedule[0].Assignments, 2)

		assert.Equal(t, "2025-03-11", schedule[1].Date)
		assert.NotNil(t, schedule[1].Assignments)
		assert.Empty(t, schedule[1].Assignments)

		assert.Equal(t, "2025-03-12", schedule[2].Date)
		assert.Len(t, schedule[2].Assignments, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Defaults To Seven Days", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
			WithArgs("2025-03-10", "2025-03-16").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "staff_member_id", "shift_id", "date", "is_active", "created_at", "updated_at",
				"staff_id", "first_name", "last_name",
				"name", "start_time", "end_time", "is_night_shift",
			}))

		schedule, err := service.GetSchedule("2025-03-10", 0)
		require.NoError(t, err)
		assert.Len(t, schedule, 7)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Window Over 31 Days Rejected", func(t *testing.T) {
		_, err := service.GetSchedule("2025-03-10", 32)
		assert.ErrorIs(t, err, ErrAssignmentValidation)
	})

	t.Run("Malformed Start Date Rejected", func(t *testing.T) {
		_, err := service.GetSchedule("March 10", 7)
		assert.ErrorIs(t, err, ErrAssignmentValidation)
	})
}

func TestDeleteAssignment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAssignmentServiceForTest(t, db)

	t.Run("Missing Assignment", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM shift_assignments`).
			WithArgs(int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.DeleteAssignment(404)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
