package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

func TestDeriveCheckInStatus(t *testing.T) {
	const date = "2025-03-10"
	const shiftStart = "08:00:00"

	tests := []struct {
		name    string
		checkIn string
		want    string
	}{
		{"Before Shift Start", "2025-03-10T07:50:00Z", models.AttendanceStatusPresent},
		{"Exactly On Time", "2025-03-10T08:00:00Z", models.AttendanceStatusPresent},
		{"Within Grace Period", "2025-03-10T08:09:59Z", models.AttendanceStatusPresent},
		{"Exactly At Grace Boundary", "2025-03-10T08:10:00Z", models.AttendanceStatusPresent},
		{"One Second Past Grace", "2025-03-10T08:10:01Z", models.AttendanceStatusLate},
		{"One Minute Past Grace", "2025-03-10T08:11:00Z", models.AttendanceStatusLate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, err := DeriveCheckInStatus(mustParseTime(t, tc.checkIn), date, shiftStart)
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}

	t.Run("Night Shift Check-In", func(t *testing.T) {
		status, err := DeriveCheckInStatus(mustParseTime(t, "2025-03-10T22:05:00Z"), date, "22:00:00")
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusPresent, status)
	})

	t.Run("Invalid Shift Start", func(t *testing.T) {
		_, err := DeriveCheckInStatus(mustParseTime(t, "2025-03-10T08:00:00Z"), date, "not-a-time")
		assert.ErrorIs(t, err, ErrAttendanceValidation)
	})
}

// expectAssignmentLookup queues the joined assignment select used by the
// attendance workflows.
func expectAssignmentLookup(t *testing.T, mock sqlmock.Sqlmock, assignmentID int64, isActive bool) {
	t.Helper()
	mock.ExpectQuery(`SELECT (.+) FROM shift_assignments a`).
		WithArgs(assignmentID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "staff_member_id", "shift_id", "date", "is_active", "created_at", "updated_at",
			"staff_id", "first_name", "last_name",
			"name", "start_time", "end_time", "is_night_shift",
		}).AddRow(
			assignmentID, 7, 3, "2025-03-10", isActive, testTime(t), testTime(t),
			"EMP01234", "Aruzhan", "Bekova",
			"Morning", "08:00:00", "16:00:00", false,
		))
}

func newAttendanceServiceForTest(t *testing.T, db *sql.DB, now time.Time) AttendanceService {
	t.Helper()
	svc := NewAttendanceService(
		repositories.NewAttendanceRepository(db),
		repositories.NewAssignmentRepository(db),
		db,
	)
	svc.(*attendanceService).now = func() time.Time { return now }
	return svc
}

func TestCheckIn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("First Check-In Creates Record", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T08:05:00Z"))

		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10", models.AttendanceStatusPresent,
				sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date", "created_at", "updated_at"}).
				AddRow(100, "2025-03-10", testTime(t), testTime(t)))
		mock.ExpectCommit()

		att, err := service.CheckIn(42, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(100), att.ID)
		assert.Equal(t, models.AttendanceStatusPresent, att.Status)
		require.NotNil(t, att.CheckInTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Late Check-In Derives Late Status", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T08:10:01Z"))

		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10", models.AttendanceStatusLate,
				sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date", "created_at", "updated_at"}).
				AddRow(101, "2025-03-10", testTime(t), testTime(t)))
		mock.ExpectCommit()

		att, err := service.CheckIn(42, nil)
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusLate, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Double Check-In Rejected", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T08:20:00Z"))
		earlier := mustParseTime(t, "2025-03-10T08:01:00Z")

		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "staff_member_id", "shift_assignment_id", "date", "status",
				"check_in_time", "check_out_time", "notes", "created_at", "updated_at",
			}).AddRow(100, 7, 42, "2025-03-10", models.AttendanceStatusPresent,
				earlier, nil, nil, testTime(t), testTime(t)))
		mock.ExpectRollback()

		_, err := service.CheckIn(42, nil)
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inactive Assignment Rejected", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T08:00:00Z"))

		expectAssignmentLookup(t, mock, 42, false)

		_, err := service.CheckIn(42, nil)
		assert.ErrorIs(t, err, ErrAttendanceValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Leave Status Sticks On Check-In", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T08:00:00Z"))

		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "staff_member_id", "shift_assignment_id", "date", "status",
				"check_in_time", "check_out_time", "notes", "created_at", "updated_at",
			}).AddRow(100, 7, 42, "2025-03-10", models.AttendanceStatusLeave,
				nil, nil, nil, testTime(t), testTime(t)))
		mock.ExpectQuery(`UPDATE attendance`).
			WithArgs(models.AttendanceStatusLeave, sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testTime(t)))
		mock.ExpectCommit()

		att, err := service.CheckIn(42, nil)
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusLeave, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCheckOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("Success", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T16:02:00Z"))
		checkIn := mustParseTime(t, "2025-03-10T08:01:00Z")

		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "staff_member_id", "shift_assignment_id", "date", "status",
				"check_in_time", "check_out_time", "notes", "created_at", "updated_at",
			}).AddRow(100, 7, 42, "2025-03-10", models.AttendanceStatusPresent,
				checkIn, nil, nil, testTime(t), testTime(t)))
		mock.ExpectQuery(`UPDATE attendance`).
			WithArgs(models.AttendanceStatusPresent, sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg(), int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testTime(t)))
		mock.ExpectCommit()

		att, err := service.CheckOut(42)
		require.NoError(t, err)
		require.NotNil(t, att.CheckOutTime)
		// Status is never re-derived at check-out.
		assert.Equal(t, models.AttendanceStatusPresent, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Check-Out Without Check-In Rejected", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T16:00:00Z"))

		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := service.CheckOut(42)
		assert.ErrorIs(t, err, ErrNotCheckedIn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Double Check-Out Rejected", func(t *testing.T) {
		service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T17:00:00Z"))
		checkIn := mustParseTime(t, "2025-03-10T08:01:00Z")
		checkOut := mustParseTime(t, "2025-03-10T16:02:00Z")

		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM attendance`).
			WithArgs(int64(7), int64(42), "2025-03-10").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "staff_member_id", "shift_assignment_id", "date", "status",
				"check_in_time", "check_out_time", "notes", "created_at", "updated_at",
			}).AddRow(100, 7, 42, "2025-03-10", models.AttendanceStatusPresent,
				checkIn, checkOut, nil, testTime(t), testTime(t)))
		mock.ExpectRollback()

		_, err := service.CheckOut(42)
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// expectAttendanceByID queues the joined attendance select used by direct
// reads and updates.
func expectAttendanceByID(t *testing.T, mock sqlmock.Sqlmock, id int64, status string, checkIn, checkOut interface{}) {
	t.Helper()
	mock.ExpectQuery(`SELECT (.+) FROM attendance at`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "staff_member_id", "shift_assignment_id", "date", "status",
			"check_in_time", "check_out_time", "notes", "created_at", "updated_at",
			"staff_id", "first_name", "last_name",
		}).AddRow(
			id, 7, 42, "2025-03-10", status,
			checkIn, checkOut, nil, testTime(t), testTime(t),
			"EMP01234", "Aruzhan", "Bekova",
		))
}

func TestUpdateAttendance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T12:00:00Z"))

	t.Run("Late Check-In Lands As Late", func(t *testing.T) {
		expectAttendanceByID(t, mock, 100, models.AttendanceStatusAbsent, nil, nil)
		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectQuery(`UPDATE attendance`).
			WithArgs(models.AttendanceStatusLate, sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testTime(t)))

		lateCheckIn := mustParseTime(t, "2025-03-10T10:00:00Z")
		att, err := service.UpdateAttendance(100, UpdateAttendanceRequest{CheckInTime: &lateCheckIn})
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusLate, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Supplied Status Overridden By Derivation", func(t *testing.T) {
		expectAttendanceByID(t, mock, 100, models.AttendanceStatusAbsent, nil, nil)
		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectQuery(`UPDATE attendance`).
			WithArgs(models.AttendanceStatusLate, sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testTime(t)))

		lateCheckIn := mustParseTime(t, "2025-03-10T10:00:00Z")
		present := models.AttendanceStatusPresent
		att, err := service.UpdateAttendance(100, UpdateAttendanceRequest{
			Status:      &present,
			CheckInTime: &lateCheckIn,
		})
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusLate, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Timely Check-In Lands As Present", func(t *testing.T) {
		expectAttendanceByID(t, mock, 100, models.AttendanceStatusAbsent, nil, nil)
		expectAssignmentLookup(t, mock, 42, true)
		mock.ExpectQuery(`UPDATE attendance`).
			WithArgs(models.AttendanceStatusPresent, sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testTime(t)))

		checkIn := mustParseTime(t, "2025-03-10T08:05:00Z")
		att, err := service.UpdateAttendance(100, UpdateAttendanceRequest{CheckInTime: &checkIn})
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusPresent, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Leave Status Sticks On Update", func(t *testing.T) {
		expectAttendanceByID(t, mock, 100, models.AttendanceStatusLeave, nil, nil)
		// No assignment lookup: leave is never re-derived.
		mock.ExpectQuery(`UPDATE attendance`).
			WithArgs(models.AttendanceStatusLeave, sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testTime(t)))

		checkIn := mustParseTime(t, "2025-03-10T08:05:00Z")
		att, err := service.UpdateAttendance(100, UpdateAttendanceRequest{CheckInTime: &checkIn})
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusLeave, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Untimed Status Change Applies Directly", func(t *testing.T) {
		expectAttendanceByID(t, mock, 100, models.AttendanceStatusPresent, nil, nil)
		mock.ExpectQuery(`UPDATE attendance`).
			WithArgs(models.AttendanceStatusAbsent, nil, nil, nil, sqlmock.AnyArg(), int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testTime(t)))

		absent := models.AttendanceStatusAbsent
		att, err := service.UpdateAttendance(100, UpdateAttendanceRequest{Status: &absent})
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceStatusAbsent, att.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateAttendanceValidation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAttendanceServiceForTest(t, db, mustParseTime(t, "2025-03-10T08:00:00Z"))

	t.Run("Date Must Match Assignment Date", func(t *testing.T) {
		expectAssignmentLookup(t, mock, 42, true)

		_, err := service.CreateAttendance(CreateAttendanceRequest{
			StaffMemberID:     7,
			ShiftAssignmentID: 42,
			Date:              "2025-03-11",
		})
		assert.ErrorIs(t, err, ErrAttendanceValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Staff Member Rejected", func(t *testing.T) {
		expectAssignmentLookup(t, mock, 42, true)

		_, err := service.CreateAttendance(CreateAttendanceRequest{
			StaffMemberID:     99,
			ShiftAssignmentID: 42,
			Date:              "2025-03-10",
		})
		assert.ErrorIs(t, err, ErrAttendanceValidation)
	})

	t.Run("Check-Out Before Check-In Rejected", func(t *testing.T) {
		expectAssignmentLookup(t, mock, 42, true)
		checkIn := mustParseTime(t, "2025-03-10T16:00:00Z")
		checkOut := mustParseTime(t, "2025-03-10T08:00:00Z")

		_, err := service.CreateAttendance(CreateAttendanceRequest{
			StaffMemberID:     7,
			ShiftAssignmentID: 42,
			Date:              "2025-03-10",
			CheckInTime:       &checkIn,
			CheckOutTime:      &checkOut,
		})
		assert.ErrorIs(t, err, ErrAttendanceValidation)
	})
}
