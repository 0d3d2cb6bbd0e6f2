package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medishift_backend/internal/repositories"
)

func TestComputeShiftDuration(t *testing.T) {
	t.Run("Day Shift", func(t *testing.T) {
		duration, err := ComputeShiftDuration("08:00:00", "16:00:00", false)
		require.NoError(t, err)
		assert.Equal(t, 480, duration)
	})

	t.Run("Short Format Accepted", func(t *testing.T) {
		duration, err := ComputeShiftDuration("08:00", "12:30", false)
		require.NoError(t, err)
		assert.Equal(t, 270, duration)
	})

	t.Run("Night Shift Spanning Midnight", func(t *testing.T) {
		duration, err := ComputeShiftDuration("22:00:00", "06:00:00", true)
		require.NoError(t, err)
		assert.Equal(t, 480, duration)
	})

	t.Run("Night Shift Not Spanning Midnight", func(t *testing.T) {
		// Flag set but end still after start on the clock; plain subtraction.
		duration, err := ComputeShiftDuration("18:00:00", "23:00:00", true)
		require.NoError(t, err)
		assert.Equal(t, 300, duration)
	})

	t.Run("Day Shift With Inverted Times Rejected", func(t *testing.T) {
		_, err := ComputeShiftDuration("16:00:00", "08:00:00", false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrShiftValidation)
	})

	t.Run("Zero Length Day Shift Rejected", func(t *testing.T) {
		_, err := ComputeShiftDuration("08:00:00", "08:00:00", false)
		assert.ErrorIs(t, err, ErrShiftValidation)
	})

	t.Run("Zero Length Night Shift Rejected", func(t *testing.T) {
		// The night flag exempts wrapping, not a shift that never spans time.
		_, err := ComputeShiftDuration("22:00:00", "22:00:00", true)
		assert.ErrorIs(t, err, ErrShiftValidation)
	})

	t.Run("Seconds Ignored", func(t *testing.T) {
		duration, err := ComputeShiftDuration("08:00:30", "16:00:45", false)
		require.NoError(t, err)
		assert.Equal(t, 480, duration)
	})

	t.Run("Invalid Time Format", func(t *testing.T) {
		_, err := ComputeShiftDuration("8 o'clock", "16:00:00", false)
		assert.ErrorIs(t, err, ErrTimeFormat)
	})
}

func TestValidateShiftTimes(t *testing.T) {
	t.Run("Break Below Duration", func(t *testing.T) {
		err := ValidateShiftTimes("08:00:00", "16:00:00", 60, false)
		assert.NoError(t, err)
	})

	t.Run("Break Equal To Duration Rejected", func(t *testing.T) {
		err := ValidateShiftTimes("08:00:00", "16:00:00", 480, false)
		assert.ErrorIs(t, err, ErrShiftValidation)
	})

	t.Run("Break Above Duration Rejected", func(t *testing.T) {
		err := ValidateShiftTimes("08:00:00", "12:00:00", 300, false)
		assert.ErrorIs(t, err, ErrShiftValidation)
	})

	t.Run("Negative Break Rejected", func(t *testing.T) {
		err := ValidateShiftTimes("08:00:00", "16:00:00", -1, false)
		assert.ErrorIs(t, err, ErrShiftValidation)
	})

	t.Run("Night Shift Break Measured Against Wrapped Duration", func(t *testing.T) {
		// 22:00-06:00 wraps to 480 minutes.
		err := ValidateShiftTimes("22:00:00", "06:00:00", 470, true)
		assert.NoError(t, err)

		err = ValidateShiftTimes("22:00:00", "06:00:00", 480, true)
		assert.ErrorIs(t, err, ErrShiftValidation)
	})
}

func TestCreateShift(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewShiftService(repositories.NewShiftRepository(db), db)

	t.Run("Success With Default Break", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO shifts`).
			WithArgs("Morning", "08:00:00", "16:00:00", 30, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "created_at", "updated_at"}).
				AddRow(1, "08:00:00", "16:00:00", testTime(t), testTime(t)))

		shift, err := service.CreateShift(CreateShiftRequest{
			Name:      "Morning",
			StartTime: "08:00:00",
			EndTime:   "16:00:00",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), shift.ID)
		assert.Equal(t, 30, shift.BreakDuration)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Times Never Reach The Database", func(t *testing.T) {
		_, err := service.CreateShift(CreateShiftRequest{
			Name:      "Backwards",
			StartTime: "16:00:00",
			EndTime:   "08:00:00",
		})
		assert.ErrorIs(t, err, ErrShiftValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Name Rejected", func(t *testing.T) {
		_, err := service.CreateShift(CreateShiftRequest{
			Name:      "   ",
			StartTime: "08:00:00",
			EndTime:   "16:00:00",
		})
		assert.ErrorIs(t, err, ErrShiftValidation)
	})
}
