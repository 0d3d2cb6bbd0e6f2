package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medishift_backend/internal/repositories"
)

func TestValidateStaffID(t *testing.T) {
	cases := []struct {
		name    string
		staffID string
		valid   bool
	}{
		{"Minimum Length", "EMP01", true},
		{"Mixed Case Alphanumeric", "nUrse2025", true},
		{"Digits Only", "123456", true},
		{"Too Short", "EMP1", false},
		{"Empty", "", false},
		{"Contains Dash", "EMP-01", false},
		{"Contains Space", "EMP 01", false},
		{"Unicode Letters", "сотрудник1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStaffID(tc.staffID)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrStaffValidation)
			}
		})
	}
}

func TestCreateStaffMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewStaffService(
		repositories.NewStaffRepository(db),
		repositories.NewAuthRepository(db),
		db,
	)

	t.Run("Provisions User And Profile In One Transaction", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staff_members sm`).
			WithArgs("EMP01234").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("abekova", sqlmock.AnyArg(), "abekova@clinic.example", "Aruzhan", "Bekova",
				true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
		mock.ExpectQuery(`INSERT INTO staff_members`).
			WithArgs(int64(20), "EMP01234", int64(1), int64(2), nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(7, testTime(t), testTime(t)))
		mock.ExpectCommit()

		staff, err := service.CreateStaffMember(CreateStaffRequest{
			Username:     "abekova",
			Email:        strPtr("abekova@clinic.example"),
			FirstName:    strPtr("Aruzhan"),
			LastName:     strPtr("Bekova"),
			StaffID:      "EMP01234",
			DepartmentID: int64Ptr(1),
			RoleID:       2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), staff.ID)
		require.NotNil(t, staff.User)
		assert.Equal(t, int64(20), staff.User.ID)
		assert.True(t, staff.User.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Optional Contact Fields Persisted", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staff_members sm`).
			WithArgs("EMP05678").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("dserikov", sqlmock.AnyArg(), nil, nil, nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
		mock.ExpectQuery(`INSERT INTO staff_members`).
			WithArgs(int64(21), "EMP05678", nil, int64(2), "+77010000000", "12 Abay Ave", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(8, testTime(t), testTime(t)))
		mock.ExpectCommit()

		staff, err := service.CreateStaffMember(CreateStaffRequest{
			Username:    "dserikov",
			StaffID:     "EMP05678",
			RoleID:      2,
			PhoneNumber: strPtr("+77010000000"),
			Address:     strPtr("12 Abay Ave"),
		})
		require.NoError(t, err)
		require.NotNil(t, staff.PhoneNumber)
		assert.Equal(t, "+77010000000", *staff.PhoneNumber)
		require.NotNil(t, staff.Address)
		assert.Equal(t, "12 Abay Ave", *staff.Address)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed Profile Insert Rolls Back User Account", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staff_members sm`).
			WithArgs("EMP01234").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("abekova", sqlmock.AnyArg(), nil, nil, nil, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
		mock.ExpectQuery(`INSERT INTO staff_members`).
			WithArgs(int64(20), "EMP01234", nil, int64(99), nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		_, err := service.CreateStaffMember(CreateStaffRequest{
			Username: "abekova",
			StaffID:  "EMP01234",
			RoleID:   99,
		})
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Badge Rejected By Pre-Check", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM staff_members sm`).
			WithArgs("EMP01234").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "staff_id", "department_id", "role_id",
				"phone_number", "address", "created_at", "updated_at",
				"username", "email", "first_name", "last_name", "is_active",
				"department_name", "role_name",
			}).AddRow(
				7, 20, "EMP01234", 1, 2,
				nil, nil, testTime(t), testTime(t),
				"abekova", "abekova@clinic.example", "Aruzhan", "Bekova", true,
				"Cardiology", "Nurse",
			))

		_, err := service.CreateStaffMember(CreateStaffRequest{
			Username: "someone",
			StaffID:  "EMP01234",
			RoleID:   2,
		})
		assert.ErrorIs(t, err, ErrStaffIDTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Bad Badge Format Rejected", func(t *testing.T) {
		_, err := service.CreateStaffMember(CreateStaffRequest{
			Username: "someone",
			StaffID:  "x1",
			RoleID:   2,
		})
		assert.ErrorIs(t, err, ErrStaffValidation)
	})
}
