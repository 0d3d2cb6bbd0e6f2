package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
)

// --- Custom Service Errors for Staff ---
var (
	ErrStaffNotFound     = errors.New("staff member not found")
	ErrStaffValidation   = errors.New("staff member data validation error")
	ErrStaffIDTaken      = errors.New("staff ID already exists")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrStaffRoleInvalid  = errors.New("referenced role does not exist")
	ErrStaffDeptInvalid  = errors.New("referenced department does not exist")
	ErrStaffUserConflict = errors.New("user account is already linked to a staff member")
)

// staffIDPattern enforces the employee badge format: alphanumeric,
// at least five characters.
var staffIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{5,}$`)

// defaultStaffPassword seeds new accounts; staff are expected to change it
// on first login.
const defaultStaffPassword = "changeme123"

// --- Staff DTOs ---
type CreateStaffRequest struct {
	Username     string  `json:"username" binding:"required"`
	Password     *string `json:"password"`
	Email        *string `json:"email"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	StaffID      string  `json:"staff_id" binding:"required"`
	DepartmentID *int64  `json:"department_id"`
	RoleID       int64   `json:"role_id" binding:"required"`
	PhoneNumber  *string `json:"phone_number"`
	Address      *string `json:"address"`
}

type UpdateStaffRequest struct {
	Email        *string `json:"email"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	StaffID      *string `json:"staff_id"`
	DepartmentID *int64  `json:"department_id"`
	RoleID       *int64  `json:"role_id"`
	PhoneNumber  *string `json:"phone_number"`
	Address      *string `json:"address"`
}

// --- StaffService Interface ---
type StaffService interface {
	CreateStaffMember(req CreateStaffRequest) (*models.StaffMember, error)
	GetStaffMemberByID(id int64) (*models.StaffMember, error)
	GetStaffMemberByStaffID(staffID string) (*models.StaffMember, error)
	GetStaffMembers(filters models.StaffFilters) ([]models.StaffMember, int, error)
	UpdateStaffMember(id int64, req UpdateStaffRequest) (*models.StaffMember, error)
	DeleteStaffMember(id int64) error
}

type staffService struct {
	staffRepo repositories.StaffRepository
	authRepo  repositories.AuthRepository
	db        *sql.DB
}

// NewStaffService creates a new instance of StaffService.
func NewStaffService(sr repositories.StaffRepository, ar repositories.AuthRepository, db *sql.DB) StaffService {
	return &staffService{staffRepo: sr, authRepo: ar, db: db}
}

// ValidateStaffID checks the badge format without touching the database.
func ValidateStaffID(staffID string) error {
	if !staffIDPattern.MatchString(staffID) {
		return fmt.Errorf("%w: staff_id must be alphanumeric and at least 5 characters long", ErrStaffValidation)
	}
	return nil
}

// CreateStaffMember provisions a user account and its staff profile in a
// single transaction, so a failed profile insert never leaves an orphan
// account behind.
func (s *staffService) CreateStaffMember(req CreateStaffRequest) (*models.StaffMember, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", ErrStaffValidation)
	}
	if err := ValidateStaffID(req.StaffID); err != nil {
		return nil, err
	}

	// Friendly pre-check; the unique constraint still backstops races.
	if _, err := s.staffRepo.GetStaffMemberByStaffID(req.StaffID); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrStaffIDTaken, req.StaffID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check staff_id uniqueness: %w", err)
	}

	password := defaultStaffPassword
	if req.Password != nil && *req.Password != "" {
		password = *req.Password
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for staff creation: %w", err)
	}
	defer tx.Rollback()

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	userID, err := s.authRepo.CreateUser(tx, user, string(hashedPassword))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %q", ErrUsernameTaken, req.Username)
		}
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}

	staff := &models.StaffMember{
		UserID:       userID,
		StaffID:      req.StaffID,
		DepartmentID: req.DepartmentID,
		RoleID:       req.RoleID,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
	}
	createdStaff, err := s.staffRepo.CreateStaffMember(tx, staff)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %q", ErrStaffIDTaken, req.StaffID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffRoleInvalid
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit staff creation transaction: %w", err)
	}

	user.ID = userID
	user.IsActive = true
	createdStaff.User = user
	return createdStaff, nil
}

func (s *staffService) GetStaffMemberByID(id int64) (*models.StaffMember, error) {
	staff, err := s.staffRepo.GetStaffMemberByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member by ID: %w", err)
	}
	return staff, nil
}

func (s *staffService) GetStaffMemberByStaffID(staffID string) (*models.StaffMember, error) {
	staff, err := s.staffRepo.GetStaffMemberByStaffID(staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member by staff_id: %w", err)
	}
	return staff, nil
}

func (s *staffService) GetStaffMembers(filters models.StaffFilters) ([]models.StaffMember, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	staffMembers, totalCount, err := s.staffRepo.GetStaffMembers(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get staff members: %w", err)
	}
	return staffMembers, totalCount, nil
}

// UpdateStaffMember changes the staff profile and the linked user profile
// fields together, in one transaction.
func (s *staffService) UpdateStaffMember(id int64, req UpdateStaffRequest) (*models.StaffMember, error) {
	staff, err := s.staffRepo.GetStaffMemberByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to find staff member for update: %w", err)
	}

	if req.StaffID != nil && *req.StaffID != staff.StaffID {
		if err := ValidateStaffID(*req.StaffID); err != nil {
			return nil, err
		}
		staff.StaffID = *req.StaffID
	}
	if req.DepartmentID != nil {
		staff.DepartmentID = req.DepartmentID
	}
	if req.RoleID != nil {
		staff.RoleID = *req.RoleID
	}
	if req.PhoneNumber != nil {
		staff.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		staff.Address = req.Address
	}

	userChanged := false
	if req.Email != nil {
		staff.User.Email = req.Email
		userChanged = true
	}
	if req.FirstName != nil {
		staff.User.FirstName = req.FirstName
		userChanged = true
	}
	if req.LastName != nil {
		staff.User.LastName = req.LastName
		userChanged = true
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for staff update: %w", err)
	}
	defer tx.Rollback()

	updatedStaff, err := s.staffRepo.UpdateStaffMember(tx, staff)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %q", ErrStaffIDTaken, staff.StaffID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}

	if userChanged {
		if err := s.authRepo.UpdateUser(tx, staff.User); err != nil {
			return nil, fmt.Errorf("failed to update linked user account: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit staff update transaction: %w", err)
	}
	updatedStaff.User = staff.User
	return updatedStaff, nil
}

// DeleteStaffMember removes the staff profile. The user account survives so
// historical references stay resolvable.
func (s *staffService) DeleteStaffMember(id int64) error {
	err := s.staffRepo.DeleteStaffMember(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	return nil
}
