package models

import "time"

// Shift defines a recurring work period, e.g. "Morning" 08:00-16:00.
// Times are clock times formatted "HH:MM:SS". A night shift may have
// end_time earlier on the clock than start_time (it spans midnight).
type Shift struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name" db:"name"`
	StartTime     string    `json:"start_time" db:"start_time"`
	EndTime       string    `json:"end_time" db:"end_time"`
	BreakDuration int       `json:"break_duration" db:"break_duration"` // minutes
	IsNightShift  bool      `json:"is_night_shift" db:"is_night_shift"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ShiftAssignment places a staff member on a shift for a calendar date.
// At most one assignment per (staff_member, date) may be active; inactive
// rows are kept as history.
type ShiftAssignment struct {
	ID            int64        `json:"id"`
	StaffMemberID int64        `json:"staff_member_id" db:"staff_member_id"`
	ShiftID       int64        `json:"shift_id" db:"shift_id"`
	Date          string       `json:"date" db:"date"` // "YYYY-MM-DD"
	IsActive      bool         `json:"is_active" db:"is_active"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
	StaffMember   *StaffMember `json:"staff_member,omitempty"` // Joined staff details
	Shift         *Shift       `json:"shift,omitempty"`        // Joined shift details
}

// AssignmentFilters narrows shift assignment listings.
type AssignmentFilters struct {
	StaffID   *string // external staff_id badge string
	RoleID    *int64
	StartDate *string
	EndDate   *string
	IsActive  *bool
	Page      int
	PageSize  int
}

// Shift swap request statuses.
const (
	SwapStatusPending  = "pending"
	SwapStatusApproved = "approved"
	SwapStatusRejected = "rejected"
)

// IsValidSwapStatus reports whether s is a legal swap request status.
func IsValidSwapStatus(s string) bool {
	switch s {
	case SwapStatusPending, SwapStatusApproved, SwapStatusRejected:
		return true
	}
	return false
}

// ShiftSwapRequest asks to exchange shifts between the requester's
// assignment and the recipient's same-day assignment. The recipient
// assignment is located and recorded at approval time.
type ShiftSwapRequest struct {
	ID                    int64            `json:"id"`
	RequesterAssignmentID int64            `json:"requester_assignment_id" db:"requester_assignment_id"`
	RecipientAssignmentID *int64           `json:"recipient_assignment_id,omitempty" db:"recipient_assignment_id"`
	RecipientID           int64            `json:"recipient_id" db:"recipient_id"`
	Status                string           `json:"status" db:"status"`
	Reason                *string          `json:"reason,omitempty" db:"reason"`
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at" db:"updated_at"`
	RequesterAssignment   *ShiftAssignment `json:"requester_assignment,omitempty"`
	RecipientAssignment   *ShiftAssignment `json:"recipient_assignment,omitempty"`
	Recipient             *StaffMember     `json:"recipient,omitempty"`
}

// SwapFilters narrows swap request listings. StaffID matches either side
// of the request.
type SwapFilters struct {
	StaffID   *string
	Status    *string
	StartDate *string // on the requester assignment's date
	EndDate   *string
	Page      int
	PageSize  int
}

// DaySchedule groups the active assignments of one calendar date.
type DaySchedule struct {
	Date        string            `json:"date"`
	Assignments []ShiftAssignment `json:"assignments"`
}
