package models

import "time"

// Leave types.
const (
	LeaveTypeSick        = "sick"
	LeaveTypeVacation    = "vacation"
	LeaveTypePersonal    = "personal"
	LeaveTypeMaternity   = "maternity"
	LeaveTypePaternity   = "paternity"
	LeaveTypeBereavement = "bereavement"
	LeaveTypeOther       = "other"
)

// IsValidLeaveType reports whether t is a legal leave type.
func IsValidLeaveType(t string) bool {
	switch t {
	case LeaveTypeSick, LeaveTypeVacation, LeaveTypePersonal, LeaveTypeMaternity,
		LeaveTypePaternity, LeaveTypeBereavement, LeaveTypeOther:
		return true
	}
	return false
}

// Leave request statuses.
const (
	LeaveStatusPending   = "pending"
	LeaveStatusApproved  = "approved"
	LeaveStatusRejected  = "rejected"
	LeaveStatusCancelled = "cancelled"
)

// IsValidLeaveStatus reports whether s is a legal leave request status.
func IsValidLeaveStatus(s string) bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected, LeaveStatusCancelled:
		return true
	}
	return false
}

// LeaveRequest covers an inclusive date range. Approval deactivates every
// active shift assignment of the staff member inside the range.
type LeaveRequest struct {
	ID            int64        `json:"id"`
	StaffMemberID int64        `json:"staff_member_id" db:"staff_member_id"`
	LeaveType     string       `json:"leave_type" db:"leave_type"`
	StartDate     string       `json:"start_date" db:"start_date"` // "YYYY-MM-DD"
	EndDate       string       `json:"end_date" db:"end_date"`
	Reason        *string      `json:"reason,omitempty" db:"reason"`
	Status        string       `json:"status" db:"status"`
	ApprovedBy    *int64       `json:"approved_by,omitempty" db:"approved_by"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
	StaffMember   *StaffMember `json:"staff_member,omitempty"`
}

// LeaveFilters narrows leave request listings.
type LeaveFilters struct {
	StaffID   *string
	Status    *string
	StartDate *string
	EndDate   *string
	Page      int
	PageSize  int
}

// Attendance statuses.
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusAbsent  = "absent"
	AttendanceStatusLate    = "late"
	AttendanceStatusHalfDay = "half_day"
	AttendanceStatusLeave   = "leave"
)

// IsValidAttendanceStatus reports whether s is a legal attendance status.
func IsValidAttendanceStatus(s string) bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate,
		AttendanceStatusHalfDay, AttendanceStatusLeave:
		return true
	}
	return false
}

// Attendance records presence for one shift assignment on its date.
// Status is derived from check-in timing except for "leave", which sticks.
type Attendance struct {
	ID                int64            `json:"id"`
	StaffMemberID     int64            `json:"staff_member_id" db:"staff_member_id"`
	ShiftAssignmentID int64            `json:"shift_assignment_id" db:"shift_assignment_id"`
	Date              string           `json:"date" db:"date"`
	Status            string           `json:"status" db:"status"`
	CheckInTime       *time.Time       `json:"check_in_time,omitempty" db:"check_in_time"`
	CheckOutTime      *time.Time       `json:"check_out_time,omitempty" db:"check_out_time"`
	Notes             *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
	StaffMember       *StaffMember     `json:"staff_member,omitempty"`
	ShiftAssignment   *ShiftAssignment `json:"shift_assignment,omitempty"`
}

// AttendanceFilters narrows attendance listings.
type AttendanceFilters struct {
	StaffID   *string
	Status    *string
	StartDate *string
	EndDate   *string
	Page      int
	PageSize  int
}
