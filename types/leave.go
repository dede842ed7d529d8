package types

import "time"

// LeaveType is the category of a leave request.
type LeaveType string

// Supported leave types.
const (
	LeaveAnnual      LeaveType = "Annual"
	LeaveSick        LeaveType = "Sick"
	LeaveCasual      LeaveType = "Casual"
	LeaveMaternity   LeaveType = "Maternity"
	LeavePaternity   LeaveType = "Paternity"
	LeaveUnpaid      LeaveType = "Unpaid"
	LeaveBereavement LeaveType = "Bereavement"
)

// Valid reports whether t is one of the supported leave types.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveAnnual, LeaveSick, LeaveCasual, LeaveMaternity, LeavePaternity, LeaveUnpaid, LeaveBereavement:
		return true
	default:
		return false
	}
}

// LeaveStatus is the workflow state of a leave request.
//
//	Pending -> Approved | Rejected | Cancelled
//
// Approved, Rejected and Cancelled are terminal.
type LeaveStatus string

// Supported leave statuses.
const (
	LeavePending   LeaveStatus = "Pending"
	LeaveApproved  LeaveStatus = "Approved"
	LeaveRejected  LeaveStatus = "Rejected"
	LeaveCancelled LeaveStatus = "Cancelled"
)

// Valid reports whether s is one of the supported leave statuses.
func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is expected from s.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveApproved || s == LeaveRejected || s == LeaveCancelled
}

// LeaveRequest is a request for time off filed by one employee.
type LeaveRequest struct {
	// ID is the unique identifier of the leave request.
	ID int `json:"id" db:"id"`

	// EmployeeID references the employee who filed the request.
	EmployeeID int `json:"employee_id" db:"employee_id"`

	// EmployeeName, EmployeeCode and DepartmentName are resolved on
	// read for listings and are not stored on the row.
	EmployeeName   string `json:"employee_name,omitempty" db:"-"`
	EmployeeCode   string `json:"employee_code,omitempty" db:"-"`
	DepartmentName string `json:"department_name,omitempty" db:"-"`

	// EmployeeUserID is the login account linked to the employee, used
	// to decide ownership. It is never serialized.
	EmployeeUserID *int `json:"-" db:"-"`

	// Type is the category of leave.
	Type LeaveType `json:"type" db:"type"`

	// StartDate and EndDate bound the leave; both days are included.
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`

	// Days is the inclusive day span between StartDate and EndDate.
	Days int `json:"days" db:"days"`

	// Reason is the free-text justification given by the employee.
	Reason string `json:"reason" db:"reason"`

	// Status is the current workflow state.
	Status LeaveStatus `json:"status" db:"status"`

	// ManagerComments is the optional note recorded with a decision.
	ManagerComments *string `json:"manager_comments,omitempty" db:"manager_comments"`

	// ApprovedBy is the user id of whoever decided the request.
	ApprovedBy *int `json:"approved_by,omitempty" db:"approved_by"`

	// ApprovedAt is when the request was decided.
	ApprovedAt *time.Time `json:"approved_at,omitempty" db:"approved_at"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// LeaveFilter narrows a leave listing. Nil fields are ignored.
type LeaveFilter struct {
	EmployeeID *int
	Type       *LeaveType
	Status     *LeaveStatus
	StartDate  *time.Time
	EndDate    *time.Time
}

// LeaveBalance is the remaining allotment of the tracked leave types
// for one employee in one calendar year.
type LeaveBalance struct {
	EmployeeID         int    `json:"employee_id"`
	EmployeeName       string `json:"employee_name"`
	Year               int    `json:"year"`
	AnnualLeaveBalance int    `json:"annual_leave_balance"`
	SickLeaveBalance   int    `json:"sick_leave_balance"`
	CasualLeaveBalance int    `json:"casual_leave_balance"`
}

// LeaveEventType names a leave workflow transition.
type LeaveEventType string

// Published leave events.
const (
	LeaveEventCreated   LeaveEventType = "leave.created"
	LeaveEventApproved  LeaveEventType = "leave.approved"
	LeaveEventRejected  LeaveEventType = "leave.rejected"
	LeaveEventCancelled LeaveEventType = "leave.cancelled"
)

// LeaveEvent describes a transition of a leave request. It is published
// to the message queue when one is configured.
type LeaveEvent struct {
	ID         string         `json:"id"`
	Type       LeaveEventType `json:"type"`
	LeaveID    int            `json:"leave_id"`
	EmployeeID int            `json:"employee_id"`
	Status     LeaveStatus    `json:"status"`
	ActorID    int            `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
}
