package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentStatus is the lifecycle state of an employee record.
type EmploymentStatus string

// Supported employment statuses.
const (
	EmploymentActive     EmploymentStatus = "Active"
	EmploymentOnLeave    EmploymentStatus = "OnLeave"
	EmploymentTerminated EmploymentStatus = "Terminated"
	EmploymentResigned   EmploymentStatus = "Resigned"
	EmploymentRetired    EmploymentStatus = "Retired"
)

// Valid reports whether s is one of the supported statuses.
func (s EmploymentStatus) Valid() bool {
	switch s {
	case EmploymentActive, EmploymentOnLeave, EmploymentTerminated, EmploymentResigned, EmploymentRetired:
		return true
	default:
		return false
	}
}

// Employee is the HR record of a person employed by the organization.
// An employee may be linked to at most one user account.
type Employee struct {
	// ID is the unique identifier of the employee.
	ID int `json:"id" db:"id"`

	// EmployeeCode is the generated sequential code (EMP001, EMP002, ...).
	EmployeeCode string `json:"employee_code" db:"employee_code"`

	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender      string    `json:"gender" db:"gender"`
	Address     string    `json:"address" db:"address"`
	City        string    `json:"city" db:"city"`
	State       string    `json:"state" db:"state"`
	ZipCode     string    `json:"zip_code" db:"zip_code"`
	Country     string    `json:"country" db:"country"`

	// DepartmentID references the department the employee belongs to.
	DepartmentID int `json:"department_id" db:"department_id"`

	// DepartmentName is resolved on read and is not stored on the row.
	DepartmentName string `json:"department_name,omitempty" db:"-"`

	// Designation is the employee's job title.
	Designation string `json:"designation" db:"designation"`

	// HireDate is the first working day of the employee.
	HireDate time.Time `json:"hire_date" db:"hire_date"`

	// TerminationDate is set when the employee is soft-deleted.
	TerminationDate *time.Time `json:"termination_date,omitempty" db:"termination_date"`

	// Status is the employment status. Terminated employees are excluded
	// from listings and aggregates.
	Status EmploymentStatus `json:"status" db:"status"`

	// Salary is the annual salary.
	Salary decimal.Decimal `json:"salary" db:"salary"`

	// UserID optionally links the employee to a login account.
	UserID *int `json:"user_id,omitempty" db:"user_id"`

	CreatedBy *string    `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy *string    `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// FullName returns "first last".
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// EmployeeSort names a sortable employee column.
type EmployeeSort string

// Supported sort keys.
const (
	SortCreatedAt  EmployeeSort = "createdat"
	SortFirstName  EmployeeSort = "firstname"
	SortLastName   EmployeeSort = "lastname"
	SortEmail      EmployeeSort = "email"
	SortSalary     EmployeeSort = "salary"
	SortHireDate   EmployeeSort = "hiredate"
	SortDepartment EmployeeSort = "department"
	SortStatus     EmployeeSort = "status"
)

// EmployeeFilter narrows an employee listing. Nil fields are ignored.
type EmployeeFilter struct {
	Search         string
	DepartmentID   *int
	Status         *EmploymentStatus
	HireDateFrom   *time.Time
	HireDateTo     *time.Time
	MinSalary      *decimal.Decimal
	MaxSalary      *decimal.Decimal
	SortBy         EmployeeSort
	SortDescending bool
}

// EmployeeStatistics summarizes non-terminated employees grouped by department.
type EmployeeStatistics struct {
	DepartmentName string          `json:"department_name"`
	EmployeeCount  int             `json:"employee_count"`
	AverageSalary  decimal.Decimal `json:"average_salary"`
	ActiveCount    int             `json:"active_count"`
	OnLeaveCount   int             `json:"on_leave_count"`
}
