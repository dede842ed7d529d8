package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department groups employees under a unique name and code.
type Department struct {
	// ID is the unique identifier of the department.
	ID int `json:"id" db:"id"`

	// Name is the unique human-readable department name.
	Name string `json:"name" db:"name"`

	// Code is the unique short code of the department (e.g., "IT").
	Code string `json:"code" db:"code"`

	// Description is free-form text about the department.
	Description string `json:"description" db:"description"`

	// ManagerID optionally references the employee managing the department.
	ManagerID *int `json:"manager_id,omitempty" db:"manager_id"`

	// IsActive reports whether the department accepts new employees
	// and is included in listings.
	IsActive bool `json:"is_active" db:"is_active"`

	// CreatedAt is the timestamp when the department was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DepartmentDetail is a department together with its active headcount.
type DepartmentDetail struct {
	Department
	EmployeeCount int `json:"employee_count"`
}

// DepartmentStatistics summarizes the non-terminated employees of a department.
type DepartmentStatistics struct {
	DepartmentID     int             `json:"department_id"`
	DepartmentName   string          `json:"department_name"`
	DepartmentCode   string          `json:"department_code"`
	TotalEmployees   int             `json:"total_employees"`
	ActiveEmployees  int             `json:"active_employees"`
	OnLeaveEmployees int             `json:"on_leave_employees"`
	AverageSalary    decimal.Decimal `json:"average_salary"`
}
