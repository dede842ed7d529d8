package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/types"
)

const (
	employeeCodePrefix = "EMP"

	defaultPageSize = 10
	maxPageSize     = 100
)

// EmployeeRepository defines persistence operations for employees.
type EmployeeRepository interface {
	List(ctx context.Context, filter types.EmployeeFilter, offset, limit int) ([]types.Employee, int, error)
	ListAll(ctx context.Context, filter types.EmployeeFilter) ([]types.Employee, error)
	Get(ctx context.Context, id int) (types.Employee, error)
	GetByUserID(ctx context.Context, userID int) (types.Employee, error)
	LatestCode(ctx context.Context) (string, error)
	Create(ctx context.Context, employee types.Employee) (types.Employee, error)
	CreateWithUser(ctx context.Context, employee types.Employee, user types.User) (types.Employee, types.User, error)
	Update(ctx context.Context, employee types.Employee) (types.Employee, error)
	TotalSalaryByDepartment(ctx context.Context, departmentID int) (decimal.Decimal, error)
	CountActive(ctx context.Context) (int, error)
	Statistics(ctx context.Context) ([]types.EmployeeStatistics, error)
}

// ActiveDepartmentChecker reports whether a department accepts employees.
type ActiveDepartmentChecker interface {
	ExistsActive(ctx context.Context, id int) (bool, error)
}

// EmployeeService encapsulates employee use-cases.
type EmployeeService struct {
	repo        EmployeeRepository
	departments ActiveDepartmentChecker
	now         func() time.Time
}

func NewEmployeeService(repo EmployeeRepository, departments ActiveDepartmentChecker) *EmployeeService {
	return &EmployeeService{
		repo:        repo,
		departments: departments,
		now:         time.Now,
	}
}

// EmployeeInput is the create form of an employee. Username and Password
// are optional; when Username is set a linked login account is created.
type EmployeeInput struct {
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	DateOfBirth  time.Time       `json:"date_of_birth"`
	Gender       string          `json:"gender"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	ZipCode      string          `json:"zip_code"`
	Country      string          `json:"country"`
	DepartmentID int             `json:"department_id"`
	Designation  string          `json:"designation"`
	HireDate     time.Time       `json:"hire_date"`
	Salary       decimal.Decimal `json:"salary"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
}

// EmployeePatch carries the fields of a partial update. Blank strings
// and nil pointers leave the stored value unchanged.
type EmployeePatch struct {
	FirstName    string                  `json:"first_name"`
	LastName     string                  `json:"last_name"`
	Email        string                  `json:"email"`
	Phone        string                  `json:"phone"`
	DateOfBirth  *time.Time              `json:"date_of_birth"`
	Gender       string                  `json:"gender"`
	Address      string                  `json:"address"`
	City         string                  `json:"city"`
	State        string                  `json:"state"`
	ZipCode      string                  `json:"zip_code"`
	Country      string                  `json:"country"`
	DepartmentID *int                    `json:"department_id"`
	Designation  string                  `json:"designation"`
	Salary       *decimal.Decimal        `json:"salary"`
	Status       *types.EmploymentStatus `json:"status"`
}

// Paging normalizes 1-based page parameters into offset and limit.
func Paging(pageNumber, pageSize int) (number, size, offset int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageNumber, pageSize, (pageNumber - 1) * pageSize
}

func (s *EmployeeService) List(ctx context.Context, filter types.EmployeeFilter, pageNumber, pageSize int) (types.Page[types.Employee], error) {
	number, size, offset := Paging(pageNumber, pageSize)
	employees, total, err := s.repo.List(ctx, filter, offset, size)
	if err != nil {
		return types.Page[types.Employee]{}, storeError(err, "employee not found")
	}
	return types.NewPage(employees, number, size, total), nil
}

// Get returns a non-terminated employee.
func (s *EmployeeService) Get(ctx context.Context, id int) (types.Employee, error) {
	employee, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Employee{}, storeError(err, employeeNotFound(id))
	}
	return employee, nil
}

// GetByUserID returns the employee profile linked to a login account.
func (s *EmployeeService) GetByUserID(ctx context.Context, userID int) (types.Employee, error) {
	employee, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return types.Employee{}, storeError(err, "employee profile not found")
	}
	return employee, nil
}

func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput, actorID int) (types.Employee, error) {
	if err := validateEmployeeInput(in); err != nil {
		return types.Employee{}, err
	}
	if err := s.requireActiveDepartment(ctx, in.DepartmentID); err != nil {
		return types.Employee{}, err
	}

	last, err := s.repo.LatestCode(ctx)
	if err != nil {
		return types.Employee{}, storeError(err, "employee not found")
	}

	createdBy := strconv.Itoa(actorID)
	employee := types.Employee{
		EmployeeCode: nextEmployeeCode(last),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Country:      in.Country,
		DepartmentID: in.DepartmentID,
		Designation:  in.Designation,
		HireDate:     in.HireDate,
		Status:       types.EmploymentActive,
		Salary:       in.Salary,
		CreatedBy:    &createdBy,
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		employee, err = s.repo.Create(ctx, employee)
		if err != nil {
			return types.Employee{}, storeError(err, "employee not found")
		}
		return s.Get(ctx, employee.ID)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return types.Employee{}, apperror.Wrap(apperror.KindInternal, "failed to create user", err)
	}
	employee, _, err = s.repo.CreateWithUser(ctx, employee, types.User{
		Username:     username,
		Email:        employee.Email,
		FirstName:    employee.FirstName,
		LastName:     employee.LastName,
		Role:         types.RoleEmployee,
		PasswordHash: hashed,
		IsActive:     true,
	})
	if err != nil {
		return types.Employee{}, storeError(err, "employee not found")
	}
	return s.Get(ctx, employee.ID)
}

func validateEmployeeInput(in EmployeeInput) error {
	switch {
	case strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "":
		return apperror.Validation("first name and last name are required")
	case strings.TrimSpace(in.Email) == "":
		return apperror.Validation("email is required")
	case in.DepartmentID < 1:
		return apperror.Validation("department_id is required")
	case in.HireDate.IsZero():
		return apperror.Validation("hire date is required")
	case in.Salary.IsNegative():
		return apperror.Validation("salary must not be negative")
	case strings.TrimSpace(in.Username) != "" && in.Password == "":
		return apperror.Validation("password is required when username is set")
	case len(in.Password) > auth.MaxPasswordBytes:
		return errPasswordTooLong
	}
	return nil
}

func (s *EmployeeService) requireActiveDepartment(ctx context.Context, id int) error {
	ok, err := s.departments.ExistsActive(ctx, id)
	if err != nil {
		return storeError(err, departmentNotFound(id))
	}
	if !ok {
		return apperror.Validation("department not found or inactive")
	}
	return nil
}

// nextEmployeeCode increments the numeric suffix of the latest code.
func nextEmployeeCode(last string) string {
	next := 1
	if n, err := strconv.Atoi(strings.TrimPrefix(last, employeeCodePrefix)); err == nil && n > 0 {
		next = n + 1
	}
	return fmt.Sprintf("%s%03d", employeeCodePrefix, next)
}

func (s *EmployeeService) Update(ctx context.Context, id int, patch EmployeePatch, actorID int) (types.Employee, error) {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return types.Employee{}, err
	}

	setString(&employee.FirstName, patch.FirstName)
	setString(&employee.LastName, patch.LastName)
	setString(&employee.Email, patch.Email)
	setString(&employee.Phone, patch.Phone)
	setString(&employee.Gender, patch.Gender)
	setString(&employee.Address, patch.Address)
	setString(&employee.City, patch.City)
	setString(&employee.State, patch.State)
	setString(&employee.ZipCode, patch.ZipCode)
	setString(&employee.Country, patch.Country)
	setString(&employee.Designation, patch.Designation)
	if patch.DateOfBirth != nil {
		employee.DateOfBirth = *patch.DateOfBirth
	}
	if patch.DepartmentID != nil && *patch.DepartmentID != employee.DepartmentID {
		if err := s.requireActiveDepartment(ctx, *patch.DepartmentID); err != nil {
			return types.Employee{}, err
		}
		employee.DepartmentID = *patch.DepartmentID
	}
	if patch.Salary != nil {
		if patch.Salary.IsNegative() {
			return types.Employee{}, apperror.Validation("salary must not be negative")
		}
		employee.Salary = *patch.Salary
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return types.Employee{}, apperror.Validation("invalid employment status")
		}
		employee.Status = *patch.Status
		if employee.Status == types.EmploymentTerminated && employee.TerminationDate == nil {
			now := s.now().UTC()
			employee.TerminationDate = &now
		}
	}

	updatedBy := strconv.Itoa(actorID)
	employee.UpdatedBy = &updatedBy
	if _, err := s.repo.Update(ctx, employee); err != nil {
		return types.Employee{}, storeError(err, employeeNotFound(id))
	}
	if employee.Status == types.EmploymentTerminated {
		return employee, nil
	}
	return s.Get(ctx, id)
}

func setString(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

// Delete soft-deletes an employee by marking it Terminated.
func (s *EmployeeService) Delete(ctx context.Context, id int, actorID int) error {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	updatedBy := strconv.Itoa(actorID)
	employee.Status = types.EmploymentTerminated
	employee.TerminationDate = &now
	employee.UpdatedBy = &updatedBy
	if _, err := s.repo.Update(ctx, employee); err != nil {
		return storeError(err, employeeNotFound(id))
	}
	return nil
}

// TotalSalaryByDepartment sums the salaries of Active employees.
func (s *EmployeeService) TotalSalaryByDepartment(ctx context.Context, departmentID int) (decimal.Decimal, error) {
	total, err := s.repo.TotalSalaryByDepartment(ctx, departmentID)
	if err != nil {
		return decimal.Zero, storeError(err, departmentNotFound(departmentID))
	}
	return total, nil
}

func (s *EmployeeService) ActiveCount(ctx context.Context) (int, error) {
	count, err := s.repo.CountActive(ctx)
	if err != nil {
		return 0, storeError(err, "employee not found")
	}
	return count, nil
}

func (s *EmployeeService) Statistics(ctx context.Context) ([]types.EmployeeStatistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, storeError(err, "employee not found")
	}
	return stats, nil
}

func employeeNotFound(id int) string {
	return fmt.Sprintf("employee with id %d not found", id)
}
