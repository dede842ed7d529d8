package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/types"
)

// EmployeeRepository handles persistence for employees.
type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `e.id, e.employee_code, e.first_name, e.last_name, e.email, e.phone, e.date_of_birth,
	e.gender, e.address, e.city, e.state, e.zip_code, e.country, e.department_id, d.name,
	e.designation, e.hire_date, e.termination_date, e.status, e.salary, e.user_id,
	e.created_by, e.updated_by, e.created_at, e.updated_at`

const employeeFrom = ` FROM employees e JOIN departments d ON d.id = e.department_id`

var employeeSortColumns = map[types.EmployeeSort]string{
	types.SortCreatedAt:  "e.created_at",
	types.SortFirstName:  "e.first_name",
	types.SortLastName:   "e.last_name",
	types.SortEmail:      "e.email",
	types.SortSalary:     "e.salary",
	types.SortHireDate:   "e.hire_date",
	types.SortDepartment: "d.name",
	types.SortStatus:     "e.status",
}

func scanEmployee(row rowScanner) (types.Employee, error) {
	var employee types.Employee
	err := row.Scan(
		&employee.ID,
		&employee.EmployeeCode,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.Phone,
		&employee.DateOfBirth,
		&employee.Gender,
		&employee.Address,
		&employee.City,
		&employee.State,
		&employee.ZipCode,
		&employee.Country,
		&employee.DepartmentID,
		&employee.DepartmentName,
		&employee.Designation,
		&employee.HireDate,
		&employee.TerminationDate,
		&employee.Status,
		&employee.Salary,
		&employee.UserID,
		&employee.CreatedBy,
		&employee.UpdatedBy,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Employee{}, ErrNotFound
		}
		return types.Employee{}, err
	}
	return employee, nil
}

func employeeWhere(filter types.EmployeeFilter) *whereClause {
	where := &whereClause{}
	where.add("e.status <> 'Terminated'")
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where.add(`(e.first_name ILIKE ? OR e.last_name ILIKE ? OR e.email ILIKE ?
			OR e.employee_code ILIKE ? OR e.designation ILIKE ?)`,
			pattern, pattern, pattern, pattern, pattern)
	}
	if filter.DepartmentID != nil {
		where.add("e.department_id = ?", *filter.DepartmentID)
	}
	if filter.Status != nil {
		where.add("e.status = ?", string(*filter.Status))
	}
	if filter.HireDateFrom != nil {
		where.add("e.hire_date >= ?", *filter.HireDateFrom)
	}
	if filter.HireDateTo != nil {
		where.add("e.hire_date <= ?", *filter.HireDateTo)
	}
	if filter.MinSalary != nil {
		where.add("e.salary >= ?", *filter.MinSalary)
	}
	if filter.MaxSalary != nil {
		where.add("e.salary <= ?", *filter.MaxSalary)
	}
	return where
}

func employeeOrder(filter types.EmployeeFilter) string {
	column, ok := employeeSortColumns[filter.SortBy]
	if !ok {
		column = employeeSortColumns[types.SortCreatedAt]
	}
	direction := "ASC"
	if filter.SortDescending {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, e.id %s", column, direction, direction)
}

// List returns one page of non-terminated employees matching filter and
// the total number of matches.
func (r *EmployeeRepository) List(ctx context.Context, filter types.EmployeeFilter, offset, limit int) ([]types.Employee, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}

	where := employeeWhere(filter)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1)`+employeeFrom+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + employeeColumns + employeeFrom + where.String() + employeeOrder(filter)
	query += " OFFSET " + where.next(offset) + " LIMIT " + where.next(limit)
	employees, err := r.query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListAll returns every non-terminated employee matching filter, sorted
// the same way as List.
func (r *EmployeeRepository) ListAll(ctx context.Context, filter types.EmployeeFilter) ([]types.Employee, error) {
	where := employeeWhere(filter)
	query := `SELECT ` + employeeColumns + employeeFrom + where.String() + employeeOrder(filter)
	return r.query(ctx, query, where.args...)
}

func (r *EmployeeRepository) query(ctx context.Context, query string, args ...any) ([]types.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]types.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// Get returns a non-terminated employee.
func (r *EmployeeRepository) Get(ctx context.Context, id int) (types.Employee, error) {
	query := `SELECT ` + employeeColumns + employeeFrom + ` WHERE e.id = $1 AND e.status <> 'Terminated'`
	return scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

// GetByUserID returns the employee linked to a user account.
func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID int) (types.Employee, error) {
	query := `SELECT ` + employeeColumns + employeeFrom + ` WHERE e.user_id = $1`
	return scanEmployee(r.db.QueryRowContext(ctx, query, userID))
}

// LatestCode returns the highest employee code issued so far, or "" when
// no employee exists.
func (r *EmployeeRepository) LatestCode(ctx context.Context) (string, error) {
	const query = `
		SELECT employee_code
		FROM employees
		ORDER BY LENGTH(employee_code) DESC, employee_code DESC
		LIMIT 1`
	var code string
	err := r.db.QueryRowContext(ctx, query).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return code, err
}

func (r *EmployeeRepository) Create(ctx context.Context, employee types.Employee) (types.Employee, error) {
	return createEmployee(ctx, r.db, employee)
}

// CreateWithUser inserts the user account and the employee linked to it
// in one transaction.
func (r *EmployeeRepository) CreateWithUser(ctx context.Context, employee types.Employee, user types.User) (types.Employee, types.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Employee{}, types.User{}, err
	}
	defer tx.Rollback()

	user, err = createUser(ctx, tx, user)
	if err != nil {
		return types.Employee{}, types.User{}, fmt.Errorf("create user: %w", err)
	}
	employee.UserID = &user.ID
	employee, err = createEmployee(ctx, tx, employee)
	if err != nil {
		return types.Employee{}, types.User{}, fmt.Errorf("create employee: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return types.Employee{}, types.User{}, err
	}
	return employee, user, nil
}

func createEmployee(ctx context.Context, q queryRower, employee types.Employee) (types.Employee, error) {
	employee.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO employees (
			employee_code, first_name, last_name, email, phone, date_of_birth, gender,
			address, city, state, zip_code, country, department_id, designation,
			hire_date, status, salary, user_id, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id`
	if err := q.QueryRowContext(
		ctx,
		query,
		employee.EmployeeCode,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Phone,
		employee.DateOfBirth,
		employee.Gender,
		employee.Address,
		employee.City,
		employee.State,
		employee.ZipCode,
		employee.Country,
		employee.DepartmentID,
		employee.Designation,
		employee.HireDate,
		employee.Status,
		employee.Salary,
		employee.UserID,
		employee.CreatedBy,
		employee.CreatedAt,
	).Scan(&employee.ID); err != nil {
		return types.Employee{}, mapError(err)
	}
	return employee, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee types.Employee) (types.Employee, error) {
	now := time.Now().UTC()
	employee.UpdatedAt = &now

	const query = `
		UPDATE employees
		SET first_name = $1,
			last_name = $2,
			email = $3,
			phone = $4,
			date_of_birth = $5,
			gender = $6,
			address = $7,
			city = $8,
			state = $9,
			zip_code = $10,
			country = $11,
			department_id = $12,
			designation = $13,
			hire_date = $14,
			termination_date = $15,
			status = $16,
			salary = $17,
			user_id = $18,
			updated_by = $19,
			updated_at = $20
		WHERE id = $21`
	result, err := r.db.ExecContext(
		ctx,
		query,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Phone,
		employee.DateOfBirth,
		employee.Gender,
		employee.Address,
		employee.City,
		employee.State,
		employee.ZipCode,
		employee.Country,
		employee.DepartmentID,
		employee.Designation,
		employee.HireDate,
		employee.TerminationDate,
		employee.Status,
		employee.Salary,
		employee.UserID,
		employee.UpdatedBy,
		employee.UpdatedAt,
		employee.ID,
	)
	if err != nil {
		return types.Employee{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Employee{}, err
	}
	if affected == 0 {
		return types.Employee{}, ErrNotFound
	}
	return employee, nil
}

// TotalSalaryByDepartment sums the salaries of Active employees of a department.
func (r *EmployeeRepository) TotalSalaryByDepartment(ctx context.Context, departmentID int) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(salary), 0)
		FROM employees
		WHERE department_id = $1 AND status = 'Active'`
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, departmentID).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// CountActive returns the number of Active employees.
func (r *EmployeeRepository) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM employees WHERE status = 'Active'`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Statistics groups non-terminated employees by department.
func (r *EmployeeRepository) Statistics(ctx context.Context) ([]types.EmployeeStatistics, error) {
	const query = `
		SELECT d.name,
			COUNT(e.id),
			AVG(e.salary),
			COUNT(e.id) FILTER (WHERE e.status = 'Active'),
			COUNT(e.id) FILTER (WHERE e.status = 'OnLeave')
		FROM employees e
		JOIN departments d ON d.id = e.department_id
		WHERE e.status <> 'Terminated'
		GROUP BY d.name
		ORDER BY d.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]types.EmployeeStatistics, 0)
	for rows.Next() {
		var item types.EmployeeStatistics
		var average decimal.NullDecimal
		if err := rows.Scan(
			&item.DepartmentName,
			&item.EmployeeCount,
			&average,
			&item.ActiveCount,
			&item.OnLeaveCount,
		); err != nil {
			return nil, err
		}
		if average.Valid {
			item.AverageSalary = average.Decimal.Round(2)
		}
		stats = append(stats, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
