package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/types"
)

// DepartmentRepository handles persistence for departments.
type DepartmentRepository struct {
	db *sql.DB
}

func NewDepartmentRepository(db *sql.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

const departmentColumns = `id, name, code, description, manager_id, is_active, created_at, updated_at`

func scanDepartment(row rowScanner) (types.Department, error) {
	var department types.Department
	err := row.Scan(
		&department.ID,
		&department.Name,
		&department.Code,
		&department.Description,
		&department.ManagerID,
		&department.IsActive,
		&department.CreatedAt,
		&department.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Department{}, ErrNotFound
		}
		return types.Department{}, err
	}
	return department, nil
}

// ListActive returns active departments ordered by name.
func (r *DepartmentRepository) ListActive(ctx context.Context) ([]types.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE is_active ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]types.Department, 0)
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return departments, nil
}

// Get returns a department regardless of its active flag.
func (r *DepartmentRepository) Get(ctx context.Context, id int) (types.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1`
	return scanDepartment(r.db.QueryRowContext(ctx, query, id))
}

// GetActiveDetail returns an active department with its count of Active employees.
func (r *DepartmentRepository) GetActiveDetail(ctx context.Context, id int) (types.DepartmentDetail, error) {
	const query = `
		SELECT d.id, d.name, d.code, d.description, d.manager_id, d.is_active, d.created_at, d.updated_at,
			(SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id AND e.status = 'Active')
		FROM departments d
		WHERE d.id = $1 AND d.is_active`
	var detail types.DepartmentDetail
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.Name,
		&detail.Code,
		&detail.Description,
		&detail.ManagerID,
		&detail.IsActive,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.EmployeeCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DepartmentDetail{}, ErrNotFound
		}
		return types.DepartmentDetail{}, err
	}
	return detail, nil
}

// ExistsActive reports whether an active department with the id exists.
func (r *DepartmentRepository) ExistsActive(ctx context.Context, id int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1 AND is_active)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, department types.Department) (types.Department, error) {
	now := time.Now().UTC()
	department.CreatedAt = now
	department.UpdatedAt = now

	const query = `
		INSERT INTO departments (name, code, description, manager_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		department.Name,
		department.Code,
		department.Description,
		department.ManagerID,
		department.IsActive,
		department.CreatedAt,
		department.UpdatedAt,
	).Scan(&department.ID); err != nil {
		return types.Department{}, mapError(err)
	}
	return department, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, department types.Department) (types.Department, error) {
	department.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE departments
		SET name = $1,
			code = $2,
			description = $3,
			manager_id = $4,
			is_active = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		department.Name,
		department.Code,
		department.Description,
		department.ManagerID,
		department.IsActive,
		department.UpdatedAt,
		department.ID,
	)
	if err != nil {
		return types.Department{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Department{}, err
	}
	if affected == 0 {
		return types.Department{}, ErrNotFound
	}
	return department, nil
}

// Delete removes a department. The employees foreign key restricts the
// delete while any employee row references the department.
func (r *DepartmentRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM departments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Statistics summarizes non-terminated employees of every active department.
func (r *DepartmentRepository) Statistics(ctx context.Context) ([]types.DepartmentStatistics, error) {
	const query = `
		SELECT d.id, d.name, d.code,
			COUNT(e.id),
			COUNT(e.id) FILTER (WHERE e.status = 'Active'),
			COUNT(e.id) FILTER (WHERE e.status = 'OnLeave'),
			AVG(e.salary)
		FROM departments d
		LEFT JOIN employees e ON e.department_id = d.id AND e.status <> 'Terminated'
		WHERE d.is_active
		GROUP BY d.id, d.name, d.code
		ORDER BY d.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]types.DepartmentStatistics, 0)
	for rows.Next() {
		var item types.DepartmentStatistics
		var average decimal.NullDecimal
		if err := rows.Scan(
			&item.DepartmentID,
			&item.DepartmentName,
			&item.DepartmentCode,
			&item.TotalEmployees,
			&item.ActiveEmployees,
			&item.OnLeaveEmployees,
			&average,
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

// Count returns the number of departments.
func (r *DepartmentRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM departments`).Scan(&total)
	return total, err
}
