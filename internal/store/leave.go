package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdesk/apiserver/types"
)

// LeaveRepository handles persistence for leave requests.
type LeaveRepository struct {
	db *sql.DB
}

func NewLeaveRepository(db *sql.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `l.id, l.employee_id, e.first_name || ' ' || e.last_name, e.employee_code, d.name, e.user_id,
	l.type, l.start_date, l.end_date, l.days, l.reason, l.status, l.manager_comments,
	l.approved_by, l.approved_at, l.created_at, l.updated_at`

const leaveFrom = ` FROM leave_requests l
	JOIN employees e ON e.id = l.employee_id
	JOIN departments d ON d.id = e.department_id`

func scanLeave(row rowScanner) (types.LeaveRequest, error) {
	var leave types.LeaveRequest
	err := row.Scan(
		&leave.ID,
		&leave.EmployeeID,
		&leave.EmployeeName,
		&leave.EmployeeCode,
		&leave.DepartmentName,
		&leave.EmployeeUserID,
		&leave.Type,
		&leave.StartDate,
		&leave.EndDate,
		&leave.Days,
		&leave.Reason,
		&leave.Status,
		&leave.ManagerComments,
		&leave.ApprovedBy,
		&leave.ApprovedAt,
		&leave.CreatedAt,
		&leave.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.LeaveRequest{}, ErrNotFound
		}
		return types.LeaveRequest{}, err
	}
	return leave, nil
}

// List returns one page of leave requests matching filter, newest first,
// and the total number of matches.
func (r *LeaveRepository) List(ctx context.Context, filter types.LeaveFilter, offset, limit int) ([]types.LeaveRequest, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}

	where := &whereClause{}
	if filter.EmployeeID != nil {
		where.add("l.employee_id = ?", *filter.EmployeeID)
	}
	if filter.Type != nil {
		where.add("l.type = ?", string(*filter.Type))
	}
	if filter.Status != nil {
		where.add("l.status = ?", string(*filter.Status))
	}
	if filter.StartDate != nil {
		where.add("l.start_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		where.add("l.end_date <= ?", *filter.EndDate)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1)`+leaveFrom+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leaveColumns + leaveFrom + where.String() + ` ORDER BY l.created_at DESC, l.id DESC`
	query += " OFFSET " + where.next(offset) + " LIMIT " + where.next(limit)
	leaves, err := r.query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

// ListByEmployee returns every leave request of one employee, newest first.
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID int) ([]types.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + leaveFrom + ` WHERE l.employee_id = $1 ORDER BY l.created_at DESC, l.id DESC`
	return r.query(ctx, query, employeeID)
}

func (r *LeaveRepository) query(ctx context.Context, query string, args ...any) ([]types.LeaveRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leaves := make([]types.LeaveRequest, 0)
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leave)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *LeaveRepository) Get(ctx context.Context, id int) (types.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + leaveFrom + ` WHERE l.id = $1`
	return scanLeave(r.db.QueryRowContext(ctx, query, id))
}

func (r *LeaveRepository) Create(ctx context.Context, leave types.LeaveRequest) (types.LeaveRequest, error) {
	leave.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO leave_requests (employee_id, type, start_date, end_date, days, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		leave.EmployeeID,
		leave.Type,
		leave.StartDate,
		leave.EndDate,
		leave.Days,
		leave.Reason,
		leave.Status,
		leave.CreatedAt,
	).Scan(&leave.ID); err != nil {
		return types.LeaveRequest{}, mapError(err)
	}
	return leave, nil
}

// Update writes the workflow fields of a leave request. Concurrent
// writers on the same row are last-write-wins.
func (r *LeaveRepository) Update(ctx context.Context, leave types.LeaveRequest) (types.LeaveRequest, error) {
	now := time.Now().UTC()
	leave.UpdatedAt = &now

	const query = `
		UPDATE leave_requests
		SET status = $1,
			manager_comments = $2,
			approved_by = $3,
			approved_at = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		leave.Status,
		leave.ManagerComments,
		leave.ApprovedBy,
		leave.ApprovedAt,
		leave.UpdatedAt,
		leave.ID,
	)
	if err != nil {
		return types.LeaveRequest{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.LeaveRequest{}, err
	}
	if affected == 0 {
		return types.LeaveRequest{}, ErrNotFound
	}
	return leave, nil
}

// ApprovedDaysByType sums the days of Approved requests of an employee
// whose start date falls in year.
func (r *LeaveRepository) ApprovedDaysByType(ctx context.Context, employeeID, year int) (map[types.LeaveType]int, error) {
	const query = `
		SELECT type, COALESCE(SUM(days), 0)
		FROM leave_requests
		WHERE employee_id = $1
			AND status = 'Approved'
			AND EXTRACT(YEAR FROM start_date) = $2
		GROUP BY type`
	rows, err := r.db.QueryContext(ctx, query, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	used := make(map[types.LeaveType]int)
	for rows.Next() {
		var leaveType types.LeaveType
		var days int
		if err := rows.Scan(&leaveType, &days); err != nil {
			return nil, err
		}
		used[leaveType] = days
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return used, nil
}
