package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/types"
)

// Yearly allotments of the tracked leave types.
const (
	AnnualLeaveAllotment = 15
	SickLeaveAllotment   = 10
	CasualLeaveAllotment = 7
)

// LeaveRepository defines persistence operations for leave requests.
type LeaveRepository interface {
	List(ctx context.Context, filter types.LeaveFilter, offset, limit int) ([]types.LeaveRequest, int, error)
	ListByEmployee(ctx context.Context, employeeID int) ([]types.LeaveRequest, error)
	Get(ctx context.Context, id int) (types.LeaveRequest, error)
	Create(ctx context.Context, leave types.LeaveRequest) (types.LeaveRequest, error)
	Update(ctx context.Context, leave types.LeaveRequest) (types.LeaveRequest, error)
	ApprovedDaysByType(ctx context.Context, employeeID, year int) (map[types.LeaveType]int, error)
}

// EmployeeLookup resolves employees for the leave workflow.
type EmployeeLookup interface {
	Get(ctx context.Context, id int) (types.Employee, error)
	GetByUserID(ctx context.Context, userID int) (types.Employee, error)
}

// LeaveNotifier receives leave workflow transitions. Delivery is best
// effort: a failed notification never fails the request.
type LeaveNotifier interface {
	NotifyLeave(ctx context.Context, event types.LeaveEvent) error
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	UserID int
	Role   types.Role
}

// LeaveInput is the form of a new leave request.
type LeaveInput struct {
	Type      types.LeaveType `json:"type"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Reason    string          `json:"reason"`
}

// LeaveService implements the leave request workflow:
//
//	Pending -> Approved | Rejected   (Decide, HR)
//	Pending -> Cancelled             (Cancel, owner or HR/Admin)
type LeaveService struct {
	repo          LeaveRepository
	employees     EmployeeLookup
	notifier      LeaveNotifier
	allowRedecide bool
	now           func() time.Time
}

// NewLeaveService constructs a LeaveService. notifier may be nil.
func NewLeaveService(repo LeaveRepository, employees EmployeeLookup, notifier LeaveNotifier, cfg config.LeaveConfig) *LeaveService {
	return &LeaveService{
		repo:          repo,
		employees:     employees,
		notifier:      notifier,
		allowRedecide: cfg.AllowRedecide,
		now:           time.Now,
	}
}

// LeaveDays returns the inclusive number of calendar days between start
// and end. Times of day are ignored.
func LeaveDays(start, end time.Time) int {
	return int(dateOf(end).Sub(dateOf(start)).Hours()/24) + 1
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create files a Pending leave request for an employee.
func (s *LeaveService) Create(ctx context.Context, employeeID int, in LeaveInput, actorID int) (types.LeaveRequest, error) {
	if !in.Type.Valid() {
		return types.LeaveRequest{}, apperror.Validation("invalid leave type")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return types.LeaveRequest{}, apperror.Validation("start date and end date are required")
	}
	start, end := dateOf(in.StartDate), dateOf(in.EndDate)
	if start.After(end) {
		return types.LeaveRequest{}, apperror.Validation("start date cannot be after end date")
	}

	leave, err := s.repo.Create(ctx, types.LeaveRequest{
		EmployeeID: employeeID,
		Type:       in.Type,
		StartDate:  start,
		EndDate:    end,
		Days:       LeaveDays(start, end),
		Reason:     strings.TrimSpace(in.Reason),
		Status:     types.LeavePending,
	})
	if err != nil {
		return types.LeaveRequest{}, storeError(err, "employee not found")
	}

	s.notify(ctx, types.LeaveEventCreated, leave, actorID)
	return leave, nil
}

// CreateForUser files a leave request for the employee linked to userID.
func (s *LeaveService) CreateForUser(ctx context.Context, userID int, in LeaveInput) (types.LeaveRequest, error) {
	employee, err := s.employeeForUser(ctx, userID)
	if err != nil {
		return types.LeaveRequest{}, err
	}
	return s.Create(ctx, employee.ID, in, userID)
}

// Decide approves or rejects a leave request on behalf of approverID.
func (s *LeaveService) Decide(ctx context.Context, id int, approve bool, comments *string, approverID int) (types.LeaveRequest, error) {
	leave, err := s.Get(ctx, id)
	if err != nil {
		return types.LeaveRequest{}, err
	}

	if leave.Status.Terminal() {
		if !s.allowRedecide {
			return types.LeaveRequest{}, apperror.InvalidState(fmt.Sprintf("leave request is already %s", leave.Status))
		}
		log.Printf("re-deciding leave request %d previously %s (approver %d)", leave.ID, leave.Status, approverID)
	}

	now := s.now().UTC()
	leave.Status = types.LeaveRejected
	if approve {
		leave.Status = types.LeaveApproved
	}
	leave.ManagerComments = comments
	leave.ApprovedBy = &approverID
	leave.ApprovedAt = &now

	leave, err = s.repo.Update(ctx, leave)
	if err != nil {
		return types.LeaveRequest{}, storeError(err, leaveNotFound(id))
	}

	event := types.LeaveEventRejected
	if approve {
		event = types.LeaveEventApproved
	}
	s.notify(ctx, event, leave, approverID)
	return leave, nil
}

// Cancel withdraws a Pending leave request. Only the owning employee's
// user or an HR/Admin caller may cancel.
func (s *LeaveService) Cancel(ctx context.Context, id int, actor Actor) (types.LeaveRequest, error) {
	leave, err := s.Get(ctx, id)
	if err != nil {
		return types.LeaveRequest{}, err
	}

	owner := leave.EmployeeUserID != nil && *leave.EmployeeUserID == actor.UserID
	privileged := actor.Role == types.RoleHR || actor.Role == types.RoleAdmin
	if !owner && !privileged {
		return types.LeaveRequest{}, apperror.Authorization("not allowed to cancel this leave request")
	}
	if leave.Status != types.LeavePending {
		return types.LeaveRequest{}, apperror.InvalidState("only pending leave requests can be cancelled")
	}

	leave.Status = types.LeaveCancelled
	leave, err = s.repo.Update(ctx, leave)
	if err != nil {
		return types.LeaveRequest{}, storeError(err, leaveNotFound(id))
	}

	s.notify(ctx, types.LeaveEventCancelled, leave, actor.UserID)
	return leave, nil
}

// Balance returns the remaining allotments of the current calendar year.
// Approved requests count toward the year of their start date.
func (s *LeaveService) Balance(ctx context.Context, employeeID int) (types.LeaveBalance, error) {
	employee, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return types.LeaveBalance{}, storeError(err, employeeNotFound(employeeID))
	}
	return s.balance(ctx, employee)
}

// BalanceForUser returns the balance of the employee linked to userID.
func (s *LeaveService) BalanceForUser(ctx context.Context, userID int) (types.LeaveBalance, error) {
	employee, err := s.employeeForUser(ctx, userID)
	if err != nil {
		return types.LeaveBalance{}, err
	}
	return s.balance(ctx, employee)
}

func (s *LeaveService) balance(ctx context.Context, employee types.Employee) (types.LeaveBalance, error) {
	year := s.now().UTC().Year()
	used, err := s.repo.ApprovedDaysByType(ctx, employee.ID, year)
	if err != nil {
		return types.LeaveBalance{}, storeError(err, employeeNotFound(employee.ID))
	}
	return types.LeaveBalance{
		EmployeeID:         employee.ID,
		EmployeeName:       employee.FullName(),
		Year:               year,
		AnnualLeaveBalance: AnnualLeaveAllotment - used[types.LeaveAnnual],
		SickLeaveBalance:   SickLeaveAllotment - used[types.LeaveSick],
		CasualLeaveBalance: CasualLeaveAllotment - used[types.LeaveCasual],
	}, nil
}

func (s *LeaveService) List(ctx context.Context, filter types.LeaveFilter, pageNumber, pageSize int) (types.Page[types.LeaveRequest], error) {
	number, size, offset := Paging(pageNumber, pageSize)
	leaves, total, err := s.repo.List(ctx, filter, offset, size)
	if err != nil {
		return types.Page[types.LeaveRequest]{}, storeError(err, "leave request not found")
	}
	return types.NewPage(leaves, number, size, total), nil
}

// MyLeaves lists the leave requests of the employee linked to userID.
func (s *LeaveService) MyLeaves(ctx context.Context, userID int) ([]types.LeaveRequest, error) {
	employee, err := s.employeeForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	leaves, err := s.repo.ListByEmployee(ctx, employee.ID)
	if err != nil {
		return nil, storeError(err, "leave request not found")
	}
	return leaves, nil
}

func (s *LeaveService) Get(ctx context.Context, id int) (types.LeaveRequest, error) {
	leave, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.LeaveRequest{}, storeError(err, leaveNotFound(id))
	}
	return leave, nil
}

func (s *LeaveService) employeeForUser(ctx context.Context, userID int) (types.Employee, error) {
	employee, err := s.employees.GetByUserID(ctx, userID)
	if err != nil {
		return types.Employee{}, storeError(err, "employee profile not found")
	}
	return employee, nil
}

func (s *LeaveService) notify(ctx context.Context, eventType types.LeaveEventType, leave types.LeaveRequest, actorID int) {
	if s.notifier == nil {
		return
	}
	event := types.LeaveEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		LeaveID:    leave.ID,
		EmployeeID: leave.EmployeeID,
		Status:     leave.Status,
		ActorID:    actorID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.notifier.NotifyLeave(ctx, event); err != nil {
		log.Printf("failed to publish %s for leave request %d: %v", eventType, leave.ID, err)
	}
}

func leaveNotFound(id int) string {
	return fmt.Sprintf("leave request with id %d not found", id)
}
