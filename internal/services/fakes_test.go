package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

type fakeUserRepo struct {
	users     map[int]types.User
	nextID    int
	createErr error
	touched   map[int]time.Time
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[int]types.User{}, nextID: 1, touched: map[int]time.Time{}}
	for _, u := range users {
		if u.ID == 0 {
			u.ID = repo.nextID
		}
		repo.users[u.ID] = u
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) find(match func(types.User) bool) (types.User, error) {
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if match(r.users[id]) {
			return r.users[id], nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.find(func(u types.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.find(func(u types.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (types.User, error) {
	return r.find(func(u types.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if r.createErr != nil {
		return types.User{}, r.createErr
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) TouchLastLogin(ctx context.Context, id int, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.LastLogin = &at
	r.users[id] = u
	r.touched[id] = at
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	all := make([]types.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

type fakeEmployeeRepo struct {
	employees map[int]types.Employee
	users     *fakeUserRepo
	nextID    int
	updates   int
}

func newFakeEmployeeRepo(employees ...types.Employee) *fakeEmployeeRepo {
	repo := &fakeEmployeeRepo{employees: map[int]types.Employee{}, nextID: 1}
	for _, e := range employees {
		repo.employees[e.ID] = e
		if e.ID >= repo.nextID {
			repo.nextID = e.ID + 1
		}
	}
	return repo
}

func (r *fakeEmployeeRepo) sorted() []types.Employee {
	all := make([]types.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		if e.Status != types.EmploymentTerminated {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (r *fakeEmployeeRepo) List(ctx context.Context, filter types.EmployeeFilter, offset, limit int) ([]types.Employee, int, error) {
	all, _ := r.ListAll(ctx, filter)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeEmployeeRepo) ListAll(ctx context.Context, filter types.EmployeeFilter) ([]types.Employee, error) {
	out := make([]types.Employee, 0)
	for _, e := range r.sorted() {
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.FirstName+" "+e.LastName), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.DepartmentID != nil && e.DepartmentID != *filter.DepartmentID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Get(ctx context.Context, id int) (types.Employee, error) {
	e, ok := r.employees[id]
	if !ok || e.Status == types.EmploymentTerminated {
		return types.Employee{}, store.ErrNotFound
	}
	return e, nil
}

func (r *fakeEmployeeRepo) GetByUserID(ctx context.Context, userID int) (types.Employee, error) {
	for _, e := range r.employees {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return types.Employee{}, store.ErrNotFound
}

func (r *fakeEmployeeRepo) LatestCode(ctx context.Context) (string, error) {
	latest := ""
	for _, e := range r.employees {
		if len(e.EmployeeCode) > len(latest) || (len(e.EmployeeCode) == len(latest) && e.EmployeeCode > latest) {
			latest = e.EmployeeCode
		}
	}
	return latest, nil
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, employee types.Employee) (types.Employee, error) {
	for _, e := range r.employees {
		if e.Email == employee.Email {
			return types.Employee{}, store.ErrConflict
		}
	}
	employee.ID = r.nextID
	r.nextID++
	r.employees[employee.ID] = employee
	return employee, nil
}

func (r *fakeEmployeeRepo) CreateWithUser(ctx context.Context, employee types.Employee, user types.User) (types.Employee, types.User, error) {
	user, err := r.users.Create(ctx, user)
	if err != nil {
		return types.Employee{}, types.User{}, err
	}
	employee.UserID = &user.ID
	employee, err = r.Create(ctx, employee)
	if err != nil {
		delete(r.users.users, user.ID)
		return types.Employee{}, types.User{}, err
	}
	return employee, user, nil
}

func (r *fakeEmployeeRepo) Update(ctx context.Context, employee types.Employee) (types.Employee, error) {
	if _, ok := r.employees[employee.ID]; !ok {
		return types.Employee{}, store.ErrNotFound
	}
	r.updates++
	r.employees[employee.ID] = employee
	return employee, nil
}

func (r *fakeEmployeeRepo) TotalSalaryByDepartment(ctx context.Context, departmentID int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.employees {
		if e.DepartmentID == departmentID && e.Status == types.EmploymentActive {
			total = total.Add(e.Salary)
		}
	}
	return total, nil
}

func (r *fakeEmployeeRepo) CountActive(ctx context.Context) (int, error) {
	count := 0
	for _, e := range r.employees {
		if e.Status == types.EmploymentActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeEmployeeRepo) Statistics(ctx context.Context) ([]types.EmployeeStatistics, error) {
	return []types.EmployeeStatistics{}, nil
}

type fakeDepartments struct {
	active map[int]bool
}

func (d fakeDepartments) ExistsActive(ctx context.Context, id int) (bool, error) {
	return d.active[id], nil
}

type fakeLeaveRepo struct {
	leaves  map[int]types.LeaveRequest
	nextID  int
	userIDs map[int]int
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{leaves: map[int]types.LeaveRequest{}, nextID: 1, userIDs: map[int]int{}}
}

func (r *fakeLeaveRepo) List(ctx context.Context, filter types.LeaveFilter, offset, limit int) ([]types.LeaveRequest, int, error) {
	out := make([]types.LeaveRequest, 0)
	for id := r.nextID - 1; id > 0; id-- {
		l, ok := r.leaves[id]
		if !ok {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, l)
	}
	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (r *fakeLeaveRepo) ListByEmployee(ctx context.Context, employeeID int) ([]types.LeaveRequest, error) {
	id := employeeID
	page, _, err := r.List(ctx, types.LeaveFilter{EmployeeID: &id}, 0, 1000)
	out := make([]types.LeaveRequest, 0)
	for _, l := range page {
		if l.EmployeeID == employeeID {
			out = append(out, l)
		}
	}
	return out, err
}

func (r *fakeLeaveRepo) Get(ctx context.Context, id int) (types.LeaveRequest, error) {
	l, ok := r.leaves[id]
	if !ok {
		return types.LeaveRequest{}, store.ErrNotFound
	}
	if userID, ok := r.userIDs[l.EmployeeID]; ok {
		l.EmployeeUserID = &userID
	}
	return l, nil
}

func (r *fakeLeaveRepo) Create(ctx context.Context, leave types.LeaveRequest) (types.LeaveRequest, error) {
	leave.ID = r.nextID
	r.nextID++
	r.leaves[leave.ID] = leave
	return leave, nil
}

func (r *fakeLeaveRepo) Update(ctx context.Context, leave types.LeaveRequest) (types.LeaveRequest, error) {
	if _, ok := r.leaves[leave.ID]; !ok {
		return types.LeaveRequest{}, store.ErrNotFound
	}
	r.leaves[leave.ID] = leave
	return leave, nil
}

func (r *fakeLeaveRepo) ApprovedDaysByType(ctx context.Context, employeeID, year int) (map[types.LeaveType]int, error) {
	used := map[types.LeaveType]int{}
	for _, l := range r.leaves {
		if l.EmployeeID == employeeID && l.Status == types.LeaveApproved && l.StartDate.Year() == year {
			used[l.Type] += l.Days
		}
	}
	return used, nil
}

type recordingNotifier struct {
	events []types.LeaveEvent
	err    error
}

func (n *recordingNotifier) NotifyLeave(ctx context.Context, event types.LeaveEvent) error {
	n.events = append(n.events, event)
	return n.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}
