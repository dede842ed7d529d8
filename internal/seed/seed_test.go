package seed

import (
	"context"
	"testing"

	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/types"
)

type memoryDB struct {
	departments []types.Department
	users       []types.User
	employees   []types.Employee
}

type departmentTable struct{ db *memoryDB }
type userTable struct{ db *memoryDB }
type employeeTable struct{ db *memoryDB }

func (t departmentTable) Count(ctx context.Context) (int, error) { return len(t.db.departments), nil }
func (t userTable) Count(ctx context.Context) (int, error)       { return len(t.db.users), nil }

func (t departmentTable) Create(ctx context.Context, d types.Department) (types.Department, error) {
	d.ID = len(t.db.departments) + 1
	t.db.departments = append(t.db.departments, d)
	return d, nil
}

func (t userTable) Create(ctx context.Context, u types.User) (types.User, error) {
	u.ID = len(t.db.users) + 100
	t.db.users = append(t.db.users, u)
	return u, nil
}

func (t employeeTable) Create(ctx context.Context, e types.Employee) (types.Employee, error) {
	e.ID = len(t.db.employees) + 1
	t.db.employees = append(t.db.employees, e)
	return e, nil
}

func TestRunSeedsEmptyDatabase(t *testing.T) {
	db := &memoryDB{}
	result, err := Run(context.Background(), departmentTable{db}, userTable{db}, employeeTable{db})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result != (Result{Departments: 5, Users: 4, Employees: 13}) {
		t.Fatalf("unexpected result: %+v", result)
	}

	admin := db.users[0]
	if admin.Username != "admin" || admin.Role != types.RoleAdmin || !auth.VerifyPassword("Admin@123", admin.PasswordHash) {
		t.Fatalf("unexpected admin: %+v", admin)
	}

	first := db.employees[0]
	if first.EmployeeCode != "EMP001" || first.Email != "raman.rawat@company.com" || first.UserID == nil || *first.UserID != admin.ID {
		t.Fatalf("unexpected first employee: %+v", first)
	}
	if first.DepartmentID != 2 {
		t.Fatalf("expected IT department id 2, got %d", first.DepartmentID)
	}
	if db.employees[2].UserID != nil {
		t.Fatalf("EMP003 must not be linked to a user")
	}
}

func TestRunSkipsPopulatedDatabase(t *testing.T) {
	db := &memoryDB{users: []types.User{{ID: 1, Username: "someone"}}}
	result, err := Run(context.Background(), departmentTable{db}, userTable{db}, employeeTable{db})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result != (Result{}) || len(db.departments) != 0 {
		t.Fatalf("expected no changes, got %+v", result)
	}
}
