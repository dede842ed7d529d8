// Package seed loads the demo organization into an empty database.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/types"
)

type DepartmentStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, department types.Department) (types.Department, error)
}

type UserStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

type EmployeeStore interface {
	Create(ctx context.Context, employee types.Employee) (types.Employee, error)
}

// Result counts the rows created by Run.
type Result struct {
	Departments int
	Users       int
	Employees   int
}

type seedUser struct {
	key       string
	username  string
	email     string
	firstName string
	lastName  string
	role      types.Role
	password  string
}

type seedEmployee struct {
	code        string
	firstName   string
	lastName    string
	phone       string
	dateOfBirth time.Time
	gender      string
	address     string
	city        string
	state       string
	zip         string
	department  string
	designation string
	hireDate    time.Time
	salary      int64
	user        string
}

var departments = []types.Department{
	{Name: "Human Resources", Code: "HR", Description: "HR Department"},
	{Name: "Information Technology", Code: "IT", Description: "IT Department"},
	{Name: "Finance", Code: "FIN", Description: "Finance Department"},
	{Name: "Marketing", Code: "MKT", Description: "Marketing Department"},
	{Name: "Sales", Code: "SLS", Description: "Sales Department"},
}

var users = []seedUser{
	{key: "admin", username: "admin", email: "admin@company.com", firstName: "System", lastName: "Administrator", role: types.RoleAdmin, password: "Admin@123"},
	{key: "hr", username: "hrmanager", email: "hr@company.com", firstName: "HR", lastName: "Manager", role: types.RoleHR, password: "Hr@123"},
	{key: "it", username: "itmanager", email: "it@company.com", firstName: "IT", lastName: "Manager", role: types.RoleManager, password: "It@123"},
	{key: "finance", username: "financemanager", email: "finance@company.com", firstName: "Finance", lastName: "Manager", role: types.RoleManager, password: "Finance@123"},
}

var employees = []seedEmployee{
	{"EMP001", "Raman", "Rawat", "+1234567890", day(1990, 5, 15), "Male", "123 Main St", "New York", "NY", "10001", "IT", "Senior Developer", day(2023, 1, 15), 85000, "admin"},
	{"EMP002", "John", "Doe", "+1234567891", day(1988, 8, 20), "Male", "456 Oak Ave", "Los Angeles", "CA", "90001", "HR", "HR Manager", day(2022, 6, 1), 75000, "hr"},
	{"EMP003", "Jane", "Smith", "+1234567892", day(1992, 3, 10), "Female", "789 Pine Rd", "Chicago", "IL", "60601", "IT", "Software Engineer", day(2021, 3, 10), 70000, ""},
	{"EMP004", "Michael", "Chen", "+1234567893", day(1985, 11, 22), "Male", "101 Tech Blvd", "San Francisco", "CA", "94105", "IT", "Lead Software Engineer", day(2020, 2, 15), 95000, "it"},
	{"EMP005", "Sarah", "Johnson", "+1234567894", day(1991, 7, 8), "Female", "202 Innovation Dr", "Boston", "MA", "02108", "IT", "Full Stack Developer", day(2022, 4, 1), 78000, ""},
	{"EMP006", "David", "Wilson", "+1234567895", day(1989, 12, 3), "Male", "303 Code Lane", "Austin", "TX", "78701", "IT", "DevOps Engineer", day(2021, 9, 15), 82000, ""},
	{"EMP007", "Emily", "Davis", "+1234567896", day(1987, 4, 18), "Female", "404 Finance Ave", "New York", "NY", "10005", "FIN", "Senior Financial Analyst", day(2019, 8, 1), 88000, "finance"},
	{"EMP008", "Robert", "Brown", "+1234567897", day(1990, 9, 25), "Male", "505 Accounting St", "Chicago", "IL", "60603", "FIN", "Accountant", day(2022, 1, 10), 65000, ""},
	{"EMP009", "Lisa", "Martinez", "+1234567898", day(1993, 2, 14), "Female", "606 Brand Blvd", "Los Angeles", "CA", "90024", "MKT", "Marketing Manager", day(2020, 6, 15), 80000, ""},
	{"EMP010", "James", "Taylor", "+1234567899", day(1994, 11, 30), "Male", "707 Social Media Dr", "Miami", "FL", "33101", "MKT", "Digital Marketing Specialist", day(2023, 3, 1), 62000, ""},
	{"EMP011", "Jennifer", "Anderson", "+1234567900", day(1988, 6, 12), "Female", "808 Sales Ave", "Dallas", "TX", "75201", "SLS", "Sales Director", day(2019, 4, 1), 92000, ""},
	{"EMP012", "Thomas", "Garcia", "+1234567901", day(1992, 8, 17), "Male", "909 Revenue Rd", "Atlanta", "GA", "30303", "SLS", "Sales Representative", day(2022, 7, 15), 68000, ""},
	{"EMP013", "Michelle", "Rodriguez", "+1234567902", day(1991, 3, 22), "Female", "1010 Client St", "Seattle", "WA", "98101", "SLS", "Business Development Manager", day(2021, 5, 10), 76000, ""},
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Run creates the demo departments, users and employees. It does nothing
// when any department or user already exists.
func Run(ctx context.Context, ds DepartmentStore, us UserStore, es EmployeeStore) (Result, error) {
	var result Result

	deptCount, err := ds.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count departments: %w", err)
	}
	userCount, err := us.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count users: %w", err)
	}
	if deptCount > 0 || userCount > 0 {
		log.Printf("database already holds %d departments and %d users, skipping seed", deptCount, userCount)
		return result, nil
	}

	deptIDs := make(map[string]int, len(departments))
	for _, d := range departments {
		d.IsActive = true
		created, err := ds.Create(ctx, d)
		if err != nil {
			return result, fmt.Errorf("create department %s: %w", d.Code, err)
		}
		deptIDs[d.Code] = created.ID
		result.Departments++
	}

	userIDs := make(map[string]int, len(users))
	for _, u := range users {
		hashed, err := auth.HashPassword(u.password)
		if err != nil {
			return result, fmt.Errorf("hash password for %s: %w", u.username, err)
		}
		created, err := us.Create(ctx, types.User{
			Username:     u.username,
			Email:        u.email,
			FirstName:    u.firstName,
			LastName:     u.lastName,
			Role:         u.role,
			PasswordHash: hashed,
			IsActive:     true,
		})
		if err != nil {
			return result, fmt.Errorf("create user %s: %w", u.username, err)
		}
		userIDs[u.key] = created.ID
		result.Users++
	}

	createdBy := "seed"
	for _, e := range employees {
		employee := types.Employee{
			EmployeeCode: e.code,
			FirstName:    e.firstName,
			LastName:     e.lastName,
			Email:        emailOf(e.firstName, e.lastName),
			Phone:        e.phone,
			DateOfBirth:  e.dateOfBirth,
			Gender:       e.gender,
			Address:      e.address,
			City:         e.city,
			State:        e.state,
			ZipCode:      e.zip,
			Country:      "USA",
			DepartmentID: deptIDs[e.department],
			Designation:  e.designation,
			HireDate:     e.hireDate,
			Status:       types.EmploymentActive,
			Salary:       decimal.NewFromInt(e.salary),
			CreatedBy:    &createdBy,
		}
		if e.user != "" {
			id := userIDs[e.user]
			employee.UserID = &id
		}
		if _, err := es.Create(ctx, employee); err != nil {
			return result, fmt.Errorf("create employee %s: %w", e.code, err)
		}
		result.Employees++
	}

	return result, nil
}

func emailOf(first, last string) string {
	return strings.ToLower(first) + "." + strings.ToLower(last) + "@company.com"
}
