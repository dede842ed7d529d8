//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/internal/db"
	"github.com/staffdesk/apiserver/internal/seed"
	"github.com/staffdesk/apiserver/internal/server"
	"github.com/staffdesk/apiserver/internal/store"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	serverPort = 18080
)

var baseURL = fmt.Sprintf("http://localhost:%d", serverPort)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("staffdesk"),
		postgres.WithUsername("staffdesk"),
		postgres.WithPassword("staffdesk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres: %v\n", err)
		os.Exit(1)
	}
	terminate := func() { _ = pgContainer.Terminate(context.Background()) }

	host, err := pgContainer.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve postgres host: %v\n", err)
		terminate()
		os.Exit(1)
	}
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve postgres port: %v\n", err)
		terminate()
		os.Exit(1)
	}

	_ = os.Setenv("DB_HOST", host)
	_ = os.Setenv("DB_PORT", port.Port())
	_ = os.Setenv("DB_USER", "staffdesk")
	_ = os.Setenv("DB_PASSWORD", "staffdesk")
	_ = os.Setenv("DB_NAME", "staffdesk")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("JWT_SECRET", "e2e-secret")
	_ = os.Setenv("JWT_ISSUER", "staffdesk")
	_ = os.Setenv("JWT_AUDIENCE", "staffdesk-clients")
	_ = os.Setenv("JWT_EXPIRY_MINUTES", "60")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("STORAGE_BACKEND", "")
	_ = os.Setenv("MQ_BACKEND", "")
	cfg := config.LoadConfig()

	if err := prepareDatabase(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare database: %v\n", err)
		terminate()
		os.Exit(1)
	}

	srv, err := server.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		terminate()
		os.Exit(1)
	}
	go func() {
		_ = srv.Start()
	}()

	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown(context.Background())
		terminate()
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown(context.Background())
	terminate()
	os.Exit(code)
}

func TestHRLifecycle(t *testing.T) {
	admin := login(t, "admin", "Admin@123")
	hr := login(t, "hrmanager", "Hr@123")

	var department struct {
		ID   int    `json:"id"`
		Code string `json:"code"`
	}
	call(t, http.MethodPost, "/api/departments", hr, map[string]any{
		"name": "Legal", "code": "LGL", "description": "Legal Department",
	}, http.StatusCreated, &department)

	var employee struct {
		ID           int    `json:"id"`
		EmployeeCode string `json:"employee_code"`
	}
	call(t, http.MethodPost, "/api/employees", hr, map[string]any{
		"first_name":    "Nora",
		"last_name":     "Quinn",
		"email":         "nora.quinn@company.com",
		"date_of_birth": "1994-02-01T00:00:00Z",
		"department_id": department.ID,
		"designation":   "Counsel",
		"hire_date":     "2024-09-01T00:00:00Z",
		"salary":        "91000",
		"username":      "nquinn",
		"password":      "Nora@123",
	}, http.StatusCreated, &employee)
	if employee.EmployeeCode != "EMP014" {
		t.Fatalf("expected next code EMP014, got %q", employee.EmployeeCode)
	}

	nora := login(t, "nquinn", "Nora@123")

	var profile struct {
		ID int `json:"id"`
	}
	call(t, http.MethodGet, "/api/employees/profile", nora, nil, http.StatusOK, &profile)
	if profile.ID != employee.ID {
		t.Fatalf("profile id = %d, want %d", profile.ID, employee.ID)
	}

	year := time.Now().UTC().Year()
	start := time.Date(year, time.January, 6, 0, 0, 0, 0, time.UTC)
	var leave struct {
		ID     int    `json:"id"`
		Days   int    `json:"days"`
		Status string `json:"status"`
	}
	call(t, http.MethodPost, "/api/leaves", nora, map[string]any{
		"type":       "Annual",
		"start_date": start.Format(time.RFC3339),
		"end_date":   start.AddDate(0, 0, 3).Format(time.RFC3339),
		"reason":     "family visit",
	}, http.StatusCreated, &leave)
	if leave.Days != 4 || leave.Status != "Pending" {
		t.Fatalf("unexpected leave: %+v", leave)
	}

	call(t, http.MethodPut, fmt.Sprintf("/api/leaves/%d/approve", leave.ID), nora, map[string]any{"approve": true}, http.StatusForbidden, nil)
	call(t, http.MethodPut, fmt.Sprintf("/api/leaves/%d/approve", leave.ID), hr, map[string]any{"approve": true, "comments": "enjoy"}, http.StatusOK, &leave)
	if leave.Status != "Approved" {
		t.Fatalf("expected approved leave, got %q", leave.Status)
	}
	call(t, http.MethodPut, fmt.Sprintf("/api/leaves/%d/cancel", leave.ID), nora, nil, http.StatusConflict, nil)

	var balance struct {
		Annual int `json:"annual_leave_balance"`
		Sick   int `json:"sick_leave_balance"`
	}
	call(t, http.MethodGet, "/api/leaves/balance", nora, nil, http.StatusOK, &balance)
	if balance.Annual != 11 || balance.Sick != 10 {
		t.Fatalf("unexpected balance: %+v", balance)
	}

	csv := raw(t, http.MethodGet, "/api/employees/export?search=quinn", hr, http.StatusOK)
	if !strings.Contains(csv, "EMP014") || !strings.HasPrefix(csv, "EmployeeCode,") {
		t.Fatalf("unexpected export: %q", csv)
	}

	call(t, http.MethodDelete, fmt.Sprintf("/api/departments/%d", department.ID), hr, nil, http.StatusForbidden, nil)
	call(t, http.MethodDelete, fmt.Sprintf("/api/departments/%d", department.ID), admin, nil, http.StatusConflict, nil)

	call(t, http.MethodDelete, fmt.Sprintf("/api/employees/%d", employee.ID), hr, nil, http.StatusNoContent, nil)
	call(t, http.MethodGet, fmt.Sprintf("/api/employees/%d", employee.ID), hr, nil, http.StatusNotFound, nil)

	var page struct {
		TotalCount int `json:"total_count"`
	}
	call(t, http.MethodGet, "/api/employees?search=quinn", hr, nil, http.StatusOK, &page)
	if page.TotalCount != 0 {
		t.Fatalf("terminated employee still listed: %+v", page)
	}
}

func login(t *testing.T, username, password string) string {
	t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username_or_email": username,
		"password":          password,
	}, http.StatusOK, &resp)
	if resp.AccessToken == "" {
		t.Fatalf("missing token for %s", username)
	}
	return resp.AccessToken
}

func call(t *testing.T, method, path, token string, payload any, want int, out any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	resp := do(t, method, path, token, body)
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s status %d, want %d: %s", method, path, resp.StatusCode, want, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
}

func raw(t *testing.T, method, path, token string, want int) string {
	t.Helper()
	resp := do(t, method, path, token, nil)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s status %d, want %d: %s", method, path, resp.StatusCode, want, data)
	}
	return string(data)
}

func do(t *testing.T, method, path, token string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func prepareDatabase(ctx context.Context, cfg config.Config) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	migrationsURL := "file://" + filepath.Join(root, "internal", "db", "migrations")

	migrator, err := migrate.New(migrationsURL, db.URL(cfg.Database))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = seed.Run(ctx,
		store.NewDepartmentRepository(conn),
		store.NewUserRepository(conn),
		store.NewEmployeeRepository(conn),
	)
	return err
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
