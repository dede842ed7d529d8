package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/storage"
	"github.com/staffdesk/apiserver/types"
)

type memoryArchive struct {
	objects map[string][]byte
	putErr  error
}

func (m *memoryArchive) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryArchive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func exportFixture() *fakeEmployeeRepo {
	return newFakeEmployeeRepo(
		types.Employee{
			ID: 1, EmployeeCode: "EMP001", FirstName: "Ann", LastName: "Lee", Email: "ann@x.io",
			Phone: "555-0100", DepartmentName: "Engineering", Designation: "Engineer, Backend",
			HireDate: date(2024, 1, 15), Salary: decimal.NewFromInt(55000), Status: types.EmploymentActive,
		},
		types.Employee{ID: 2, EmployeeCode: "EMP002", FirstName: "Old", LastName: "Timer", Status: types.EmploymentTerminated},
	)
}

func TestExportEmployeesRendersCSV(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)

	export, err := svc.Employees(context.Background(), types.EmployeeFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.ID != "" {
		t.Fatalf("unarchived export must not carry an id")
	}
	if !strings.HasPrefix(export.Filename, "employees-") || !strings.HasSuffix(export.Filename, ".csv") {
		t.Fatalf("unexpected filename %q", export.Filename)
	}

	records, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(exportHeader, ",") {
		t.Fatalf("unexpected header %v", records[0])
	}
	want := []string{"EMP001", "Ann", "Lee", "ann@x.io", "555-0100", "Engineering", "Engineer, Backend", "2024-01-15", "55000.00", "Active"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected row %v", records[1])
	}
}

func TestExportArchivesAndReopens(t *testing.T) {
	archive := &memoryArchive{objects: map[string][]byte{}}
	svc := NewExportService(exportFixture(), archive)

	export, err := svc.Employees(context.Background(), types.EmployeeFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.ID == "" {
		t.Fatalf("expected archived export id")
	}
	if _, ok := archive.objects[exportKey(export.ID)]; !ok {
		t.Fatalf("expected object under %s", exportKey(export.ID))
	}

	rc, err := svc.Archived(context.Background(), export.ID)
	if err != nil {
		t.Fatalf("archived: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if !bytes.Equal(data, export.Data) {
		t.Fatalf("archived export differs from rendered export")
	}
}

func TestExportArchiveFailureStillReturnsData(t *testing.T) {
	archive := &memoryArchive{objects: map[string][]byte{}, putErr: errors.New("bucket gone")}
	svc := NewExportService(exportFixture(), archive)

	export, err := svc.Employees(context.Background(), types.EmployeeFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.ID != "" || len(export.Data) == 0 {
		t.Fatalf("unexpected export: id=%q size=%d", export.ID, len(export.Data))
	}
}

func TestArchivedErrors(t *testing.T) {
	const missing = "2f1c3f8e-4a8b-4b8e-9a43-7d2b8b1f0c11"
	tests := []struct {
		name    string
		archive ObjectStore
		id      string
		kind    apperror.Kind
	}{
		{name: "invalid_id", archive: &memoryArchive{objects: map[string][]byte{}}, id: "../etc/passwd", kind: apperror.KindValidation},
		{name: "not_configured", archive: nil, id: missing, kind: apperror.KindNotFound},
		{name: "missing_object", archive: &memoryArchive{objects: map[string][]byte{}}, id: missing, kind: apperror.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewExportService(exportFixture(), tt.archive)
			if _, err := svc.Archived(context.Background(), tt.id); !apperror.Is(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}
