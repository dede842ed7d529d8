package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/storage"
	"github.com/staffdesk/apiserver/types"
)

const (
	exportContentType = "text/csv"
	exportKeyPrefix   = "exports/employees-"
)

var exportHeader = []string{
	"EmployeeCode", "FirstName", "LastName", "Email", "Phone",
	"Department", "Designation", "HireDate", "Salary", "Status",
}

// EmployeeLister returns every employee matching a filter.
type EmployeeLister interface {
	ListAll(ctx context.Context, filter types.EmployeeFilter) ([]types.Employee, error)
}

// ObjectStore keeps export archives.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ExportService renders employee listings as CSV and archives them when
// an object store is configured.
type ExportService struct {
	employees EmployeeLister
	archive   ObjectStore
	now       func() time.Time
}

// NewExportService constructs an ExportService. archive may be nil.
func NewExportService(employees EmployeeLister, archive ObjectStore) *ExportService {
	return &ExportService{employees: employees, archive: archive, now: time.Now}
}

// Export is a rendered CSV document. ID is empty when the document was
// not archived.
type Export struct {
	ID       string
	Filename string
	Data     []byte
}

func (s *ExportService) Employees(ctx context.Context, filter types.EmployeeFilter) (Export, error) {
	employees, err := s.employees.ListAll(ctx, filter)
	if err != nil {
		return Export{}, storeError(err, "employee not found")
	}

	data, err := renderEmployeesCSV(employees)
	if err != nil {
		return Export{}, apperror.Wrap(apperror.KindInternal, "failed to render export", err)
	}

	export := Export{
		Filename: fmt.Sprintf("employees-%s.csv", s.now().UTC().Format("20060102-150405")),
		Data:     data,
	}
	if s.archive == nil {
		return export, nil
	}

	id := uuid.NewString()
	if err := s.archive.Put(ctx, exportKey(id), bytes.NewReader(data), int64(len(data)), exportContentType); err != nil {
		log.Printf("failed to archive employee export %s: %v", id, err)
		return export, nil
	}
	export.ID = id
	return export, nil
}

// Archived opens a previously archived export.
func (s *ExportService) Archived(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.Validation("invalid export id")
	}
	if s.archive == nil {
		return nil, apperror.NotFound("export archive is not configured")
	}
	rc, err := s.archive.Get(ctx, exportKey(id))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, apperror.Wrap(apperror.KindNotFound, "export not found", err)
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to open export", err)
	}
	return rc, nil
}

func exportKey(id string) string {
	return exportKeyPrefix + id + ".csv"
}

func renderEmployeesCSV(employees []types.Employee) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, e := range employees {
		record := []string{
			e.EmployeeCode,
			e.FirstName,
			e.LastName,
			e.Email,
			e.Phone,
			e.DepartmentName,
			e.Designation,
			e.HireDate.Format(time.DateOnly),
			e.Salary.StringFixed(2),
			string(e.Status),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
