package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

// DepartmentRepository defines persistence operations for departments.
type DepartmentRepository interface {
	ListActive(ctx context.Context) ([]types.Department, error)
	Get(ctx context.Context, id int) (types.Department, error)
	GetActiveDetail(ctx context.Context, id int) (types.DepartmentDetail, error)
	Create(ctx context.Context, department types.Department) (types.Department, error)
	Update(ctx context.Context, department types.Department) (types.Department, error)
	Delete(ctx context.Context, id int) error
	Statistics(ctx context.Context) ([]types.DepartmentStatistics, error)
}

// DepartmentService encapsulates department use-cases.
type DepartmentService struct {
	repo DepartmentRepository
}

func NewDepartmentService(repo DepartmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

// DepartmentInput is the create form of a department.
type DepartmentInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ManagerID   *int   `json:"manager_id"`
}

// DepartmentPatch carries the fields of a partial update. Blank strings
// and nil pointers leave the stored value unchanged.
type DepartmentPatch struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ManagerID   *int   `json:"manager_id"`
	IsActive    *bool  `json:"is_active"`
}

func (s *DepartmentService) List(ctx context.Context) ([]types.Department, error) {
	departments, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, storeError(err, "department not found")
	}
	return departments, nil
}

// Get returns an active department with its Active headcount.
func (s *DepartmentService) Get(ctx context.Context, id int) (types.DepartmentDetail, error) {
	detail, err := s.repo.GetActiveDetail(ctx, id)
	if err != nil {
		return types.DepartmentDetail{}, storeError(err, departmentNotFound(id))
	}
	return detail, nil
}

func (s *DepartmentService) Create(ctx context.Context, in DepartmentInput) (types.Department, error) {
	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.Code)
	if name == "" || code == "" {
		return types.Department{}, apperror.Validation("department name and code are required")
	}

	department, err := s.repo.Create(ctx, types.Department{
		Name:        name,
		Code:        code,
		Description: strings.TrimSpace(in.Description),
		ManagerID:   in.ManagerID,
		IsActive:    true,
	})
	if err != nil {
		return types.Department{}, storeError(err, "department not found")
	}
	return department, nil
}

func (s *DepartmentService) Update(ctx context.Context, id int, patch DepartmentPatch) (types.Department, error) {
	department, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Department{}, storeError(err, departmentNotFound(id))
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		department.Name = name
	}
	if code := strings.TrimSpace(patch.Code); code != "" {
		department.Code = code
	}
	if description := strings.TrimSpace(patch.Description); description != "" {
		department.Description = description
	}
	if patch.ManagerID != nil {
		department.ManagerID = patch.ManagerID
	}
	if patch.IsActive != nil {
		department.IsActive = *patch.IsActive
	}

	department, err = s.repo.Update(ctx, department)
	if err != nil {
		return types.Department{}, storeError(err, departmentNotFound(id))
	}
	return department, nil
}

// Delete removes a department that no employee row references.
func (s *DepartmentService) Delete(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, store.ErrReferenced) {
		return apperror.Wrap(apperror.KindConflict, "department has employees and cannot be deleted", err)
	}
	return storeError(err, departmentNotFound(id))
}

func (s *DepartmentService) Statistics(ctx context.Context) ([]types.DepartmentStatistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, storeError(err, "department not found")
	}
	return stats, nil
}

func departmentNotFound(id int) string {
	return fmt.Sprintf("department with id %d not found", id)
}
