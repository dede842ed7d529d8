package services

import (
	"context"
	"testing"

	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/store"
	"github.com/staffdesk/apiserver/types"
)

type fakeDepartmentRepo struct {
	departments map[int]types.Department
	referenced  map[int]bool
	nextID      int
}

func newFakeDepartmentRepo(departments ...types.Department) *fakeDepartmentRepo {
	repo := &fakeDepartmentRepo{departments: map[int]types.Department{}, referenced: map[int]bool{}, nextID: 1}
	for _, d := range departments {
		repo.departments[d.ID] = d
		if d.ID >= repo.nextID {
			repo.nextID = d.ID + 1
		}
	}
	return repo
}

func (r *fakeDepartmentRepo) ListActive(ctx context.Context) ([]types.Department, error) {
	out := make([]types.Department, 0)
	for id := 1; id < r.nextID; id++ {
		if d, ok := r.departments[id]; ok && d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDepartmentRepo) Get(ctx context.Context, id int) (types.Department, error) {
	d, ok := r.departments[id]
	if !ok {
		return types.Department{}, store.ErrNotFound
	}
	return d, nil
}

func (r *fakeDepartmentRepo) GetActiveDetail(ctx context.Context, id int) (types.DepartmentDetail, error) {
	d, ok := r.departments[id]
	if !ok || !d.IsActive {
		return types.DepartmentDetail{}, store.ErrNotFound
	}
	return types.DepartmentDetail{Department: d}, nil
}

func (r *fakeDepartmentRepo) Create(ctx context.Context, department types.Department) (types.Department, error) {
	for _, d := range r.departments {
		if d.Code == department.Code {
			return types.Department{}, store.ErrConflict
		}
	}
	department.ID = r.nextID
	r.nextID++
	r.departments[department.ID] = department
	return department, nil
}

func (r *fakeDepartmentRepo) Update(ctx context.Context, department types.Department) (types.Department, error) {
	if _, ok := r.departments[department.ID]; !ok {
		return types.Department{}, store.ErrNotFound
	}
	r.departments[department.ID] = department
	return department, nil
}

func (r *fakeDepartmentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.departments[id]; !ok {
		return store.ErrNotFound
	}
	if r.referenced[id] {
		return store.ErrReferenced
	}
	delete(r.departments, id)
	return nil
}

func (r *fakeDepartmentRepo) Statistics(ctx context.Context) ([]types.DepartmentStatistics, error) {
	return []types.DepartmentStatistics{}, nil
}

func TestCreateDepartment(t *testing.T) {
	repo := newFakeDepartmentRepo(types.Department{ID: 1, Name: "Engineering", Code: "ENG", IsActive: true})
	svc := NewDepartmentService(repo)

	created, err := svc.Create(context.Background(), DepartmentInput{Name: " Finance ", Code: "FIN"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Finance" || !created.IsActive {
		t.Fatalf("unexpected department: %+v", created)
	}

	if _, err := svc.Create(context.Background(), DepartmentInput{Name: "Eng 2", Code: "ENG"}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.Create(context.Background(), DepartmentInput{Name: "No code"}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestUpdateDepartmentIsPartial(t *testing.T) {
	repo := newFakeDepartmentRepo(types.Department{ID: 1, Name: "Engineering", Code: "ENG", Description: "builds", IsActive: true})
	svc := NewDepartmentService(repo)

	inactive := false
	updated, err := svc.Update(context.Background(), 1, DepartmentPatch{Code: "ENGR", IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Engineering" || updated.Code != "ENGR" || updated.Description != "builds" || updated.IsActive {
		t.Fatalf("unexpected department: %+v", updated)
	}

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("inactive department must not be listed, got %d (%v)", len(list), err)
	}
	if _, err := svc.Get(context.Background(), 1); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("inactive department detail must be not found, got %v", err)
	}
	if _, err := svc.Update(context.Background(), 7, DepartmentPatch{}); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteDepartment(t *testing.T) {
	repo := newFakeDepartmentRepo(
		types.Department{ID: 1, Name: "Engineering", Code: "ENG", IsActive: true},
		types.Department{ID: 2, Name: "Empty", Code: "EMP", IsActive: true},
	)
	repo.referenced[1] = true
	svc := NewDepartmentService(repo)

	err := svc.Delete(context.Background(), 1)
	if !apperror.Is(err, apperror.KindConflict) || err.Error() != "department has employees and cannot be deleted" {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), 2); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
