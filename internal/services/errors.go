package services

import (
	"errors"

	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/store"
)

var errPasswordTooLong = apperror.Validation("password must be at most 72 bytes")

// storeError maps a repository error onto the application taxonomy.
// Errors that already carry a kind pass through unchanged.
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperror.Wrap(apperror.KindNotFound, notFound, err)
	case errors.Is(err, store.ErrConflict):
		return apperror.Wrap(apperror.KindConflict, conflictMessage(store.Constraint(err)), err)
	case errors.Is(err, store.ErrReferenced):
		return apperror.Wrap(apperror.KindConflict, "record is referenced by other records", err)
	case errors.Is(err, store.ErrTooLong):
		return apperror.Wrap(apperror.KindValidation, "value is too long", err)
	default:
		return apperror.Wrap(apperror.KindInternal, "internal error", err)
	}
}

func conflictMessage(constraint string) string {
	switch constraint {
	case "users_username_key":
		return "username already exists"
	case "users_email_key":
		return "email already exists"
	case "employees_email_key":
		return "employee email already exists"
	case "employees_employee_code_key":
		return "employee code already exists"
	case "employees_user_id_key":
		return "user is already linked to an employee"
	case "departments_name_key":
		return "department name already exists"
	case "departments_code_key":
		return "department code already exists"
	default:
		return "record already exists"
	}
}
