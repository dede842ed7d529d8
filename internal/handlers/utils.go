package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/auth"
)

type contextKey string

const contextClaimsKey contextKey = "claims"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries an informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Healthz reports that the process is serving requests.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func withClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, contextClaimsKey, claims)
}

func claimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(contextClaimsKey).(auth.Claims)
	return claims, ok
}

func userIDFromContext(ctx context.Context) (int, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return 0, errors.New("missing subject")
	}
	return claims.UserID()
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeAppError maps an error kind onto its HTTP status. Internal errors
// are logged and reported without detail.
func writeAppError(w http.ResponseWriter, err error) {
	switch apperror.GetKind(err) {
	case apperror.KindAuthentication:
		writeError(w, http.StatusUnauthorized, err.Error())
	case apperror.KindAuthorization:
		writeError(w, http.StatusForbidden, err.Error())
	case apperror.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case apperror.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperror.KindInvalidState, apperror.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	default:
		if cause := errors.Unwrap(err); cause != nil {
			log.Printf("internal error: %v: %v", err, cause)
		} else {
			log.Printf("internal error: %v", err)
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Validation("invalid request")
	}
	return nil
}

func parseID(r *http.Request, param, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		return 0, apperror.Validation("invalid " + name + " id")
	}
	return id, nil
}

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// parsePagination reads pageNumber and pageSize; normalization happens in
// the services.
func parsePagination(r *http.Request) (pageNumber, pageSize int, err error) {
	if pageNumber, err = optionalInt(r, "pageNumber"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = optionalInt(r, "pageSize"); err != nil {
		return 0, 0, err
	}
	return pageNumber, pageSize, nil
}

func optionalInt(r *http.Request, key string) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("invalid " + key)
	}
	return value, nil
}

func optionalIntPtr(r *http.Request, key string) (*int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.Validation("invalid " + key)
	}
	return &value, nil
}

// optionalDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func optionalDate(r *http.Request, key string) (*time.Time, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Validation("invalid " + key)
}

func optionalDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation("invalid " + key)
	}
	return &value, nil
}

func boolOrDefault(r *http.Request, key string, def bool) (bool, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.Validation("invalid " + key)
	}
	return value, nil
}
