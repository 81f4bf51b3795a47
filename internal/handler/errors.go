package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"notes-server/internal/domain"
	"notes-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	detailEmailTaken         = "Email already registered"
	detailInvalidCredentials = "Invalid email or password"
	detailUnauthorized       = "Could not validate credentials"
	detailNoteNotFound       = "Note not found"
	detailVersionConflict    = "Note was modified by another operation. Please refresh and try again."
	detailInvalidBody        = "Invalid request body"
	detailInvalidID          = "Invalid note ID format"
	detailInternal           = "Internal server error"
)

// writeError is the only place domain errors become HTTP statuses.
func writeError(w http.ResponseWriter, log *zap.Logger, r *http.Request, err error) {
	var (
		ve   *domain.ValidationError
		verr validator.ValidationErrors
	)

	switch {
	case errors.Is(err, domain.ErrInvalidID):
		response.BadRequest(w, response.CodeInvalidID, detailInvalidID)
	case errors.As(err, &ve):
		response.ValidationFailed(w, ve.Fields)
	case errors.As(err, &verr):
		response.ValidationFailed(w, validationFields(verr))
	case errors.Is(err, domain.ErrEmailTaken):
		response.BadRequest(w, response.CodeEmailTaken, detailEmailTaken)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, response.CodeInvalidCredentials, detailInvalidCredentials)
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrInactiveAccount):
		response.Unauthorized(w, response.CodeUnauthorized, detailUnauthorized)
	case errors.Is(err, domain.ErrNoteNotFound):
		response.NotFound(w, detailNoteNotFound)
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, domain.ErrWriteContention):
		response.Conflict(w, response.CodeVersionConflict, detailVersionConflict)
	default:
		log.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		response.InternalError(w, detailInternal)
	}
}

// validationFields keys validator failures by their JSON field name.
func validationFields(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = describeTag(fe)
	}
	return fields
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// newValidator reports failures under the json tag name instead of the Go field name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
