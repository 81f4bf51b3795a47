package response

import (
	"encoding/json"
	"net/http"
)

const (
	CodeInvalidBody        = "invalid_body"
	CodeInvalidID          = "invalid_id"
	CodeValidation         = "validation_error"
	CodeEmailTaken         = "email_taken"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeVersionConflict    = "version_conflict"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

type ErrorBody struct {
	Detail    string            `json:"detail"`
	ErrorCode string            `json:"error_code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func Error(w http.ResponseWriter, statusCode int, code, detail string) {
	JSON(w, statusCode, ErrorBody{
		Detail:    detail,
		ErrorCode: code,
	})
}

func BadRequest(w http.ResponseWriter, code, detail string) {
	Error(w, http.StatusBadRequest, code, detail)
}

func ValidationFailed(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Detail:    "Validation error",
		ErrorCode: CodeValidation,
		Fields:    fields,
	})
}

func Unauthorized(w http.ResponseWriter, code, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	Error(w, http.StatusUnauthorized, code, detail)
}

func NotFound(w http.ResponseWriter, detail string) {
	Error(w, http.StatusNotFound, CodeNotFound, detail)
}

func Conflict(w http.ResponseWriter, code, detail string) {
	Error(w, http.StatusConflict, code, detail)
}

func TooManyRequests(w http.ResponseWriter, detail string) {
	Error(w, http.StatusTooManyRequests, CodeRateLimited, detail)
}

func InternalError(w http.ResponseWriter, detail string) {
	Error(w, http.StatusInternalServerError, CodeInternal, detail)
}
