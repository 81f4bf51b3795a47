package handler

import (
	"encoding/json"
	"net/http"

	"notes-server/internal/domain"
	"notes-server/internal/middleware"
	"notes-server/internal/service"
	"notes-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   newValidator(),
		log:         log,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidBody, detailInvalidBody)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	authResp, err := h.authService.IssueToken(user)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID))
	response.Created(w, authResp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidBody, detailInvalidBody)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	authResp, err := h.authService.IssueToken(user)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	response.Success(w, authResp)
}

// Me returns the caller resolved by the auth middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		response.Unauthorized(w, response.CodeUnauthorized, detailUnauthorized)
		return
	}

	response.Success(w, user.Public())
}
