package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"notes-server/internal/domain"
	"notes-server/internal/middleware"
	"notes-server/internal/service"
	"notes-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
	log      *zap.Logger
}

func NewNoteHandler(service *service.NoteService, log *zap.Logger) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidBody, detailInvalidBody)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	note, err := h.service.Create(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	notes, err := h.service.List(r.Context(), middleware.GetUserID(r), page, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.GetByID(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidBody, detailInvalidBody)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	note, err := h.service.Update(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	response.Success(w, domain.MessageResponse{Message: "Note deleted successfully"})
}

// parsePage reads skip and limit, falling back to the defaults when absent.
func parsePage(r *http.Request) (domain.Page, error) {
	page := domain.Page{Offset: 0, Limit: domain.DefaultPageLimit}
	query := r.URL.Query()

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return page, domain.NewValidationError("skip", "must be an integer")
		}
		page.Offset = skip
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return page, domain.NewValidationError("limit", "must be an integer")
		}
		page.Limit = limit
	}

	return page, service.ValidatePage(page)
}
