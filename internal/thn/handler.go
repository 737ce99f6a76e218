package thn

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freightbox-tms/freightbox/internal/platform/httpx"
	"github.com/freightbox-tms/freightbox/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/truck-hiring-notes", h.List)
	r.Get("/truck-hiring-notes/{id}", h.Show)
	r.Post("/truck-hiring-notes", h.Create)
	r.Patch("/truck-hiring-notes/{id}", h.Update)
	r.Delete("/truck-hiring-notes/{id}", h.Delete)
}

type listResponse struct {
	TruckHiringNotes []TruckHiringNote `json:"truck_hiring_notes"`
	Pagination       shared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var req ListTHNRequest
	if v := r.URL.Query().Get("status"); v != "" {
		st := shared.SettlementStatus(v)
		req.Status = &st
	}
	if v := r.URL.Query().Get("truck_number"); v != "" {
		req.TruckNumber = &v
	}
	if v := r.URL.Query().Get("start_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			req.StartDate = &d
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			req.EndDate = &d
		}
	}
	req.Limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list truck hiring notes failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	page := 1
	if req.Limit > 0 {
		page = req.Offset/req.Limit + 1
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		TruckHiringNotes: list,
		Pagination:       shared.NewPagination(page, req.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid truck hiring note id")
		return
	}
	note, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get truck hiring note failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, note)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTHNRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	note, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondErr(w, "create truck hiring note failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, note)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid truck hiring note id")
		return
	}
	var req UpdateTHNRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	note, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, "update truck hiring note failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, note)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid truck hiring note id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete truck hiring note failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "truck hiring note not found")
	case errors.Is(err, ErrHasPayments):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(msg, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
