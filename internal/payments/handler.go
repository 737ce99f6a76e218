package payments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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
	r.Get("/payments", h.List)
	r.Get("/payments/{id}", h.Show)
	r.Post("/payments", h.Create)
	r.Patch("/payments/{id}", h.Update)
	r.Delete("/payments/{id}", h.Delete)
}

type listResponse struct {
	Payments   []Payment         `json:"payments"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var req ListPaymentsRequest
	for param, target := range map[string]**int64{
		"customer_id":          &req.CustomerID,
		"invoice_id":           &req.InvoiceID,
		"truck_hiring_note_id": &req.TruckHiringNoteID,
	} {
		if v := r.URL.Query().Get(param); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				*target = &id
			}
		}
	}
	if v := r.URL.Query().Get("type"); v != "" {
		pt := Type(v)
		req.Type = &pt
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
		h.logger.Error("list payments failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	page := 1
	if req.Limit > 0 {
		page = req.Offset/req.Limit + 1
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Payments:   list,
		Pagination: shared.NewPagination(page, req.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment id")
		return
	}
	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get payment failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondErr(w, "create payment failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment id")
		return
	}
	var req UpdatePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, "update payment failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete payment failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "payment not found")
	case errors.Is(err, ErrDocRefRequired),
		errors.Is(err, ErrDocRefConflict),
		errors.Is(err, ErrCustomerUnresolvable):
		httpx.ValidationProblem(w, map[string]string{"reference": err.Error()})
	case errors.Is(err, ErrTDSRateRequired),
		errors.Is(err, ErrTDSRateRange),
		errors.Is(err, ErrTDSAmountMismatch):
		httpx.ValidationProblem(w, map[string]string{"tds": err.Error()})
	default:
		h.logger.Error(msg, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
