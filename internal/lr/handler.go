package lr

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
	r.Get("/lorry-receipts", h.List)
	r.Get("/lorry-receipts/{id}", h.Show)
	r.Post("/lorry-receipts", h.Create)
	r.Patch("/lorry-receipts/{id}", h.Update)
	r.Post("/lorry-receipts/{id}/deliver", h.Deliver)
	r.Delete("/lorry-receipts/{id}", h.Delete)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type listResponse struct {
	LorryReceipts []LorryReceipt    `json:"lorry_receipts"`
	Pagination    shared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var req ListLorryReceiptsRequest
	if v := r.URL.Query().Get("customer_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.CustomerID = &id
		}
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := Status(v)
		req.Status = &st
	}
	req.Uninvoiced = r.URL.Query().Get("uninvoiced") == "true"
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

	receipts, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list lorry receipts failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	page := 1
	if req.Limit > 0 {
		page = req.Offset/req.Limit + 1
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		LorryReceipts: receipts,
		Pagination:    shared.NewPagination(page, req.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lorry receipt id")
		return
	}
	receipt, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get lorry receipt failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLorryReceiptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	receipt, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondErr(w, "create lorry receipt failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lorry receipt id")
		return
	}
	var req UpdateLorryReceiptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	receipt, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, "update lorry receipt failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lorry receipt id")
		return
	}
	receipt, err := h.service.MarkDelivered(r.Context(), id)
	if err != nil {
		h.respondErr(w, "mark delivered failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lorry receipt id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete lorry receipt failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "lorry receipt not found")
	case errors.Is(err, ErrAlreadyInvoiced):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(msg, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
