package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freightbox-tms/freightbox/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledgers/clients/{customerID}", h.Client)
	r.Get("/ledgers/company", h.Company)
}

func (h *Handler) Client(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	statement, err := h.service.ClientLedger(r.Context(), customerID, filtersFromQuery(r))
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "customer not found")
			return
		}
		h.logger.Error("client ledger failed", slog.Int64("customer_id", customerID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) Company(w http.ResponseWriter, r *http.Request) {
	statement, err := h.service.CompanyLedger(r.Context(), filtersFromQuery(r))
	if err != nil {
		h.logger.Error("company ledger failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func filtersFromQuery(r *http.Request) Filters {
	var f Filters
	q := r.URL.Query()
	if v := q.Get("start_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			f.StartDate = &d
		}
	}
	if v := q.Get("end_date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			f.EndDate = &d
		}
	}
	if v := q.Get("customer_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.CustomerID = &id
		}
	}
	if v := q.Get("voucher"); v != "" {
		voucher := Voucher(v)
		f.Voucher = &voucher
	}
	if v := q.Get("min_amount"); v != "" {
		if amount, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinAmount = &amount
		}
	}
	if v := q.Get("max_amount"); v != "" {
		if amount, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxAmount = &amount
		}
	}
	return f
}
