package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freightbox-tms/freightbox/internal/invoices"
	"github.com/freightbox-tms/freightbox/internal/ledger"
	"github.com/freightbox-tms/freightbox/internal/lr"
	"github.com/freightbox-tms/freightbox/internal/masterdata/customers"
	"github.com/freightbox-tms/freightbox/internal/platform/httpx"
	"github.com/freightbox-tms/freightbox/internal/thn"
)

// Sources are the reads the report endpoints need. Pulled as interfaces so
// tests can feed canned documents without a database.
type (
	ReceiptSource interface {
		Get(ctx context.Context, id int64) (*lr.LorryReceipt, error)
		ListByInvoice(ctx context.Context, invoiceID int64) ([]lr.LorryReceipt, error)
	}
	CustomerSource interface {
		Get(ctx context.Context, id int64) (*customers.Customer, error)
	}
	InvoiceSource interface {
		Get(ctx context.Context, id int64) (*invoices.Invoice, error)
	}
	THNSource interface {
		Get(ctx context.Context, id int64) (*thn.TruckHiringNote, error)
	}
	LedgerSource interface {
		ClientLedger(ctx context.Context, customerID int64, f ledger.Filters) (*ledger.ClientLedger, error)
	}
)

// Handler renders printable documents through Gotenberg.
type Handler struct {
	logger   *slog.Logger
	client   *Client
	receipts ReceiptSource
	custs    CustomerSource
	invs     InvoiceSource
	notes    THNSource
	ledgers  LedgerSource
}

func NewHandler(logger *slog.Logger, client *Client, receipts ReceiptSource, custs CustomerSource, invs InvoiceSource, notes THNSource, ledgers LedgerSource) *Handler {
	return &Handler{
		logger:   logger,
		client:   client,
		receipts: receipts,
		custs:    custs,
		invs:     invs,
		notes:    notes,
		ledgers:  ledgers,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/ping", h.ping)
	r.Get("/reports/lorry-receipts/{id}/pdf", h.lorryReceiptPDF)
	r.Get("/reports/invoices/{id}/pdf", h.invoicePDF)
	r.Get("/reports/truck-hiring-notes/{id}/pdf", h.thnPDF)
	r.Get("/reports/ledgers/clients/{customerID}/pdf", h.clientLedgerPDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf renderer unreachable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) lorryReceiptPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lorry receipt id")
		return
	}
	receipt, err := h.receipts.Get(r.Context(), id)
	if err != nil {
		h.notFoundOrFail(w, "lorry receipt", lr.ErrNotFound, err)
		return
	}
	customer, err := h.custs.Get(r.Context(), receipt.CustomerID)
	if err != nil && !errors.Is(err, customers.ErrNotFound) {
		h.fail(w, "load customer", err)
		return
	}
	html, err := RenderLorryReceiptHTML(receipt, customer)
	if err != nil {
		h.fail(w, "render lorry receipt", err)
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("%s.pdf", receipt.Number))
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	invoice, err := h.invs.Get(r.Context(), id)
	if err != nil {
		h.notFoundOrFail(w, "invoice", invoices.ErrNotFound, err)
		return
	}
	receipts, err := h.receipts.ListByInvoice(r.Context(), id)
	if err != nil {
		h.fail(w, "load invoice receipts", err)
		return
	}
	customer, err := h.custs.Get(r.Context(), invoice.CustomerID)
	if err != nil && !errors.Is(err, customers.ErrNotFound) {
		h.fail(w, "load customer", err)
		return
	}
	html, err := RenderInvoiceHTML(invoice, receipts, customer)
	if err != nil {
		h.fail(w, "render invoice", err)
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("%s.pdf", invoice.Number))
}

func (h *Handler) thnPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid truck hiring note id")
		return
	}
	note, err := h.notes.Get(r.Context(), id)
	if err != nil {
		h.notFoundOrFail(w, "truck hiring note", thn.ErrNotFound, err)
		return
	}
	html, err := RenderTHNHTML(note)
	if err != nil {
		h.fail(w, "render truck hiring note", err)
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("%s.pdf", note.Number))
}

func (h *Handler) clientLedgerPDF(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	statement, err := h.ledgers.ClientLedger(r.Context(), customerID, ledger.Filters{})
	if err != nil {
		h.notFoundOrFail(w, "customer", ledger.ErrCustomerNotFound, err)
		return
	}
	html, err := RenderClientLedgerHTML(statement)
	if err != nil {
		h.fail(w, "render client ledger", err)
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("ledger-%d.pdf", customerID))
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, html, filename string) {
	pdf, err := h.client.RenderHTML(r.Context(), filename, html)
	if err != nil {
		h.logger.Error("pdf render failed", slog.String("file", filename), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "pdf renderer failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) notFoundOrFail(w http.ResponseWriter, what string, notFound, err error) {
	if errors.Is(err, notFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}
	h.fail(w, "load "+what, err)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
