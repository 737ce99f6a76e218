package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightbox-tms/freightbox/internal/platform/db"
	"github.com/freightbox-tms/freightbox/internal/shared"
)

var ErrNotFound = errors.New("invoice not found")

// Repository defines data access for invoices.
type Repository interface {
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	ListAll(ctx context.Context) ([]Invoice, error)
	Create(ctx context.Context, invoice Invoice) (int64, error)
	// UpdateComputedFields rewrites only the derived aggregates. It runs on
	// the reconciliation path and must not be subject to the validation
	// applied to user-driven writes.
	UpdateComputedFields(ctx context.Context, id int64, paid, balance float64, status shared.SettlementStatus) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceColumns = `id, number, date, customer_id, lr_count, subtotal, gst_rate, is_interstate, cgst, sgst, igst, grand_total, paid_amount, balance_amount, status, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Date, &inv.CustomerID, &inv.LRCount,
		&inv.Subtotal, &inv.GSTRate, &inv.IsInterstate, &inv.CGST, &inv.SGST, &inv.IGST,
		&inv.GrandTotal, &inv.PaidAmount, &inv.BalanceAmount, &inv.Status,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.Date, &inv.CustomerID, &inv.LRCount,
			&inv.Subtotal, &inv.GSTRate, &inv.IsInterstate, &inv.CGST, &inv.SGST, &inv.IGST,
			&inv.GrandTotal, &inv.PaidAmount, &inv.BalanceAmount, &inv.Status,
			&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1`, invoiceColumns), id))
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argPos))
		args = append(args, *req.StartDate)
		argPos++
	}
	if req.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argPos))
		args = append(args, *req.EndDate)
		argPos++
	}

	where := conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	// Count and page inside one read-only tx so the total matches the rows.
	var total int
	var list []Invoice
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM invoices WHERE %s", where), args...).Scan(&total); err != nil {
			return err
		}
		rows, err := tx.Query(ctx,
			fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`, invoiceColumns, where, argPos, argPos+1),
			append(args, limit, req.Offset)...)
		if err != nil {
			return err
		}
		list, err = collectInvoices(rows)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM invoices ORDER BY date, id`, invoiceColumns))
	if err != nil {
		return nil, err
	}
	return collectInvoices(rows)
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (number, date, customer_id, lr_count, subtotal, gst_rate, is_interstate, cgst, sgst, igst, grand_total, paid_amount, balance_amount, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW()) RETURNING id`,
		inv.Number, inv.Date, inv.CustomerID, inv.LRCount, inv.Subtotal, inv.GSTRate, inv.IsInterstate,
		inv.CGST, inv.SGST, inv.IGST, inv.GrandTotal, inv.PaidAmount, inv.BalanceAmount, inv.Status, inv.Notes,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateComputedFields(ctx context.Context, id int64, paid, balance float64, status shared.SettlementStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET paid_amount = $2, balance_amount = $3, status = $4, updated_at = NOW() WHERE id = $1`,
		id, paid, balance, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
