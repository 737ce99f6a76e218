package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("payment not found")

// Repository defines data access for payments.
type Repository interface {
	Get(ctx context.Context, id int64) (*Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error)
	ListAll(ctx context.Context) ([]Payment, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error)
	ListByTHN(ctx context.Context, thnID int64) ([]Payment, error)
	GetAdvanceForTHN(ctx context.Context, thnID int64) (*Payment, error)
	Create(ctx context.Context, payment Payment) (int64, error)
	Update(ctx context.Context, payment Payment) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `id, number, date, type, mode, amount, customer_id, invoice_id, truck_hiring_note_id, tds_applicable, tds_rate, tds_amount, tds_date, reference, notes, idempotency_key, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.Number, &p.Date, &p.Type, &p.Mode, &p.Amount,
		&p.CustomerID, &p.InvoiceID, &p.TruckHiringNoteID,
		&p.TDSApplicable, &p.TDSRate, &p.TDSAmount, &p.TDSDate,
		&p.Reference, &p.Notes, &p.IdempotencyKey, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]Payment, error) {
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.Number, &p.Date, &p.Type, &p.Mode, &p.Amount,
			&p.CustomerID, &p.InvoiceID, &p.TruckHiringNoteID,
			&p.TDSApplicable, &p.TDSRate, &p.TDSAmount, &p.TDSDate,
			&p.Reference, &p.Notes, &p.IdempotencyKey, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns), id))
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE idempotency_key = $1`, paymentColumns), key))
}

func (r *repository) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.InvoiceID != nil {
		conditions = append(conditions, fmt.Sprintf("invoice_id = $%d", argPos))
		args = append(args, *req.InvoiceID)
		argPos++
	}
	if req.TruckHiringNoteID != nil {
		conditions = append(conditions, fmt.Sprintf("truck_hiring_note_id = $%d", argPos))
		args = append(args, *req.TruckHiringNoteID)
		argPos++
	}
	if req.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *req.Type)
		argPos++
	}

	where := conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM payments WHERE %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`, paymentColumns, where, argPos, argPos+1),
		append(args, limit, req.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collectPayments(rows)
	return list, total, err
}

func (r *repository) ListAll(ctx context.Context) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM payments ORDER BY date, id`, paymentColumns))
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (r *repository) ListByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE invoice_id = $1 ORDER BY date, id`, paymentColumns), invoiceID)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (r *repository) ListByTHN(ctx context.Context, thnID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE truck_hiring_note_id = $1 ORDER BY date, id`, paymentColumns), thnID)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (r *repository) GetAdvanceForTHN(ctx context.Context, thnID int64) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE truck_hiring_note_id = $1 AND type = $2 AND reference LIKE 'THN-%%-ADVANCE'`, paymentColumns),
		thnID, TypeAdvance))
}

func (r *repository) Create(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (number, date, type, mode, amount, customer_id, invoice_id, truck_hiring_note_id, tds_applicable, tds_rate, tds_amount, tds_date, reference, notes, idempotency_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW()) RETURNING id`,
		p.Number, p.Date, p.Type, p.Mode, p.Amount, p.CustomerID, p.InvoiceID, p.TruckHiringNoteID,
		p.TDSApplicable, p.TDSRate, p.TDSAmount, p.TDSDate, p.Reference, p.Notes, p.IdempotencyKey,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, p Payment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET date = $2, mode = $3, amount = $4, tds_applicable = $5, tds_rate = $6, tds_amount = $7, tds_date = $8, reference = $9, notes = $10, updated_at = NOW()
WHERE id = $1`,
		p.ID, p.Date, p.Mode, p.Amount, p.TDSApplicable, p.TDSRate, p.TDSAmount, p.TDSDate, p.Reference, p.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
