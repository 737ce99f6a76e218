package lr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightbox-tms/freightbox/internal/platform/db"
)

var (
	ErrNotFound        = errors.New("lorry receipt not found")
	ErrAlreadyInvoiced = errors.New("lorry receipt already invoiced")
)

// Repository defines data access for lorry receipts.
type Repository interface {
	Get(ctx context.Context, id int64) (*LorryReceipt, error)
	GetMany(ctx context.Context, ids []int64) ([]LorryReceipt, error)
	List(ctx context.Context, req ListLorryReceiptsRequest) ([]LorryReceipt, int, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]LorryReceipt, error)
	Create(ctx context.Context, receipt LorryReceipt) (int64, error)
	Update(ctx context.Context, receipt LorryReceipt) error
	MarkInvoiced(ctx context.Context, ids []int64, invoiceID int64) error
	ReleaseInvoice(ctx context.Context, invoiceID int64) error
	MarkDelivered(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const lrColumns = `id, number, date, customer_id, consignor_name, consignee_name, from_location, to_location, vehicle_number, packages, description, actual_weight, charged_weight, freight_amount, hamali, other_charges, total_amount, status, invoice_id, delivered_at, created_at, updated_at`

func scanReceipt(row pgx.Row) (*LorryReceipt, error) {
	var l LorryReceipt
	err := row.Scan(
		&l.ID, &l.Number, &l.Date, &l.CustomerID, &l.ConsignorName, &l.ConsigneeName,
		&l.FromLocation, &l.ToLocation, &l.VehicleNumber, &l.Packages, &l.Description,
		&l.ActualWeight, &l.ChargedWeight, &l.FreightAmount, &l.Hamali, &l.OtherCharges,
		&l.TotalAmount, &l.Status, &l.InvoiceID, &l.DeliveredAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func collectReceipts(rows pgx.Rows) ([]LorryReceipt, error) {
	defer rows.Close()
	var out []LorryReceipt
	for rows.Next() {
		var l LorryReceipt
		if err := rows.Scan(
			&l.ID, &l.Number, &l.Date, &l.CustomerID, &l.ConsignorName, &l.ConsigneeName,
			&l.FromLocation, &l.ToLocation, &l.VehicleNumber, &l.Packages, &l.Description,
			&l.ActualWeight, &l.ChargedWeight, &l.FreightAmount, &l.Hamali, &l.OtherCharges,
			&l.TotalAmount, &l.Status, &l.InvoiceID, &l.DeliveredAt, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*LorryReceipt, error) {
	return scanReceipt(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM lorry_receipts WHERE id = $1`, lrColumns), id))
}

func (r *repository) GetMany(ctx context.Context, ids []int64) ([]LorryReceipt, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM lorry_receipts WHERE id = ANY($1) ORDER BY date, id`, lrColumns), ids)
	if err != nil {
		return nil, err
	}
	return collectReceipts(rows)
}

func (r *repository) List(ctx context.Context, req ListLorryReceiptsRequest) ([]LorryReceipt, int, error) {
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
	if req.Uninvoiced {
		conditions = append(conditions, "invoice_id IS NULL")
	}

	where := conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM lorry_receipts WHERE %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM lorry_receipts WHERE %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`, lrColumns, where, argPos, argPos+1),
		append(args, limit, req.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	receipts, err := collectReceipts(rows)
	return receipts, total, err
}

func (r *repository) ListByInvoice(ctx context.Context, invoiceID int64) ([]LorryReceipt, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM lorry_receipts WHERE invoice_id = $1 ORDER BY date, id`, lrColumns), invoiceID)
	if err != nil {
		return nil, err
	}
	return collectReceipts(rows)
}

func (r *repository) Create(ctx context.Context, l LorryReceipt) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO lorry_receipts (number, date, customer_id, consignor_name, consignee_name, from_location, to_location, vehicle_number, packages, description, actual_weight, charged_weight, freight_amount, hamali, other_charges, total_amount, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW()) RETURNING id`,
		l.Number, l.Date, l.CustomerID, l.ConsignorName, l.ConsigneeName, l.FromLocation, l.ToLocation,
		l.VehicleNumber, l.Packages, l.Description, l.ActualWeight, l.ChargedWeight,
		l.FreightAmount, l.Hamali, l.OtherCharges, l.TotalAmount, l.Status,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, l LorryReceipt) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lorry_receipts SET date = $2, consignor_name = $3, consignee_name = $4, from_location = $5, to_location = $6, vehicle_number = $7, packages = $8, description = $9, actual_weight = $10, charged_weight = $11, freight_amount = $12, hamali = $13, other_charges = $14, total_amount = $15, updated_at = NOW()
WHERE id = $1`,
		l.ID, l.Date, l.ConsignorName, l.ConsigneeName, l.FromLocation, l.ToLocation, l.VehicleNumber,
		l.Packages, l.Description, l.ActualWeight, l.ChargedWeight, l.FreightAmount, l.Hamali,
		l.OtherCharges, l.TotalAmount,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkInvoiced(ctx context.Context, ids []int64, invoiceID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE lorry_receipts SET status = $1, invoice_id = $2, updated_at = NOW() WHERE id = ANY($3) AND invoice_id IS NULL`,
			StatusInvoiced, invoiceID, ids)
		if err != nil {
			return err
		}
		// A concurrent invoice may have claimed one of the receipts between
		// the service's validation read and this write; roll back if so.
		if tag.RowsAffected() != int64(len(ids)) {
			return ErrAlreadyInvoiced
		}
		return nil
	})
}

func (r *repository) ReleaseInvoice(ctx context.Context, invoiceID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lorry_receipts SET status = $1, invoice_id = NULL, updated_at = NOW() WHERE invoice_id = $2`,
		StatusCreated, invoiceID)
	return err
}

func (r *repository) MarkDelivered(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lorry_receipts SET status = $1, delivered_at = NOW(), updated_at = NOW() WHERE id = $2`,
		StatusDelivered, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lorry_receipts WHERE id = $1 AND invoice_id IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
