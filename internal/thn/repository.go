package thn

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

var ErrNotFound = errors.New("truck hiring note not found")

// Repository defines data access for truck hiring notes.
type Repository interface {
	Get(ctx context.Context, id int64) (*TruckHiringNote, error)
	List(ctx context.Context, req ListTHNRequest) ([]TruckHiringNote, int, error)
	ListAll(ctx context.Context) ([]TruckHiringNote, error)
	Create(ctx context.Context, note TruckHiringNote) (int64, error)
	Update(ctx context.Context, note TruckHiringNote) error
	// UpdateComputedFields rewrites only the derived aggregates on the
	// reconciliation path.
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

const thnColumns = `id, number, date, truck_number, owner_name, owner_contact, from_location, to_location, freight_rate, additional_charges, advance_amount, paid_amount, balance_amount, status, notes, created_at, updated_at`

func scanTHN(row pgx.Row) (*TruckHiringNote, error) {
	var t TruckHiringNote
	err := row.Scan(
		&t.ID, &t.Number, &t.Date, &t.TruckNumber, &t.OwnerName, &t.OwnerContact,
		&t.FromLocation, &t.ToLocation, &t.FreightRate, &t.AdditionalCharges,
		&t.AdvanceAmount, &t.PaidAmount, &t.BalanceAmount, &t.Status,
		&t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func collectTHNs(rows pgx.Rows) ([]TruckHiringNote, error) {
	defer rows.Close()
	var out []TruckHiringNote
	for rows.Next() {
		var t TruckHiringNote
		if err := rows.Scan(
			&t.ID, &t.Number, &t.Date, &t.TruckNumber, &t.OwnerName, &t.OwnerContact,
			&t.FromLocation, &t.ToLocation, &t.FreightRate, &t.AdditionalCharges,
			&t.AdvanceAmount, &t.PaidAmount, &t.BalanceAmount, &t.Status,
			&t.Notes, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*TruckHiringNote, error) {
	return scanTHN(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM truck_hiring_notes WHERE id = $1`, thnColumns), id))
}

func (r *repository) List(ctx context.Context, req ListTHNRequest) ([]TruckHiringNote, int, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.TruckNumber != nil {
		conditions = append(conditions, fmt.Sprintf("truck_number = $%d", argPos))
		args = append(args, *req.TruckNumber)
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

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM truck_hiring_notes WHERE %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM truck_hiring_notes WHERE %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`, thnColumns, where, argPos, argPos+1),
		append(args, limit, req.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collectTHNs(rows)
	return list, total, err
}

func (r *repository) ListAll(ctx context.Context) ([]TruckHiringNote, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM truck_hiring_notes ORDER BY date, id`, thnColumns))
	if err != nil {
		return nil, err
	}
	return collectTHNs(rows)
}

func (r *repository) Create(ctx context.Context, t TruckHiringNote) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO truck_hiring_notes (number, date, truck_number, owner_name, owner_contact, from_location, to_location, freight_rate, additional_charges, advance_amount, paid_amount, balance_amount, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW()) RETURNING id`,
		t.Number, t.Date, t.TruckNumber, t.OwnerName, t.OwnerContact, t.FromLocation, t.ToLocation,
		t.FreightRate, t.AdditionalCharges, t.AdvanceAmount, t.PaidAmount, t.BalanceAmount, t.Status, t.Notes,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, t TruckHiringNote) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE truck_hiring_notes SET date = $2, truck_number = $3, owner_name = $4, owner_contact = $5, from_location = $6, to_location = $7, freight_rate = $8, additional_charges = $9, advance_amount = $10, notes = $11, updated_at = NOW() WHERE id = $1`,
		t.ID, t.Date, t.TruckNumber, t.OwnerName, t.OwnerContact, t.FromLocation, t.ToLocation,
		t.FreightRate, t.AdditionalCharges, t.AdvanceAmount, t.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateComputedFields(ctx context.Context, id int64, paid, balance float64, status shared.SettlementStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE truck_hiring_notes SET paid_amount = $2, balance_amount = $3, status = $4, updated_at = NOW() WHERE id = $1`,
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM truck_hiring_notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
