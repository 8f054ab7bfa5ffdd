package db

import (
	"context"
	"database/sql"
	"time"
)

const createCharge = `
INSERT INTO pix_charges (id, reference, amount, description, code, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, reference, amount, description, code, created_at
`

type CreateChargeParams struct {
	ID          string
	Reference   string
	Amount      string
	Description sql.NullString
	Code        string
	CreatedAt   time.Time
}

func (q *Queries) CreateCharge(ctx context.Context, arg CreateChargeParams) (Charge, error) {
	row := q.db.QueryRowContext(ctx, createCharge,
		arg.ID,
		arg.Reference,
		arg.Amount,
		arg.Description,
		arg.Code,
		arg.CreatedAt,
	)
	var i Charge
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Amount,
		&i.Description,
		&i.Code,
		&i.CreatedAt,
	)
	return i, err
}

const getCharge = `
SELECT id, reference, amount, description, code, created_at
FROM pix_charges
WHERE id = ?
`

func (q *Queries) GetCharge(ctx context.Context, id string) (Charge, error) {
	row := q.db.QueryRowContext(ctx, getCharge, id)
	var i Charge
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Amount,
		&i.Description,
		&i.Code,
		&i.CreatedAt,
	)
	return i, err
}

const getChargeByReference = `
SELECT id, reference, amount, description, code, created_at
FROM pix_charges
WHERE reference = ?
ORDER BY created_at DESC
LIMIT 1
`

func (q *Queries) GetChargeByReference(ctx context.Context, reference string) (Charge, error) {
	row := q.db.QueryRowContext(ctx, getChargeByReference, reference)
	var i Charge
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Amount,
		&i.Description,
		&i.Code,
		&i.CreatedAt,
	)
	return i, err
}

const listCharges = `
SELECT id, reference, amount, description, code, created_at
FROM pix_charges
ORDER BY created_at DESC, id
LIMIT ?
`

func (q *Queries) ListCharges(ctx context.Context, limit int64) ([]Charge, error) {
	rows, err := q.db.QueryContext(ctx, listCharges, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Charge{}
	for rows.Next() {
		var i Charge
		if err := rows.Scan(
			&i.ID,
			&i.Reference,
			&i.Amount,
			&i.Description,
			&i.Code,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
