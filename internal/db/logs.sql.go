package db

import (
	"context"
	"database/sql"
	"time"
)

const createLog = `
INSERT INTO logs (subsystem, level, message, metadata, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, subsystem, level, message, metadata, created_at
`

type CreateLogParams struct {
	Subsystem string
	Level     string
	Message   string
	Metadata  sql.NullString
}

func (q *Queries) CreateLog(ctx context.Context, arg CreateLogParams) (Log, error) {
	row := q.db.QueryRowContext(ctx, createLog,
		arg.Subsystem,
		arg.Level,
		arg.Message,
		arg.Metadata,
		time.Now().UTC(),
	)
	var i Log
	err := row.Scan(
		&i.ID,
		&i.Subsystem,
		&i.Level,
		&i.Message,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const listLogs = `
SELECT id, subsystem, level, message, metadata, created_at
FROM logs
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListLogs(ctx context.Context, limit int64) ([]Log, error) {
	rows, err := q.db.QueryContext(ctx, listLogs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Log{}
	for rows.Next() {
		var i Log
		if err := rows.Scan(
			&i.ID,
			&i.Subsystem,
			&i.Level,
			&i.Message,
			&i.Metadata,
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

const listLogsFiltered = `
SELECT id, subsystem, level, message, metadata, created_at
FROM logs
WHERE (? = '' OR subsystem = ?)
  AND (? = '' OR level = ?)
ORDER BY id DESC
LIMIT ?
`

type ListLogsFilteredParams struct {
	Subsystem string
	Level     string
	Limit     int64
}

// ListLogsFiltered is ListLogs with optional subsystem and level filters; an
// empty filter matches everything.
func (q *Queries) ListLogsFiltered(ctx context.Context, arg ListLogsFilteredParams) ([]Log, error) {
	rows, err := q.db.QueryContext(ctx, listLogsFiltered,
		arg.Subsystem,
		arg.Subsystem,
		arg.Level,
		arg.Level,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Log{}
	for rows.Next() {
		var i Log
		if err := rows.Scan(
			&i.ID,
			&i.Subsystem,
			&i.Level,
			&i.Message,
			&i.Metadata,
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
