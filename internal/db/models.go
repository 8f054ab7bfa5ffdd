package db

import (
	"database/sql"
	"time"
)

// Charge is a BR Code issued by the portal.
type Charge struct {
	ID          string
	Reference   string
	Amount      string
	Description sql.NullString
	Code        string
	CreatedAt   time.Time
}

type Log struct {
	ID        int64
	Subsystem string
	Level     string
	Message   string
	Metadata  sql.NullString
	CreatedAt time.Time
}
