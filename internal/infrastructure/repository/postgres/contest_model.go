package postgres

import "time"

type contestUpsertModel struct {
	Platform        string     `db:"platform"`
	Name            string     `db:"name"`
	URL             string     `db:"url"`
	StartTime       time.Time  `db:"start_time"`
	EndTime         *time.Time `db:"end_time"`
	DurationSeconds int64      `db:"duration_seconds"`
	RelativeTime    *string    `db:"relative_time"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type contestTableModel struct {
	ID              int64      `db:"id"`
	Platform        string     `db:"platform"`
	Name            string     `db:"name"`
	URL             string     `db:"url"`
	StartTime       time.Time  `db:"start_time"`
	EndTime         *time.Time `db:"end_time"`
	DurationSeconds int64      `db:"duration_seconds"`
	RelativeTime    *string    `db:"relative_time"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}
