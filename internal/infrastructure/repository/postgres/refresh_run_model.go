package postgres

import "time"

type refreshRunUpsertModel struct {
	RunID        string     `db:"run_id"`
	Job          string     `db:"job"`
	Status       string     `db:"status"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	Records      int        `db:"records"`
	Failures     int        `db:"failures"`
	ErrorMessage *string    `db:"error_message"`
}
