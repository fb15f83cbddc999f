package models

import (
	"time"

	"github.com/google/uuid"
)

type QuotaRecord struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	APICalls  int       `db:"api_calls" json:"api_calls"`
	LastReset time.Time `db:"last_reset" json:"last_reset"`
}

// QuotaResult reports the outcome of a single decrement.
// Charged is false when the record was already at zero.
// Defaulted is true when the record was missing and created on the fly.
type QuotaResult struct {
	Remaining int
	Charged   bool
	Defaulted bool
}
