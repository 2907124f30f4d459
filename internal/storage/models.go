package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert flag values recorded in the history file. Bootstrap rows carry an
// empty flag because no detection ran.
const (
	FlagAlert   = "alert"
	FlagNoAlert = "no_alert"
)

// HistoryRecord is one immutable row of the append-only run log.
type HistoryRecord struct {
	Time  time.Time
	Price decimal.Decimal
	// Return and Z are nil on the bootstrap run.
	Return *float64
	Z      *float64
	Alert  string
}
