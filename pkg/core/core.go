package core

import (
	"context"
	"time"
)

// AtlRecord is the persisted all-time-low state for the tracked asset.
// AllTimeLow never increases; it is rewritten only when a strictly lower
// price is observed.
type AtlRecord struct {
	AllTimeLow  float64   `json:"all_time_low"`
	LastChecked time.Time `json:"last_checked"`
}

// PriceSource returns the current price of the tracked asset in its
// quote currency.
type PriceSource interface {
	Current(ctx context.Context) (float64, error)
}

type Notifier interface {
	Notify(string)
}

type NotifierWithStart interface {
	Notifier
	Start()
}

// RecordStorage persists the single AtlRecord. Load reports whether a
// record exists yet.
type RecordStorage interface {
	Load() (AtlRecord, bool, error)
	Save(AtlRecord) error
	Close() error
}
