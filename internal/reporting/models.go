package reporting

import "time"

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type ReconcileSummaryRequest struct {
	Range TimeRange `json:"range"`
}

// ReconcileSummary aggregates reconcile outcomes recorded in the audit log.
type ReconcileSummary struct {
	Range TimeRange `json:"range"`

	Total    int `json:"total"`
	Created  int `json:"created"`
	Found    int `json:"found"`
	Closed   int `json:"closed"`
	NotFound int `json:"not_found"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	InboundCreated  int `json:"inbound_created"`
	OutboundCreated int `json:"outbound_created"`

	DistinctPhones int `json:"distinct_phones"`

	// FailureRate is Failed / Total; zero when Total is zero.
	FailureRate float64 `json:"failure_rate"`

	// LastFailure is the most recent failure message in range, if any.
	LastFailure string `json:"last_failure,omitempty"`
}
