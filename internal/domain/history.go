package domain

import (
	"sort"
	"time"
)

// HistoryEntry is an immutable record of one execution of a request.
type HistoryEntry struct {
	RequestID  string
	SentAt     time.Time
	ReceivedAt time.Time
	Request    RequestData
	Response   ResponseData
}

// Duration is the round-trip time of the execution.
func (e HistoryEntry) Duration() time.Duration {
	return e.ReceivedAt.Sub(e.SentAt)
}

// SortNewestFirst orders entries by SentAt descending, stable for ties.
func SortNewestFirst(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SentAt.After(entries[j].SentAt)
	})
}

// LatestResponse returns the response of the newest entry in a newest-first
// slice, or nil when there is no history.
func LatestResponse(entries []HistoryEntry) ResponseData {
	if len(entries) == 0 {
		return nil
	}
	return entries[0].Response
}
