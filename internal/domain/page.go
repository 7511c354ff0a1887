package domain

import "time"

// Page is the persisted descriptor of a source or target page.
type Page struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	// CheckInterval is in seconds.
	CheckInterval int64 `json:"checkInterval"`
}

func (p Page) Interval() time.Duration {
	return time.Duration(p.CheckInterval) * time.Second
}

// Mapping is one configured source -> target relay edge.
type Mapping struct {
	SourcePageID int64
	TargetPageID int64
}
