package history

import "time"

// Run is one full pass over the working set, from first Processing to final
// Done (or early abort when the subscriber disconnects).
type Run struct {
	ID         int64      `json:"id"`
	UUID       string     `json:"uuid"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Cats       int        `json:"cats"`
	Failures   int        `json:"failures"`
	Aborted    bool       `json:"aborted"`
}

// Finished reports whether the run reached a terminal state.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Result is the persisted outcome for one image within a run.
type Result struct {
	RunID          int64  `json:"run_id"`
	ItemID         int    `json:"item_id"`
	Filename       string `json:"filename"`
	HasCat         bool   `json:"has_cat"`
	Failure        string `json:"failure,omitempty"`
	DurationMillis int64  `json:"duration_ms"`
}
