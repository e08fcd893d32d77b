package store

import (
	"fmt"
	"time"
)

// Record is one pending row from the source view. It is read-only from this
// process's perspective; the only mutation is its eventual deletion by ID.
//
// Complete is false when any of the non-identifier columns was NULL in the
// view. Incomplete records are still relayed, but rendered from their raw
// representation instead of the labeled layout.
type Record struct {
	ID        int64
	Text      string
	Recipient string
	CreatedAt time.Time

	Complete bool
}

// String renders the row for logs and for the formatter's fallback path.
func (r Record) String() string {
	return fmt.Sprintf("id=%d text=%q recipient=%q created_at=%s",
		r.ID, r.Text, r.Recipient, r.CreatedAt.Format(time.RFC3339))
}
