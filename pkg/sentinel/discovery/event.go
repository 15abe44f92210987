package discovery

import (
	"context"
	"fmt"
	"time"
)

// Event is the immutable record of one promotion.
type Event struct {
	Topic     string    // display name added to the taxonomy
	Key       string    // normalized candidate key
	Hits      int       // count at time of promotion
	FirstSeen time.Time // first sighting of the candidate
	Promoted  time.Time
	Samples   []string // contributing review snippets
	RecordIDs []string // ids of retroactively updated records
}

// EventSink receives promotion events, typically persisting them so
// discovery accumulates across runs. Append must either fully record
// the event or fail without partial effect.
type EventSink interface {
	Append(ctx context.Context, e Event) error
}

// PromotionError reports a promote() step that failed after mutations
// had begun. By the time it is returned the taxonomy and ledger have
// been restored to their pre-promotion state; the candidate keeps its
// hit count so the next observation retries.
type PromotionError struct {
	Topic string
	Step  string
	Err   error
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("promote %q: %s: %v", e.Topic, e.Step, e.Err)
}

func (e *PromotionError) Unwrap() error { return e.Err }
