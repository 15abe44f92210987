// Package store defines persistence for the discovery log. Promotions
// recorded in one run seed the taxonomy of the next, making discovery
// cumulative.
package store

import (
	"context"

	"github.com/cognicore/sentinel/pkg/sentinel/discovery"
)

// Store persists promotion events. Append satisfies
// discovery.EventSink, so a Store can be wired directly into the
// engine.
type Store interface {
	Close() error

	// Append records a committed promotion. It must be atomic: either
	// the whole event is durable or nothing is.
	Append(ctx context.Context, e discovery.Event) error

	// Events returns all recorded promotions, oldest first.
	Events(ctx context.Context) ([]discovery.Event, error)

	// Topics returns the display names of previously promoted topics,
	// in promotion order, for seeding the taxonomy.
	Topics(ctx context.Context) ([]string, error)
}
