package discovery

import (
	"sort"
	"time"
	"unicode/utf8"
)

const (
	maxSamples   = 5
	sampleLength = 200
)

// candidate is a suggested topic being counted toward promotion.
type candidate struct {
	display   string // first-seen casing, cleaned
	count     int
	firstSeen time.Time
	samples   []string // truncated review snippets for the event log
	indices   []int    // ledger indices that contributed a hit
}

// Tracker counts sightings of suggested topic names that are not yet
// accepted into the taxonomy. Entries live from first sighting until
// promotion consumes them.
type Tracker struct {
	candidates map[string]*candidate
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{candidates: make(map[string]*candidate)}
}

// observe records a sighting and returns the updated entry.
func (t *Tracker) observe(key, display string, idx int, sample string, now time.Time) *candidate {
	c, ok := t.candidates[key]
	if !ok {
		c = &candidate{display: display, firstSeen: now}
		t.candidates[key] = c
	}
	c.count++
	c.indices = append(c.indices, idx)
	if len(c.samples) < maxSamples {
		c.samples = append(c.samples, truncateSample(sample))
	}
	return c
}

// truncateSample caps a snippet at sampleLength bytes without splitting
// a multi-byte rune, so samples stay valid UTF-8 in the event log.
func truncateSample(s string) string {
	if len(s) <= sampleLength {
		return s
	}
	cut := sampleLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (t *Tracker) get(key string) *candidate {
	return t.candidates[key]
}

func (t *Tracker) remove(key string) {
	delete(t.candidates, key)
}

// Hits returns the current count for a candidate key, zero if untracked.
func (t *Tracker) Hits(key string) int {
	if c, ok := t.candidates[key]; ok {
		return c.count
	}
	return 0
}

// Len returns the number of candidates being watched.
func (t *Tracker) Len() int { return len(t.candidates) }

// Pending describes a candidate that has not reached the threshold yet.
type Pending struct {
	Name string
	Hits int
}

// Pending returns watched candidates, most hits first, ties by name.
func (t *Tracker) Pending() []Pending {
	out := make([]Pending, 0, len(t.candidates))
	for _, c := range t.candidates {
		out = append(out, Pending{Name: c.display, Hits: c.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}
		return out[i].Name < out[j].Name
	})
	return out
}
