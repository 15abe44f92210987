// Package report aggregates the final ledger into summary statistics
// and renders the end-of-run dashboard. It is a pure consumer of the
// ledger; nothing here feeds back into classification.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/cognicore/sentinel/pkg/sentinel/discovery"
	"github.com/cognicore/sentinel/pkg/sentinel/ledger"
)

// Usage accumulates provider call statistics across a run.
type Usage struct {
	Calls   int // successful classifications
	Failed  int // classifications that errored after retries
	Tokens  int
	Latency float64 // total milliseconds across successful calls
}

// Track records one successful provider call.
func (u *Usage) Track(tokens int, latencyMS float64) {
	u.Calls++
	u.Tokens += tokens
	u.Latency += latencyMS
}

// TrackFailure records a classification that failed after retries.
func (u *Usage) TrackFailure() { u.Failed++ }

// AvgLatencyMS returns the mean call latency, zero when no calls.
func (u *Usage) AvgLatencyMS() float64 {
	if u.Calls == 0 {
		return 0
	}
	return u.Latency / float64(u.Calls)
}

// TopicCount pairs a topic with how many records carry it.
type TopicCount struct {
	Topic string
	Count int
}

// Summary is the aggregate view of a finished ledger.
type Summary struct {
	Total         int
	Uncategorized int
	NeedsReview   int
	Topics        []TopicCount   // descending by count, ties by name
	Sentiments    map[string]int // sentiment -> count
}

// Summarize computes a Summary from the ledger's final state.
func Summarize(records []*ledger.Record) Summary {
	sum := Summary{
		Total:      len(records),
		Sentiments: make(map[string]int),
	}

	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Uncategorized {
			sum.Uncategorized++
		}
		if rec.NeedsReview {
			sum.NeedsReview++
		}
		if rec.Sentiment != "" {
			sum.Sentiments[rec.Sentiment]++
		}
		for _, label := range rec.Labels {
			counts[label]++
		}
	}

	for topic, count := range counts {
		sum.Topics = append(sum.Topics, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(sum.Topics, func(i, j int) bool {
		if sum.Topics[i].Count != sum.Topics[j].Count {
			return sum.Topics[i].Count > sum.Topics[j].Count
		}
		return sum.Topics[i].Topic < sum.Topics[j].Topic
	})
	return sum
}

// Reporter renders run results to Out.
type Reporter struct {
	Out   io.Writer
	Usage Usage
}

// Dashboard prints the end-of-run summary: topic counts, sentiment
// split, discovered topics and provider usage.
func (r *Reporter) Dashboard(records []*ledger.Record, events []discovery.Event) error {
	sum := Summarize(records)

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "SENTINEL DASHBOARD")
	fmt.Fprintf(r.Out, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.Out, "Total reviews: %d\n", sum.Total)
	fmt.Fprintf(r.Out, "Uncategorized: %d\n", sum.Uncategorized)
	if sum.NeedsReview > 0 {
		fmt.Fprintf(r.Out, "Needs review:  %d\n", sum.NeedsReview)
	}

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "TOP TOPICS")
	topics := tablewriter.NewWriter(r.Out)
	limit := len(sum.Topics)
	if limit > 5 {
		limit = 5
	}
	for _, tc := range sum.Topics[:limit] {
		if err := topics.Append([]string{tc.Topic, fmt.Sprintf("%d", tc.Count)}); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if err := topics.Render(); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "SENTIMENT")
	sentiments := tablewriter.NewWriter(r.Out)
	for _, s := range []string{"positive", "negative", "neutral", "mixed"} {
		count := sum.Sentiments[s]
		pct := 0.0
		if sum.Total > 0 {
			pct = float64(count) * 100 / float64(sum.Total)
		}
		row := []string{s, fmt.Sprintf("%d", count), fmt.Sprintf("%.0f%%", pct)}
		if err := sentiments.Append(row); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if err := sentiments.Render(); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	fmt.Fprintln(r.Out)
	if len(events) > 0 {
		fmt.Fprintln(r.Out, "NEW TOPICS FOUND")
		for _, e := range events {
			fmt.Fprintf(r.Out, "  + %s (%d hits, %d records re-tagged)\n", e.Topic, e.Hits, len(e.RecordIDs))
		}
	} else {
		fmt.Fprintln(r.Out, "No new topics discovered.")
	}

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "USAGE")
	fmt.Fprintf(r.Out, "  API calls: %d\n", r.Usage.Calls)
	if r.Usage.Failed > 0 {
		fmt.Fprintf(r.Out, "  Failed calls: %d\n", r.Usage.Failed)
	}
	if r.Usage.Tokens > 0 {
		fmt.Fprintf(r.Out, "  Tokens: %d\n", r.Usage.Tokens)
	}
	if r.Usage.Calls > 0 && r.Usage.Latency > 0 {
		fmt.Fprintf(r.Out, "  Avg latency: %.0fms\n", r.Usage.AvgLatencyMS())
	}
	return nil
}

// TaxonomyGrowth prints how the topic list grew during the run.
func (r *Reporter) TaxonomyGrowth(initial, current []string) {
	seen := make(map[string]bool, len(initial))
	for _, t := range initial {
		seen[t] = true
	}
	var discovered []string
	for _, t := range current {
		if !seen[t] {
			discovered = append(discovered, t)
		}
	}

	fmt.Fprintln(r.Out, "TOPIC TAXONOMY")
	fmt.Fprintf(r.Out, "  Started with %d topics\n", len(initial))
	for _, t := range initial {
		fmt.Fprintf(r.Out, "    - %s\n", t)
	}
	if len(discovered) > 0 {
		fmt.Fprintf(r.Out, "  Discovered %d new:\n", len(discovered))
		for _, t := range discovered {
			fmt.Fprintf(r.Out, "    + %s\n", t)
		}
	} else {
		fmt.Fprintln(r.Out, "  No new topics added.")
	}
}

// CandidateStatus prints candidates still below the threshold, with a
// progress bar per candidate.
func (r *Reporter) CandidateStatus(pending []discovery.Pending, threshold int) {
	fmt.Fprintln(r.Out, "PENDING CANDIDATES")
	if len(pending) == 0 {
		fmt.Fprintln(r.Out, "  (none)")
		return
	}
	for _, p := range pending {
		hits := p.Hits
		if hits > threshold {
			hits = threshold
		}
		bar := strings.Repeat("#", hits) + strings.Repeat(".", threshold-hits)
		fmt.Fprintf(r.Out, "  %s [%s] %d/%d\n", p.Name, bar, p.Hits, threshold)
	}
}
