package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cognicore/sentinel/pkg/sentinel/discovery"
	"github.com/cognicore/sentinel/pkg/sentinel/ledger"
)

func sampleRecords() []*ledger.Record {
	return []*ledger.Record{
		{Labels: []string{"Direction"}, Sentiment: "positive"},
		{Labels: []string{"Direction", "Dialogue"}, Sentiment: "negative"},
		{Labels: []string{"Pacing Issues"}, Sentiment: "negative", DiscoverySource: true},
		{Uncategorized: true, SuggestedTopic: "Marketing Hype", Sentiment: "neutral"},
		{NeedsReview: true, Sentiment: "neutral"},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleRecords())

	if sum.Total != 5 {
		t.Errorf("total = %d", sum.Total)
	}
	if sum.Uncategorized != 1 || sum.NeedsReview != 1 {
		t.Errorf("uncategorized=%d needsReview=%d", sum.Uncategorized, sum.NeedsReview)
	}
	if sum.Sentiments["negative"] != 2 || sum.Sentiments["neutral"] != 2 || sum.Sentiments["positive"] != 1 {
		t.Errorf("sentiments = %v", sum.Sentiments)
	}

	if len(sum.Topics) != 3 {
		t.Fatalf("topics = %v", sum.Topics)
	}
	if sum.Topics[0].Topic != "Direction" || sum.Topics[0].Count != 2 {
		t.Errorf("top topic = %+v", sum.Topics[0])
	}
	// Ties sort by name.
	if sum.Topics[1].Topic != "Dialogue" || sum.Topics[2].Topic != "Pacing Issues" {
		t.Errorf("topics = %v", sum.Topics)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Total != 0 || len(sum.Topics) != 0 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestUsage(t *testing.T) {
	var u Usage
	u.Track(100, 250)
	u.Track(50, 150)
	u.TrackFailure()

	if u.Calls != 2 || u.Tokens != 150 || u.Failed != 1 {
		t.Errorf("usage = %+v", u)
	}
	// Failures carry no latency and must not skew the average.
	if u.AvgLatencyMS() != 200 {
		t.Errorf("avg latency = %v", u.AvgLatencyMS())
	}

	var empty Usage
	if empty.AvgLatencyMS() != 0 {
		t.Error("empty usage should have zero latency")
	}
}

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf}
	r.Usage.Track(120, 300)
	r.Usage.TrackFailure()

	events := []discovery.Event{
		{Topic: "Pacing Issues", Hits: 5, RecordIDs: []string{"a", "b", "c", "d", "e"}},
	}
	if err := r.Dashboard(sampleRecords(), events); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Total reviews: 5",
		"Uncategorized: 1",
		"Direction",
		"Pacing Issues (5 hits, 5 records re-tagged)",
		"API calls: 1",
		"Failed calls: 1",
		"Tokens: 120",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
}

func TestDashboardNoDiscoveries(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf}
	if err := r.Dashboard(sampleRecords(), nil); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !strings.Contains(buf.String(), "No new topics discovered.") {
		t.Error("missing no-discoveries line")
	}
}

func TestTaxonomyGrowth(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf}

	r.TaxonomyGrowth([]string{"Direction"}, []string{"Direction", "Pacing Issues"})

	out := buf.String()
	if !strings.Contains(out, "Started with 1 topics") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "+ Pacing Issues") {
		t.Errorf("discovered topic missing:\n%s", out)
	}
}

func TestCandidateStatus(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf}

	r.CandidateStatus([]discovery.Pending{
		{Name: "Marketing Hype", Hits: 3},
		{Name: "Runtime Length", Hits: 1},
	}, 5)

	out := buf.String()
	if !strings.Contains(out, "Marketing Hype [###..] 3/5") {
		t.Errorf("progress bar wrong:\n%s", out)
	}
	if !strings.Contains(out, "Runtime Length [#....] 1/5") {
		t.Errorf("progress bar wrong:\n%s", out)
	}

	buf.Reset()
	r.CandidateStatus(nil, 5)
	if !strings.Contains(buf.String(), "(none)") {
		t.Error("empty pending list should print (none)")
	}
}
