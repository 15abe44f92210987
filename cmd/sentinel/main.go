// Command sentinel classifies a CSV of reviews against a topic
// taxonomy, discovers recurring new topics and promotes them, then
// exports the processed dataset and prints a summary dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cognicore/sentinel/internal/llm"
	"github.com/cognicore/sentinel/pkg/sentinel"
	"github.com/cognicore/sentinel/pkg/sentinel/classify"
	"github.com/cognicore/sentinel/pkg/sentinel/config"
	"github.com/cognicore/sentinel/pkg/sentinel/discovery"
	"github.com/cognicore/sentinel/pkg/sentinel/ingest"
	"github.com/cognicore/sentinel/pkg/sentinel/report"
	"github.com/cognicore/sentinel/pkg/sentinel/store/sqlite"
	"github.com/cognicore/sentinel/pkg/sentinel/synth"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (YAML, optional)")
		inputPath  = flag.String("input", "", "Input CSV (overrides config)")
		outputPath = flag.String("output", "", "Output CSV (overrides config)")
		dbPath     = flag.String("db", "", "Discovery log database (overrides config)")
		threshold  = flag.Int("threshold", 0, "Promotion threshold (overrides config)")
		limit      = flag.Int("limit", 0, "Max rows to process (0 = all)")
		generate   = flag.Bool("generate", false, "Generate synthetic test data first")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *inputPath != "" {
		cfg.Input.Path = *inputPath
	}
	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}
	if *dbPath != "" {
		cfg.StorePath = *dbPath
	}
	if *threshold > 0 {
		cfg.Threshold = *threshold
	}

	if *generate {
		log.Printf("generating %d synthetic reviews -> %s", cfg.Synthetic.Rows, cfg.Input.Path)
		err := synth.WriteFile(cfg.Input.Path, synth.Options{
			Rows:        cfg.Synthetic.Rows,
			HiddenTopic: cfg.Synthetic.HiddenTopic,
			HiddenRatio: cfg.Synthetic.HiddenRatio,
			Seed:        cfg.Synthetic.Seed,
			Topics:      cfg.Topics,
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	cols := ingest.Columns{ID: cfg.Input.IDColumn, Date: cfg.Input.DateColumn, Text: cfg.Input.TextColumn}
	reviews, err := ingest.ReadFile(cfg.Input.Path, cols)
	if err != nil {
		log.Fatal(err)
	}
	if *limit > 0 && *limit < len(reviews) {
		reviews = reviews[:*limit]
	}
	log.Printf("loaded %d reviews from %s", len(reviews), cfg.Input.Path)

	ctx := context.Background()

	st, err := sqlite.Open(ctx, cfg.StorePath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	// Previously promoted topics seed this run's taxonomy, so
	// discovery is cumulative across runs.
	promoted, err := st.Topics(ctx)
	if err != nil {
		log.Fatal(err)
	}
	topics := append(append([]string{}, cfg.Topics...), promoted...)

	pipeline, err := sentinel.New(sentinel.Options{
		Classifier: buildClassifier(cfg),
		Topics:     topics,
		Threshold:  cfg.Threshold,
		Sink:       st,
		Notify: func(e discovery.Event) {
			fmt.Printf("\n*** New category %q detected and added to taxonomy (%d hits, %d records re-tagged)\n",
				e.Topic, e.Hits, len(e.RecordIDs))
		},
		Warn: func(err error) { log.Printf("warning: %v", err) },
		Progress: func(done, total int) {
			fmt.Printf("\rClassifying %d/%d", done, total)
			if done == total {
				fmt.Println()
			}
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("provider: %s, threshold: %d, topics: %d", cfg.Provider, cfg.Threshold, len(topics))

	if err := pipeline.Process(ctx, reviews); err != nil {
		log.Fatal(err)
	}

	reporter := &report.Reporter{Out: os.Stdout, Usage: pipeline.Usage()}
	reporter.CandidateStatus(pipeline.Engine().Tracker().Pending(), pipeline.Engine().Threshold())

	if err := ingest.WriteFile(cfg.OutputPath, pipeline.Records()); err != nil {
		log.Fatal(err)
	}
	log.Printf("saved %d rows to %s", len(pipeline.Records()), cfg.OutputPath)

	if err := reporter.Dashboard(pipeline.Records(), pipeline.Engine().Events()); err != nil {
		log.Fatal(err)
	}
	reporter.TaxonomyGrowth(pipeline.InitialTopics(), pipeline.Taxonomy().All())
}

func buildClassifier(cfg config.Config) classify.Classifier {
	var chat classify.Chat
	switch cfg.Provider {
	case config.ProviderOllama:
		chat = &llm.OllamaClient{
			BaseURL:     cfg.Ollama.BaseURL,
			Model:       cfg.Ollama.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}
	case config.ProviderOpenAI:
		chat = &llm.Client{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}
	}
	return &classify.Retrier{
		Classifier: &classify.Gateway{Chat: chat},
		Attempts:   cfg.Retry.Attempts,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelay),
	}
}
