// Command sentinel-gen writes a seeded synthetic review dataset,
// including hidden-topic rows the master taxonomy does not cover.
package main

import (
	"flag"
	"log"

	"github.com/cognicore/sentinel/pkg/sentinel/config"
	"github.com/cognicore/sentinel/pkg/sentinel/synth"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (YAML, optional)")
		out        = flag.String("out", "", "Output CSV (overrides config input path)")
		rows       = flag.Int("rows", 0, "Row count (overrides config)")
		seed       = flag.Int64("seed", 0, "RNG seed (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	path := cfg.Input.Path
	if *out != "" {
		path = *out
	}
	opts := synth.Options{
		Rows:        cfg.Synthetic.Rows,
		HiddenTopic: cfg.Synthetic.HiddenTopic,
		HiddenRatio: cfg.Synthetic.HiddenRatio,
		Seed:        cfg.Synthetic.Seed,
		Topics:      cfg.Topics,
	}
	if *rows > 0 {
		opts.Rows = *rows
	}
	if *seed != 0 {
		opts.Seed = *seed
	}

	if err := synth.WriteFile(path, opts); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d reviews to %s (%.0f%% hidden topic %q)",
		opts.Rows, path, opts.HiddenRatio*100, opts.HiddenTopic)
}
