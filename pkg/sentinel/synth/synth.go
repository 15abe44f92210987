// Package synth generates seeded synthetic review datasets for
// exercising the pipeline. A configurable share of rows belongs to a
// hidden topic absent from the master taxonomy, so a correct run
// discovers and promotes it.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cognicore/sentinel/pkg/sentinel/ingest"
)

// templates holds review text pools per topic.
var templates = map[string][]string{
	"Acting Performance": {
		"The lead actor gave a phenomenal performance!",
		"Terrible acting, completely took me out of the movie.",
		"The cast chemistry was amazing.",
		"Overacted and melodramatic, hard to watch.",
		"Best performance I've seen this year.",
		"The supporting cast stole every scene.",
		"Wooden delivery, no emotional depth.",
		"Incredible range from the main character.",
	},
	"Plot & Story": {
		"The story was gripping from start to finish.",
		"Predictable plot with no surprises.",
		"Twist ending completely caught me off guard!",
		"The narrative was all over the place.",
		"Boring and forgettable storyline.",
		"Complex but rewarding plot.",
		"Full of plot holes and inconsistencies.",
	},
	"Visual Effects": {
		"The CGI was absolutely stunning.",
		"Cheap-looking effects ruined the immersion.",
		"Visually breathtaking, a feast for the eyes.",
		"The effects looked dated and unconvincing.",
		"Practical effects blended perfectly with CGI.",
		"The action sequences were visually spectacular.",
	},
	"Cinematography": {
		"Beautifully shot, every frame was a painting.",
		"Shaky cam made it unwatchable.",
		"The lighting and composition were masterful.",
		"Dull and uninspired cinematography.",
		"Creative camera work added to the tension.",
		"The color grading was gorgeous.",
	},
	"Soundtrack & Score": {
		"The score elevated every scene.",
		"Forgettable music that added nothing.",
		"The soundtrack was perfectly matched to the mood.",
		"I've been listening to the score on repeat!",
		"The main theme gave me chills.",
		"Poor audio mixing made dialogue hard to hear.",
	},
	"Direction": {
		"The director's vision was clear and compelling.",
		"Felt like no one was in charge of this mess.",
		"Masterful direction, every scene had purpose.",
		"You can feel the director's passion in every frame.",
		"Lazy direction, phoned-in execution.",
		"Bold creative choices that paid off.",
	},
	"Dialogue": {
		"Sharp, witty dialogue throughout.",
		"Cringey one-liners ruined serious moments.",
		"Natural and believable conversations.",
		"Exposition-heavy dialogue was painful.",
		"Memorable quotes that'll stick with me.",
		"The banter between characters was perfect.",
	},
	"Pacing Issues": {
		"The movie dragged on forever in the middle.",
		"Way too slow, I almost fell asleep.",
		"First hour was great, then it lost all momentum.",
		"Needed at least 30 minutes cut from runtime.",
		"Rushed ending after a painfully slow buildup.",
		"The second act was a snoozefest.",
		"Pacing was all over the place.",
		"Could have been great as a 90-minute film.",
		"Felt like it would never end.",
		"Slow burn that never ignited.",
	},
}

var closers = []string{"Highly recommend!", "Skip this one.", "Overall okay.", ""}

// Options controls dataset generation.
type Options struct {
	Rows        int
	HiddenTopic string  // topic to plant without listing in the taxonomy
	HiddenRatio float64 // fraction of rows drawn from the hidden topic
	Seed        int64
	Topics      []string // regular topic pool; hidden topic is excluded
}

// Generate produces a shuffled synthetic dataset. The same Options
// always yield the same rows.
func Generate(opts Options) []ingest.Review {
	rng := rand.New(rand.NewSource(opts.Seed))

	hiddenCount := int(float64(opts.Rows) * opts.HiddenRatio)
	regularCount := opts.Rows - hiddenCount

	regular := make([]string, 0, len(opts.Topics))
	for _, t := range opts.Topics {
		if t != opts.HiddenTopic {
			regular = append(regular, t)
		}
	}

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	reviews := make([]ingest.Review, 0, opts.Rows)

	for i := 0; i < regularCount; i++ {
		topic := "Plot & Story"
		if len(regular) > 0 {
			topic = regular[rng.Intn(len(regular))]
		}
		reviews = append(reviews, makeReview(rng, 1000+i, topic, base))
	}
	for i := 0; i < hiddenCount; i++ {
		reviews = append(reviews, makeReview(rng, 9000+i, opts.HiddenTopic, base))
	}

	rng.Shuffle(len(reviews), func(i, j int) {
		reviews[i], reviews[j] = reviews[j], reviews[i]
	})
	return reviews
}

func makeReview(rng *rand.Rand, seq int, topic string, base time.Time) ingest.Review {
	pool, ok := templates[topic]
	if !ok {
		pool = []string{"General movie review."}
	}
	text := pool[rng.Intn(len(pool))]
	if closer := closers[rng.Intn(len(closers))]; closer != "" {
		text = text + " " + closer
	}

	date := base.AddDate(0, 0, -rng.Intn(90))
	return ingest.Review{
		ID:   fmt.Sprintf("REV-%05d", seq),
		Date: date.Format("2006-01-02"),
		Text: text,
	}
}

// WriteFile generates a dataset and writes it as CSV to path.
func WriteFile(path string, opts Options) error {
	reviews := Generate(opts)
	return ingest.WriteReviews(path, reviews)
}
