package topics

import (
	"math"
	"math/rand/v2"
)

// MaxJitter bounds the random adjustment applied to each mastery score.
const MaxJitter = 5

// Mastery is one topic's estimated competence, 0-100.
type Mastery struct {
	Topic   string `json:"topic"`
	Mastery int    `json:"mastery"`
}

// ScoreMastery scores each topic from the overall score ratio, scaled down
// by 10% per rank, plus jitter in [-MaxJitter, MaxJitter] drawn from rng.
// A nil rng disables jitter.
func ScoreMastery(topics []string, score, total int, rng *rand.Rand) []Mastery {
	ratio := 0.0
	if total > 0 {
		ratio = float64(score) / float64(total)
	}
	out := make([]Mastery, 0, len(topics))
	for rank, topic := range topics {
		base := ratio * 100 * math.Max(0, 1-0.1*float64(rank))
		jitter := 0
		if rng != nil {
			jitter = rng.IntN(2*MaxJitter+1) - MaxJitter
		}
		v := int(math.Round(base)) + jitter
		out = append(out, Mastery{Topic: topic, Mastery: min(100, max(0, v))})
	}
	return out
}
